// Package journal persists contract events to SQLite. It implements
// token.Emitter so a contract can be wired to durable storage, and it
// exports the log as JSONL for offline tooling.
package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/pflow-xyz/go-mintgate/ledger"
	"github.com/pflow-xyz/go-mintgate/token"
)

// Store handles SQLite persistence of contract events.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens (or creates) the journal database at path and applies the
// schema. Use ":memory:" for an ephemeral journal.
func Open(path string, logger zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open database: %w", err)
	}

	s := &Store{db: db, log: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		seq INTEGER NOT NULL,
		type TEXT NOT NULL,
		at TEXT NOT NULL,
		account TEXT NOT NULL,
		counterparty TEXT NOT NULL DEFAULT '',
		records TEXT NOT NULL DEFAULT '[]',
		amount TEXT NOT NULL DEFAULT '',
		complimentary INTEGER NOT NULL DEFAULT 0,
		active INTEGER NOT NULL DEFAULT 0
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_events_seq ON events(seq);
	CREATE INDEX IF NOT EXISTS idx_events_account ON events(account);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Emit implements token.Emitter. Append failures are logged, not
// propagated: the contract's in-memory log stays the source of truth
// and a sink fault must not abort a committed operation.
func (s *Store) Emit(ev token.Event) {
	if err := s.Append(ev); err != nil {
		s.log.Error().Err(err).Uint64("seq", ev.Seq).Str("type", string(ev.Type)).Msg("journal append failed")
	}
}

// Append persists one event.
func (s *Store) Append(ev token.Event) error {
	records, err := json.Marshal(ev.Records)
	if err != nil {
		return fmt.Errorf("journal: encode records: %w", err)
	}
	amount := ""
	if ev.Amount != nil {
		amount = ev.Amount.Dec()
	}

	_, err = s.db.Exec(
		`INSERT INTO events (id, seq, type, at, account, counterparty, records, amount, complimentary, active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(),
		ev.Seq,
		string(ev.Type),
		ev.At.UTC().Format(time.RFC3339Nano),
		string(ev.Account),
		string(ev.Counterparty),
		string(records),
		amount,
		boolInt(ev.Complimentary),
		boolInt(ev.Active),
	)
	if err != nil {
		return fmt.Errorf("journal: insert event: %w", err)
	}
	return nil
}

// Events returns all persisted events in sequence order.
func (s *Store) Events() ([]token.Event, error) {
	rows, err := s.db.Query(
		`SELECT seq, type, at, account, counterparty, records, amount, complimentary, active
		 FROM events ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("journal: query events: %w", err)
	}
	defer rows.Close()

	var events []token.Event
	for rows.Next() {
		var ev token.Event
		var typ, at, account, cp, records, amount string
		var complimentary, act int
		if err := rows.Scan(&ev.Seq, &typ, &at, &account, &cp, &records, &amount, &complimentary, &act); err != nil {
			return nil, fmt.Errorf("journal: scan event: %w", err)
		}

		ev.Type = token.EventType(typ)
		ev.Account = token.Address(account)
		ev.Counterparty = token.Address(cp)
		ev.Complimentary = complimentary != 0
		ev.Active = act != 0

		ev.At, err = time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("journal: parse timestamp %q: %w", at, err)
		}
		var ids []ledger.ID
		if err := json.Unmarshal([]byte(records), &ids); err != nil {
			return nil, fmt.Errorf("journal: decode records: %w", err)
		}
		if len(ids) > 0 {
			ev.Records = ids
		}
		if amount != "" {
			ev.Amount, err = uint256.FromDecimal(amount)
			if err != nil {
				return nil, fmt.Errorf("journal: parse amount %q: %w", amount, err)
			}
		}

		events = append(events, ev)
	}
	return events, rows.Err()
}

// ExportJSONL writes the persisted log as JSON Lines, one event per
// line, in sequence order.
func (s *Store) ExportJSONL(w io.Writer) error {
	events, err := s.Events()
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	for _, ev := range events {
		if err := enc.Encode(ev); err != nil {
			return fmt.Errorf("journal: encode event %d: %w", ev.Seq, err)
		}
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
