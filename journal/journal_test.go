package journal

import (
	"bufio"
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/rs/zerolog"

	"github.com/pflow-xyz/go-mintgate/ledger"
	"github.com/pflow-xyz/go-mintgate/token"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "journal.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleEvents() []token.Event {
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return []token.Event{
		{
			Seq:     0,
			Type:    token.EventPublicSaleToggled,
			At:      at,
			Account: "0xoperator",
			Active:  true,
		},
		{
			Seq:          1,
			Type:         token.EventMint,
			At:           at.Add(time.Minute),
			Account:      "alice",
			Counterparty: "alice",
			Records:      []ledger.ID{0, 1},
			Amount:       uint256.NewInt(200_000_000_000_000_000),
		},
		{
			Seq:           2,
			Type:          token.EventMint,
			At:            at.Add(2 * time.Minute),
			Account:       "0xoperator",
			Counterparty:  "0xoperator",
			Records:       []ledger.ID{2},
			Complimentary: true,
		},
	}
}

func TestAppendAndReadBack(t *testing.T) {
	s := openTestStore(t)

	want := sampleEvents()
	for _, ev := range want {
		if err := s.Append(ev); err != nil {
			t.Fatalf("append seq %d: %v", ev.Seq, err)
		}
	}

	got, err := s.Events()
	if err != nil {
		t.Fatalf("events failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(got))
	}
	for i := range want {
		w, g := want[i], got[i]
		if g.Seq != w.Seq || g.Type != w.Type || g.Account != w.Account {
			t.Errorf("event %d mismatch: got %+v", i, g)
		}
		if !g.At.Equal(w.At) {
			t.Errorf("event %d time: got %s, want %s", i, g.At, w.At)
		}
		if len(g.Records) != len(w.Records) {
			t.Errorf("event %d records: got %v, want %v", i, g.Records, w.Records)
		}
		if (g.Amount == nil) != (w.Amount == nil) {
			t.Errorf("event %d amount presence mismatch", i)
		} else if w.Amount != nil && g.Amount.Cmp(w.Amount) != 0 {
			t.Errorf("event %d amount: got %s, want %s", i, g.Amount, w.Amount)
		}
		if g.Complimentary != w.Complimentary || g.Active != w.Active {
			t.Errorf("event %d flags mismatch: got %+v", i, g)
		}
	}
}

func TestEmitFromContract(t *testing.T) {
	s := openTestStore(t)

	c, err := token.New(token.DefaultConfig("0xoperator"), token.WithEmitter(s))
	if err != nil {
		t.Fatalf("new contract: %v", err)
	}
	if _, err := c.TogglePublicSaleStatus("0xoperator"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if _, err := c.PublicSaleMint("alice", 1, token.DefaultMintPrice()); err != nil {
		t.Fatalf("mint: %v", err)
	}

	events, err := s.Events()
	if err != nil {
		t.Fatalf("events failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 persisted events, got %d", len(events))
	}
	if events[1].Type != token.EventMint || events[1].Account != "alice" {
		t.Errorf("unexpected persisted event: %+v", events[1])
	}
}

func TestExportJSONL(t *testing.T) {
	s := openTestStore(t)
	for _, ev := range sampleEvents() {
		if err := s.Append(ev); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := s.ExportJSONL(&buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	scanner := bufio.NewScanner(&buf)
	var lines int
	for scanner.Scan() {
		lines++
		var decoded map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &decoded); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", lines, err)
		}
		if _, ok := decoded["type"]; !ok {
			t.Errorf("line %d missing type field", lines)
		}
	}
	if lines != 3 {
		t.Errorf("expected 3 lines, got %d", lines)
	}
}

func TestOpenRejectsBadPath(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "no", "such", "dir", "x.db"), zerolog.Nop()); err == nil {
		t.Error("expected error for unreachable path")
	}
}
