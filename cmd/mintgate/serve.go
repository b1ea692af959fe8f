package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/holiman/uint256"
	"github.com/rs/zerolog"

	"github.com/pflow-xyz/go-mintgate/journal"
	"github.com/pflow-xyz/go-mintgate/server"
	"github.com/pflow-xyz/go-mintgate/token"
)

func serve(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", ":8080", "listen address")
	operator := fs.String("operator", "", "operator account (required)")
	journalPath := fs.String("journal", "mintgate.db", "journal database path (\":memory:\" for ephemeral)")
	maxSupply := fs.Uint64("max-supply", token.DefaultMaxMintSupply, "maximum records ever issued")
	price := fs.String("price", token.DefaultMintPrice().Dec(), "mint price in wei (decimal or 0x-hex)")
	maxPerAccount := fs.Uint64("max-per-account", token.DefaultMaxUserMintAmount, "per-account purchase cap")
	refundPeriod := fs.Duration("refund-period", token.DefaultRefundPeriod, "refund guarantee window")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *operator == "" {
		return fmt.Errorf("serve: --operator is required")
	}

	mintPrice, err := parsePrice(*price)
	if err != nil {
		return err
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	store, err := journal.Open(*journalPath, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	cfg := token.Config{
		Operator:          token.Address(*operator),
		MaxMintSupply:     *maxSupply,
		MintPrice:         mintPrice,
		MaxUserMintAmount: *maxPerAccount,
		RefundPeriod:      *refundPeriod,
	}
	contract, err := token.New(cfg, token.WithEmitter(store))
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    *addr,
		Handler: server.New(contract, logger).Handler(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", *addr).
			Str("operator", *operator).
			Str("journal", *journalPath).
			Uint64("max_supply", *maxSupply).
			Str("price", mintPrice.Dec()).
			Msg("mintgate listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}

func parsePrice(val string) (*uint256.Int, error) {
	if len(val) > 2 && val[:2] == "0x" {
		amount, err := uint256.FromHex(val)
		if err != nil {
			return nil, fmt.Errorf("invalid hex price %q", val)
		}
		return amount, nil
	}
	amount, err := uint256.FromDecimal(val)
	if err != nil {
		return nil, fmt.Errorf("invalid decimal price %q", val)
	}
	if amount.IsZero() {
		return nil, errors.New("price must be positive")
	}
	return amount, nil
}
