// Package main запускает консольный клиент receiptly.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"go.uber.org/zap"

	"github.com/mmeshcher/receiptly/internal/api"
	"github.com/mmeshcher/receiptly/internal/auth"
	"github.com/mmeshcher/receiptly/internal/cli"
	"github.com/mmeshcher/receiptly/internal/token"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := &cli.Config{}
	app := &cli.App{Stdout: os.Stdout, Stderr: os.Stderr}
	cmd := cli.NewCommand(cfg, app)

	if err := cmd.Parse(os.Args[1:], ff.WithEnvVarPrefix("RECEIPTLY")); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Command(cmd.GetSelected()))
		if errors.Is(err, ff.ErrHelp) {
			return nil
		}
		return err
	}

	logger, err := cli.NewLogger(cfg.LogLevel, os.Stderr)
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, closeStore, err := openStore(cfg.SessionFile)
	if err != nil {
		return err
	}
	defer closeStore()

	signer := token.NewSigner(cfg.TokenSecret)
	manager := auth.NewManager(auth.NewSimulatedProvider(signer), store, logger)
	if _, err := manager.Restore(); err != nil {
		logger.Warn("continuing signed out", zap.Error(err))
	}

	app.Sessions = manager
	app.Receipts = api.NewClient(cfg.APIURL, api.Options{
		Timeout:  cfg.Timeout,
		RetryMax: cfg.Retries,
		Tokens:   manager,
		Logger:   logger,
	})
	app.Logger = logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cmd.Run(ctx)
}

func openStore(path string) (auth.Store, func(), error) {
	if path == "" {
		return auth.NewMemoryStore(), func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("create session directory: %w", err)
	}

	store, err := auth.NewBoltStore(path)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { store.Close() }, nil
}
