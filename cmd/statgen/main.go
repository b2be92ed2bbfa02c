// Command statgen rolls balanced point-buy arrays, generates monster
// variants of the same challenge rating and rates catalog monsters.
//
// Usage:
//
//	statgen stats   [-n 5] [-surplus 1000] [-json]
//	statgen variant [-n 3] [-json] <monster>
//	statgen rating  [-json] <monster>...
//	statgen catalog [weapons|armors|monsters]
//
// Config is read from config/statgen.yaml or $STATFORGE_CONFIG.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"

	"github.com/udisondev/statforge/internal/config"
)

const ConfigPath = "config/statgen.yaml"

var errUsage = errors.New("usage: statgen <stats|variant|rating|catalog> [flags]")

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		slog.Error("fatal", "err", err)
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cfgPath := ConfigPath
	if p := os.Getenv("STATFORGE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadGenerator(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
	})))

	if len(args) == 0 {
		return errUsage
	}

	app, err := newApp(cfg, stdout)
	if err != nil {
		return err
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "stats":
		return app.runStats(ctx, rest)
	case "variant":
		return app.runVariant(ctx, rest)
	case "rating":
		return app.runRating(rest)
	case "catalog":
		return app.runCatalog(rest)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}
