// Command tunbridge forwards frames between a tun/tap interface and a
// byte-stream transport, per spec.md.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tunbridge/internal/bridge"
	"tunbridge/internal/config"
	"tunbridge/internal/engine"
	"tunbridge/internal/iface"
	"tunbridge/internal/logging"
	"tunbridge/internal/transport"
	"tunbridge/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "tunbridge:", err)
		os.Exit(1)
	}
}

func run() error {
	logger := logging.NewStdLogger()

	cfg, err := resolveSession(logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := bridge.NewRegistry()

	prov, err := iface.Provision(cfg, registry)
	if err != nil {
		return fmt.Errorf("provision interface: %w", err)
	}
	defer func() {
		if cerr := prov.Close(); cerr != nil {
			logger.Printf("close interface: %v", cerr)
		}
		registry.Cleanup(logger)
	}()

	// A bridge outlives the interface that happened to create it
	// (other members may still need it), so it gets its own signal
	// path: SIGINT/SIGTERM tears the bridge down even if something
	// downstream keeps the engine loop from returning promptly.
	if cfg.BridgeName != "" {
		stopSignalCleanup := registry.NotifyOnSignal(logger, stop)
		defer stopSignalCleanup()
	}

	runEngine := func(sessCtx context.Context, trIn, trOut int) error {
		eng, err := engine.New(cfg, prov.Handle.FD, trIn, trOut, logger)
		if err != nil {
			return err
		}
		err = eng.Run(sessCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	switch cfg.Role {
	case config.RoleStdio:
		trIn, trOut := transport.Stdio()
		return runEngine(ctx, trIn, trOut)

	case config.RoleListening:
		return transport.Listen(ctx, cfg, logger, runEngine)

	case config.RoleConnecting:
		trIn, trOut, closeFn, err := transport.Connect(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = closeFn() }()
		return runEngine(ctx, trIn, trOut)

	default:
		return fmt.Errorf("unknown transfer mode %v", cfg.Role)
	}
}

// resolveSession parses the command line, or falls back to the
// interactive picker when invoked with no arguments, per spec.md §6.
func resolveSession(logger logging.Logger) (config.Session, error) {
	if len(os.Args) > 1 {
		return config.ParseArgs(os.Args[1:])
	}
	logger.Printf("no arguments given, entering interactive mode")
	return tui.PromptForSession()
}
