package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Zenoooe/ai-crm/internal/assistant"
	"github.com/Zenoooe/ai-crm/internal/config"
	"github.com/Zenoooe/ai-crm/internal/metrics"
	"github.com/Zenoooe/ai-crm/internal/provider"
	providerfactory "github.com/Zenoooe/ai-crm/internal/provider/factory"
	"github.com/Zenoooe/ai-crm/internal/router"
	"github.com/Zenoooe/ai-crm/internal/server"
	"github.com/Zenoooe/ai-crm/internal/store"
)

const serveUsage = `Usage:
  ai-crm serve [--config <path>] [--port <port>]

Flags:
  --config string   Path to YAML configuration file (built-in defaults when omitted)
  --port   int      Override server port from configuration`

func serve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, serveUsage)
	}

	var cfgPath string
	var overridePort int
	fs.StringVar(&cfgPath, "config", "", "path to configuration file")
	fs.IntVar(&overridePort, "port", 0, "override server port")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("parse serve flags: %w", err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	if overridePort != 0 {
		if overridePort < 0 || overridePort > 65535 {
			return fmt.Errorf("port override %d must be a valid TCP port", overridePort)
		}
		cfg.Server.Port = overridePort
	}

	slog.SetDefault(newLogger(cfg.Logging))

	registry, err := providerfactory.BuildRegistry(cfg, os.Getenv)
	if err != nil {
		return err
	}
	adapters, err := providerfactory.NewAdapters()
	if err != nil {
		return err
	}

	m := metrics.New()
	rt, err := router.New(registry, provider.NewResolver(cfg.Aliases), adapters, m)
	if err != nil {
		return err
	}

	customers, closeStore, err := openStore(cfg.Database)
	if err != nil {
		return err
	}
	defer closeStore()

	ai, err := assistant.New(assistant.Options{
		Dispatcher: rt,
		Registry:   registry,
		Styles:     rt.Selector(),
		Customers:  customers,
		Confidence: cfg.Confidence.Policy(),
		Metrics:    m,
	})
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, ai, m)
	if err != nil {
		return err
	}

	return srv.Run(ctx)
}

// openStore returns the customer store selected by the configuration and a
// function releasing it.
func openStore(cfg config.DatabaseConfig) (store.CustomerStore, func(), error) {
	switch cfg.Driver {
	case config.DriverMySQL:
		dsn := cfg.DSN()
		if dsn == "" {
			return nil, nil, fmt.Errorf("database driver mysql requires %s to be set", cfg.DSNEnv)
		}
		db, err := store.Open(dsn)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("customer store ready", "driver", cfg.Driver)
		return store.NewMySQLStore(db), func() { _ = db.Close() }, nil
	default:
		slog.Warn("using in-memory customer store; scripts need inline customers")
		return store.NewMemoryStore(), func() {}, nil
	}
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(cfg.Format) == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
