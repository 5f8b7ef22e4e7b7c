package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kalambet/jobtrack/internal/config"
	"github.com/kalambet/jobtrack/internal/storage"
	"github.com/kalambet/jobtrack/internal/tracker"
)

var version = "dev"

var (
	noColor  bool
	inMemory bool
	cfg      config.Config
)

var rootCmd = &cobra.Command{
	Use:           "jobtrack",
	Short:         "Track companies, job applications and references locally",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if os.Getenv("NO_COLOR") != "" {
			noColor = true
		}

		// A missing .env file is not an error.
		_ = godotenv.Load()

		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded

		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: config.ParseLevel(cfg.Log.Level),
		})))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&inMemory, "memory", false, "use a throwaway in-memory store")

	rootCmd.AddCommand(companyCmd, applicationCmd, referenceCmd)
	rootCmd.AddCommand(importCmd, exportCmd, sampleCmd)
	rootCmd.AddCommand(statusCmd, serveCmd, mcpCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}

// app is the opened store plus the state loaded from it.
type app struct {
	state *tracker.State
	store *storage.Store // nil for --memory runs
}

// openStore is replaced in tests.
var openStore = func(c config.Config, memory bool) (storage.KV, *storage.Store, error) {
	if memory {
		return storage.NewMemory(), nil, nil
	}
	store, err := storage.Open(c.Storage.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening storage: %w", err)
	}
	return store, store, nil
}

func openApp() (*app, error) {
	kv, store, err := openStore(cfg, inMemory)
	if err != nil {
		return nil, err
	}
	slog.Debug("store opened", "data_dir", cfg.Storage.DataDir, "memory", store == nil)
	return &app{state: tracker.Load(kv), store: store}, nil
}

func (a *app) Close() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		printWarning("closing storage: %v", err)
	}
}

// withApp runs fn against a freshly opened app and closes it afterwards.
func withApp(fn func(a *app) error) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
