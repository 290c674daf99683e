package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ragdesk/cmd/ragdesk/tui"
	"ragdesk/internal/api"
	"ragdesk/internal/config"
	"ragdesk/internal/history"
	"ragdesk/internal/logging"
	"ragdesk/internal/session"
)

var (
	// Global flags
	serverURL string
	verbose   bool
	timeout   time.Duration

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ragdesk",
	Short: "ragdesk - terminal client for the RAG study service",
	Long: `ragdesk is a terminal client for the RAG study service.

It manages your session, uploads corpus files, builds the retrieval index,
and grades submitted text against the indexed corpus.

Run without arguments to start the interactive interface.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip logger init for interactive mode (it has its own UI)
		if cmd.Use == "ragdesk" && cmd.CalledAs() == "ragdesk" {
			return nil
		}

		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive()
	},
}

// appEnv bundles everything a command needs to talk to the service.
type appEnv struct {
	cfg      *config.Config
	stateDir string
	creds    *session.Store
	client   *api.Client
}

func newEnv() (*appEnv, error) {
	stateDir, err := config.StateDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve state directory: %w", err)
	}

	cfg, err := config.Load(filepath.Join(stateDir, "config.yaml"))
	if err != nil {
		return nil, err
	}
	if serverURL != "" {
		cfg.Server.BaseURL = serverURL
	}
	if timeout > 0 {
		cfg.Server.Timeout = timeout.String()
	}

	if err := logging.Initialize(stateDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging unavailable: %v\n", err)
	}

	creds, err := session.Open(stateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	client := api.New(cfg.Server.BaseURL, creds, api.WithTimeout(cfg.ServerTimeout()))
	return &appEnv{
		cfg:      cfg,
		stateDir: stateDir,
		creds:    creds,
		client:   client,
	}, nil
}

// openHistory opens the local assessment history, or returns nil when it is
// disabled or unavailable. The client works fine without it.
func (e *appEnv) openHistory() *history.Store {
	if !e.cfg.History.Enabled {
		return nil
	}
	hist, err := history.Open(filepath.Join(e.stateDir, "history.db"))
	if err != nil {
		logging.History("history unavailable: %v", err)
		return nil
	}
	return hist
}

func runInteractive() error {
	env, err := newEnv()
	if err != nil {
		return err
	}
	defer logging.CloseAll()

	hist := env.openHistory()
	if hist != nil {
		defer hist.Close()
	}

	app := tui.NewApp(env.client, env.creds, hist, env.cfg.History.Limit)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("interface error: %w", err)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Server base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Request timeout (overrides config)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(ragCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
