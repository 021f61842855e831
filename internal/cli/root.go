// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeranaias/shopdesk-tui/internal/config"
	"github.com/jeranaias/shopdesk-tui/internal/session"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// skipConfig marks commands that run without loading the configuration.
const skipConfig = "skip-config"

// =============================================================================
// APP
// =============================================================================

// App holds the state shared by all commands of one invocation.
type App struct {
	// Global flags
	ConfigPath string
	Overrides  config.Overrides

	// I/O
	In  io.Reader
	Out io.Writer
	Err io.Writer

	// StdoutTTY enables markdown rendering of replies.
	StdoutTTY bool

	// NewSession opens the session used by commands. Defaults to session.Open.
	NewSession func(cfg *config.Config) (*session.Session, error)

	cfg       *config.Config
	logCloser io.Closer
}

// NewApp creates an App bound to the process's standard streams.
func NewApp() *App {
	return &App{
		In:         os.Stdin,
		Out:        os.Stdout,
		Err:        os.Stderr,
		StdoutTTY:  IsStdoutTTY(),
		NewSession: session.Open,
	}
}

// Execute runs the command line args and returns the process exit code.
func (a *App) Execute(ctx context.Context, args []string) int {
	root := a.RootCmd()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	a.teardown()
	if err != nil {
		DisplayError(a.Err, err)
		return GetExitCode(err)
	}
	return ExitSuccess
}

// RootCmd builds the command tree.
func (a *App) RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "shopdesk",
		Short: "Customer support chat for the shop",
		Long: `shopdesk is a terminal client for the shop's AI customer support assistant.

Ask about products, stock levels and order status. Conversations are saved
locally and can be reopened, exported or deleted.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipConfig] == "true" {
				return nil
			}
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd.Context())
		},
	}
	root.SetIn(a.In)
	root.SetOut(a.Out)
	root.SetErr(a.Err)
	root.SetVersionTemplate(versionString() + "\n")

	flags := root.PersistentFlags()
	flags.StringVarP(&a.ConfigPath, "config", "c", "", "config file (default ~/.shopdesk/config.toml)")
	flags.StringVar(&a.Overrides.APIURL, "api-url", "", "chat API base URL")
	flags.StringVar(&a.Overrides.DataDir, "data-dir", "", "directory for saved conversations")
	flags.StringVar(&a.Overrides.Backend, "backend", "", "storage backend: file, sqlite, memory")
	flags.BoolVar(&a.Overrides.Ephemeral, "ephemeral", false, "keep history in memory only")

	root.AddCommand(
		a.tuiCmd(),
		a.chatCmd(),
		a.askCmd(),
		a.historyCmd(),
		a.configCmd(),
		a.versionCmd(),
	)
	return root
}

// setup loads the configuration and starts logging.
func (a *App) setup() error {
	var (
		cfg *config.Config
		err error
	)
	if a.ConfigPath != "" {
		cfg, err = config.LoadFromPath(a.ConfigPath)
	} else {
		cfg, err = config.Load("")
	}
	if err != nil {
		return &ConfigError{Err: err}
	}
	if err := cfg.ApplyOverrides(a.Overrides); err != nil {
		return &ConfigError{Err: err}
	}

	closer, err := config.SetupLogging(cfg.Log)
	if err != nil {
		return &ConfigError{Err: err}
	}
	a.cfg = cfg
	a.logCloser = closer
	log.Printf("shopdesk %s starting (config: %s)", Version, sourceName(cfg))
	return nil
}

// teardown releases the log file.
func (a *App) teardown() {
	if a.logCloser != nil {
		a.logCloser.Close()
		a.logCloser = nil
		log.SetOutput(os.Stderr)
	}
}

// openSession opens the session for the loaded configuration.
func (a *App) openSession() (*session.Session, error) {
	sess, err := a.NewSession(a.cfg)
	if err != nil {
		return nil, NewCommandError("session", "open", "could not open conversation storage", err)
	}
	return sess, nil
}

func sourceName(cfg *config.Config) string {
	if cfg.Source == "" {
		return "defaults"
	}
	return cfg.Source
}

// =============================================================================
// VERSION
// =============================================================================

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(a.Out, versionString())
			return nil
		},
	}
}

func versionString() string {
	return fmt.Sprintf("shopdesk %s (commit %s, built %s)", Version, GitCommit, BuildDate)
}
