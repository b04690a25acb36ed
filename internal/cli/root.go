// Package cli wires the commands: the interactive dashboard on the bare
// invocation, plus non-interactive analyze and export subcommands.
package cli

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/Codewiz19/legallens/internal/backend"
	"github.com/Codewiz19/legallens/internal/config"
	"github.com/Codewiz19/legallens/internal/session"
	"github.com/Codewiz19/legallens/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:   "legallens [file]",
	Short: "Analyze legal documents for risky clauses",
	Long: `LegalLens uploads a legal document to an analysis service, normalizes
the response into a stable report, and presents a risk dashboard.

Examples:
  legallens                        # interactive, pick a file in the TUI
  legallens lease.pdf              # interactive, analyze immediately
  legallens --resume               # reopen the last analysis
  legallens analyze lease.pdf      # non-interactive, print the report`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to config file (default ~/.legallens/config.toml)")
	rootCmd.PersistentFlags().String("api-base", "", "backend base URL (overrides config)")
	rootCmd.Flags().Bool("no-alt-screen", false, "render inline instead of the alternate screen")
	rootCmd.Flags().Bool("resume", false, "reopen the previous session instead of starting fresh")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command. Errors are printed here so main stays a
// one-liner.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "legallens: %v\n", err)
		return err
	}
	return nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := session.NewStore()
	if err != nil {
		return fmt.Errorf("opening session cache: %w", err)
	}

	opts := tui.Options{
		Backend: newBackend(cfg),
		Config:  cfg,
		Store:   store,
	}
	if len(args) == 1 {
		opts.DocumentPath = args[0]
	}
	if resume, _ := cmd.Flags().GetBool("resume"); resume {
		snapshot, err := store.Load()
		if err != nil {
			return err
		}
		if snapshot == nil {
			return fmt.Errorf("no previous session to resume")
		}
		opts.Resume = snapshot
	}
	noAlt, _ := cmd.Flags().GetBool("no-alt-screen")
	return tui.Run(opts, !noAlt)
}

// loadConfig resolves the effective configuration: file (explicit or default
// path), then environment, then the --api-base flag on top.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Root().PersistentFlags()
	path, _ := flags.GetString("config")
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return config.Config{}, err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if base, _ := flags.GetString("api-base"); base != "" {
		cfg.API.BaseURL = base
	}
	return cfg, nil
}

func newBackend(cfg config.Config) backend.Client {
	return backend.New(backend.Config{
		BaseURL:    cfg.API.BaseURL,
		HTTPClient: &http.Client{Timeout: cfg.Timeout()},
		Pacer:      backend.NewPacer(cfg.CallSpacing()),
	})
}
