// nitpick is a documentation cross-reference checker. It extracts
// cross-references from documentation sources (or built HTML), resolves them
// against object inventories, and suppresses known-unresolvable targets via a
// plain-text exception list.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nitpick/internal/config"
	"nitpick/internal/logging"
)

var (
	// Global flags
	configPath string
	verbose    bool
	noColor    bool

	// Logger, built in PersistentPreRunE
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "nitpick",
	Short: "nitpick - documentation cross-reference checker",
	Long: `nitpick checks documentation cross-references.

It extracts references from documentation sources, resolves them against
object inventories (objects.inv), and reports every reference that fails to
resolve - unless the target is listed in the exception list, a plain-text
file of known-unresolvable targets (third-party documentation, generated
aliases, docstring-tooling quirks).

A typical project keeps the exception list at docs/nitpick-exceptions:

  # astropy.cosmology
  py:class astropy.cosmology.Cosmology
  py:class astropy.cosmology.core.Cosmology`,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(level, cfg.Logging.Format)
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
}

// loadConfig resolves the config path (flag, then NITPICK_CONFIG, then the
// default) and loads it. Missing files yield defaults, matching Load.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("NITPICK_CONFIG")
	}
	if path == "" {
		path = ".nitpick.yaml"
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default .nitpick.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(inventoryCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
