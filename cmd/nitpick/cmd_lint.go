package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nitpick/internal/exceptions"
)

var lintUnused bool

// lintCmd checks the exception list itself for hygiene problems.
var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Lint the exception list",
	Long: `Checks the exception list for malformed lines, duplicate entries, and
(with --unused) exceptions that no longer suppress anything.

Everything reported here is non-fatal for a check run; lint exists to keep
the file tidy as documentation evolves.`,
	RunE: runLint,
}

func init() {
	lintCmd.Flags().BoolVar(&lintUnused, "unused", false, "run a full check and report exceptions that never fired")
}

func runLint(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	file, diags, err := exceptions.ReadFile(cfg.Exceptions.Path)
	if err != nil {
		if os.IsNotExist(err) && !cfg.Exceptions.Required {
			fmt.Printf("%s: no exception list, nothing to lint\n", cfg.Exceptions.Path)
			return nil
		}
		return fmt.Errorf("failed to read exception list: %w", err)
	}

	problems := 0
	for _, d := range diags {
		fmt.Printf("%s:%d: malformed line: %q\n", d.Source, d.Line, d.Text)
		problems++
	}

	// Duplicates across the whole file, regardless of section.
	seen := make(map[exceptions.Entry]int)
	for _, sec := range file.Sections {
		for _, e := range sec.Entries {
			key := exceptions.Entry{Domain: e.Domain, Name: e.Name}
			if first, dup := seen[key]; dup {
				fmt.Printf("%s:%d: duplicate of line %d: %s %s\n",
					cfg.Exceptions.Path, e.Line, first, e.Domain, e.Name)
				problems++
			} else {
				seen[key] = e.Line
			}
		}
	}

	if lintUnused {
		result, err := runCheck(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		for _, e := range result.Unused {
			fmt.Printf("%s:%d: unused exception: %s %s\n",
				cfg.Exceptions.Path, e.Line, e.Domain, e.Name)
			problems++
		}
	}

	if problems == 0 {
		fmt.Printf("%s: clean (%d entries)\n", cfg.Exceptions.Path, file.Flatten().Len())
		return nil
	}
	return fmt.Errorf("%d problem(s) found", problems)
}
