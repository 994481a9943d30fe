package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nitpick/internal/report"
)

var checkJSON bool

// checkCmd runs the full reference check once.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check documentation cross-references",
	Long: `Scans the configured documentation roots, resolves every extracted
cross-reference against the configured object inventories, and reports the
ones that fail to resolve. References listed in the exception list are
suppressed and only counted.

Exit status is non-zero when unresolved, unsuppressed references remain and
check.fail_on_warnings is set.`,
	RunE: runCheckCmd,
}

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "emit a JSON report instead of text")
}

func runCheckCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	result, err := runCheck(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	renderer := report.New(os.Stdout, noColor || checkJSON)
	if checkJSON {
		if err := renderer.RenderJSON(result); err != nil {
			return err
		}
	} else {
		if err := renderer.Render(result, verbose); err != nil {
			return err
		}
	}

	if result.Failed() && cfg.Check.FailOnWarnings {
		return fmt.Errorf("%d unresolved reference(s)", len(result.Unresolved))
	}
	return nil
}
