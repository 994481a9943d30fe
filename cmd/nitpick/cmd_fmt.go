package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"nitpick/internal/exceptions"
)

var fmtWrite bool

// fmtCmd canonicalizes the exception list.
var fmtCmd = &cobra.Command{
	Use:   "fmt",
	Short: "Format the exception list",
	Long: `Rewrites the exception list into canonical form: comment headers kept,
entries sorted within each section, duplicate lines dropped. Without --write
the formatted file goes to stdout.

Formatting never adds or removes an exemption.`,
	RunE: runFmt,
}

func init() {
	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "rewrite the file in place")
}

func runFmt(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	file, diags, err := exceptions.ReadFile(cfg.Exceptions.Path)
	if err != nil {
		return fmt.Errorf("failed to read exception list: %w", err)
	}
	if len(diags) > 0 {
		// Formatting drops lines it cannot parse; refuse rather than lose them.
		for _, d := range diags {
			fmt.Fprintf(os.Stderr, "%s\n", d)
		}
		return fmt.Errorf("%d malformed line(s); fix them before formatting", len(diags))
	}

	var buf bytes.Buffer
	if err := file.Format(&buf); err != nil {
		return err
	}

	if !fmtWrite {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}

	original, err := os.ReadFile(cfg.Exceptions.Path)
	if err != nil {
		return err
	}
	if bytes.Equal(original, buf.Bytes()) {
		logger.Debug("exception list already canonical")
		return nil
	}
	if err := os.WriteFile(cfg.Exceptions.Path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to rewrite exception list: %w", err)
	}
	fmt.Printf("formatted %s\n", cfg.Exceptions.Path)
	return nil
}
