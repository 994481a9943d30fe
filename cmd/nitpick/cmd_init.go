package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"nitpick/internal/config"
)

const starterExceptions = `# Third-party targets with no local inventory
# py:class some.vendor.Class

# Docstring-tooling quirks (keep these verbatim)
# py:class None.  Remove all items from D.
`

// initCmd writes a starter configuration and exception list.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter .nitpick.yaml and exception list",
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = ".nitpick.yaml"
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	cfg := config.DefaultConfig()
	cfg.Inventories = []config.InventorySource{
		{Name: "python", Location: "https://docs.python.org/3/objects.inv"},
	}
	if err := cfg.Save(path); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)

	if _, err := os.Stat(cfg.Exceptions.Path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(cfg.Exceptions.Path), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(cfg.Exceptions.Path, []byte(starterExceptions), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", cfg.Exceptions.Path)
	}
	return nil
}
