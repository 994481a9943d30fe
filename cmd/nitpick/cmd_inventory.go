package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nitpick/internal/inventory"
)

// inventoryCmd groups inventory management subcommands.
var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Manage object inventories",
}

var inventoryFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch all configured inventories into the cache",
	RunE:  runInventoryFetch,
}

var inventoryShowCmd = &cobra.Command{
	Use:   "show [location]",
	Short: "Show the contents of one inventory",
	Long: `Loads the inventory at the given location (or the first configured one)
and prints its objects grouped by domain and role.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInventoryShow,
}

func init() {
	inventoryCmd.AddCommand(inventoryFetchCmd)
	inventoryCmd.AddCommand(inventoryShowCmd)
}

func runInventoryFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(cfg.Inventories) == 0 {
		return fmt.Errorf("no inventories configured")
	}

	cache := openCache(cfg)
	if cache == nil {
		return fmt.Errorf("inventory cache is disabled (cache.database_path is empty)")
	}
	defer cache.Close()

	failed := 0
	for _, src := range cfg.Inventories {
		inv, err := inventory.Fetch(cmd.Context(), src.Location)
		if err != nil {
			logger.Error("fetch failed", zap.String("location", src.Location), zap.Error(err))
			failed++
			continue
		}
		if err := cache.PutInventory(inv); err != nil {
			return fmt.Errorf("failed to cache %s: %w", src.Location, err)
		}
		fmt.Printf("%s: %d objects (%s %s)\n", src.Location, inv.Len(), inv.Project, inv.Version)
	}
	if failed > 0 {
		return fmt.Errorf("%d inventory fetch(es) failed", failed)
	}
	return nil
}

func runInventoryShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	location := ""
	if len(args) == 1 {
		location = args[0]
	} else if len(cfg.Inventories) > 0 {
		location = cfg.Inventories[0].Location
	}
	if location == "" {
		return fmt.Errorf("no inventory location given or configured")
	}

	cache := openCache(cfg)
	if cache != nil {
		defer cache.Close()
	}
	inv, err := loadInventory(cmd.Context(), configSource(location), cfg.CacheTTL(), cache)
	if err != nil {
		return err
	}

	objects := inv.All()
	sort.Slice(objects, func(i, j int) bool {
		if objects[i].Domain != objects[j].Domain {
			return objects[i].Domain < objects[j].Domain
		}
		if objects[i].Name != objects[j].Name {
			return objects[i].Name < objects[j].Name
		}
		return objects[i].Role < objects[j].Role
	})

	fmt.Printf("# %s %s (%d objects)\n", inv.Project, inv.Version, inv.Len())
	for _, obj := range objects {
		fmt.Printf("%s %s:%s %s\n", obj.Name, obj.Domain, obj.Role, obj.Location)
	}
	return nil
}
