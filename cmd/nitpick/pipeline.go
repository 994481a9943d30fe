package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"nitpick/internal/checker"
	"nitpick/internal/config"
	"nitpick/internal/docscan"
	"nitpick/internal/exceptions"
	"nitpick/internal/inventory"
	"nitpick/internal/store"
)

// loadExceptionSet applies the missing-file policy from the config: when the
// exception list is optional a missing file is simply an empty set.
func loadExceptionSet(cfg *config.Config) (*exceptions.Set, []exceptions.Diagnostic, error) {
	set, diags, err := exceptions.Load(cfg.Exceptions.Path)
	if err != nil {
		if os.IsNotExist(err) && !cfg.Exceptions.Required {
			logger.Info("exception list not found, proceeding with empty set",
				zap.String("path", cfg.Exceptions.Path))
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to load exception list %s: %w", cfg.Exceptions.Path, err)
	}

	for _, d := range diags {
		logger.Warn("exception list: " + d.String())
	}
	return set, diags, nil
}

// openCache opens the inventory cache, or returns nil when caching is
// disabled. Cache failures degrade to uncached operation.
func openCache(cfg *config.Config) *store.CacheStore {
	if cfg.Cache.DatabasePath == "" {
		return nil
	}
	cache, err := store.NewCacheStore(cfg.Cache.DatabasePath)
	if err != nil {
		logger.Warn("inventory cache unavailable, fetching directly", zap.Error(err))
		return nil
	}
	return cache
}

// loadInventories returns every configured inventory, served from the cache
// when fresh. A single unreachable inventory is logged and skipped so one
// dead mirror doesn't block the whole check.
func loadInventories(ctx context.Context, cfg *config.Config, cache *store.CacheStore) []*inventory.Inventory {
	var invs []*inventory.Inventory
	for _, src := range cfg.Inventories {
		inv, err := loadInventory(ctx, src, cfg.CacheTTL(), cache)
		if err != nil {
			logger.Warn("skipping inventory",
				zap.String("name", src.Name),
				zap.String("location", src.Location),
				zap.Error(err))
			continue
		}
		logger.Debug("inventory loaded",
			zap.String("location", src.Location),
			zap.Int("objects", inv.Len()))
		invs = append(invs, inv)
	}
	return invs
}

func configSource(location string) config.InventorySource {
	return config.InventorySource{Location: location}
}

func loadInventory(ctx context.Context, src config.InventorySource, ttl time.Duration, cache *store.CacheStore) (*inventory.Inventory, error) {
	if cache != nil && cache.Fresh(src.Location, ttl) {
		inv, err := cache.GetInventory(src.Location)
		if err == nil {
			return inv, nil
		}
		logger.Warn("cache read failed, refetching", zap.Error(err))
	}

	inv, err := inventory.Fetch(ctx, src.Location)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		if err := cache.PutInventory(inv); err != nil {
			logger.Warn("failed to cache inventory", zap.Error(err))
		}
	}
	return inv, nil
}

// runCheck executes the full pipeline: exceptions, inventories, scan, check.
// The run is recorded in the cache database when one is open.
func runCheck(ctx context.Context, cfg *config.Config) (*checker.Result, error) {
	run := store.NewRunRecord()
	started := time.Now()

	set, _, err := loadExceptionSet(cfg)
	if err != nil {
		return nil, err
	}

	cache := openCache(cfg)
	if cache != nil {
		defer cache.Close()
	}
	invs := loadInventories(ctx, cfg, cache)

	scanner := docscan.New(cfg.Docs, cfg.Check.Jobs, cfg.Check.ScanHTML, logger)
	refs, err := scanner.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	result := checker.New(invs, set, logger).Check(refs)

	if cache != nil {
		run.Duration = time.Since(started)
		run.RefsTotal = result.RefsTotal
		run.Unresolved = len(result.Unresolved)
		run.Suppressed = len(result.Suppressed)
		if err := cache.RecordRun(run); err != nil {
			logger.Warn("failed to record run", zap.Error(err))
		}
	}
	return result, nil
}
