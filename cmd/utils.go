package cmd

import (
	"context"
	"fmt"

	"github.com/rubiojr/searchfields/pkg/config"
	"github.com/rubiojr/searchfields/pkg/log"
	"github.com/rubiojr/searchfields/pkg/storage"
)

// loadConfig loads the configuration and applies its debug setting.
func loadConfig(configPath string) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg.Debug {
		log.SetGlobalDebug(true)
	}
	return cfg, nil
}

// openStore opens the configured database and creates missing tables.
func openStore(ctx context.Context, cfg *config.Config) (*storage.Store, error) {
	store, err := storage.Open(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	for _, table := range cfg.Tables {
		if err := store.CreateTable(ctx, table); err != nil {
			if cerr := store.Close(); cerr != nil {
				log.ForComponent("cmd").Warnf("failed to close storage: %v", cerr)
			}
			return nil, fmt.Errorf("creating table %s: %w", table.Name, err)
		}
	}

	return store, nil
}
