package main

import (
	"fmt"

	"github.com/DoyleJ11/lol-draft-series/internal/catalog"
	"github.com/DoyleJ11/lol-draft-series/internal/config"
	"github.com/DoyleJ11/lol-draft-series/internal/store"
	"github.com/DoyleJ11/lol-draft-series/internal/store/gormstore"
	"github.com/DoyleJ11/lol-draft-series/internal/store/memory"
	"github.com/DoyleJ11/lol-draft-series/internal/store/redisstore"
)

func openStore(cfg config.Config) (store.Store, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return memory.New(), nil
	case config.StorePostgres:
		return gormstore.OpenPostgres(cfg.DatabaseURL)
	case config.StoreSQLite:
		return gormstore.OpenSQLite(cfg.DatabaseURL)
	case config.StoreRedis:
		rc := redisstore.DefaultConfig()
		rc.URL = cfg.RedisURL
		return redisstore.New(rc)
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

func loadCatalog(cfg config.Config) (*catalog.Catalog, error) {
	if cfg.ChampionsFile == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(cfg.ChampionsFile)
}
