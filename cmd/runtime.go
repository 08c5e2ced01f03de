package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"table-reconciler/core/archive"
	"table-reconciler/core/config"
	"table-reconciler/core/database"
	"table-reconciler/core/logger"
	"table-reconciler/core/storage"
	"table-reconciler/core/store"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// loadRuntime loads the configuration and builds the logger.
func loadRuntime() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, l, nil
}

// openStore connects to the metadata database and migrates it.
func openStore(ctx context.Context, cfg database.Config) (*gorm.DB, *store.Store, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to metadata database: %w", err)
	}
	st := store.New(db)
	if err := st.Migrate(ctx); err != nil {
		_ = database.Close(db)
		return nil, nil, err
	}
	return db, st, nil
}

// newArchiver returns a report archiver, or nil when storage is disabled.
func newArchiver(ctx context.Context, cfg storage.Config, l *zap.Logger) (*archive.Archiver, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	client, err := storage.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.TimeoutSeconds)*time.Second)
	defer cancel()
	if err := storage.EnsureBucket(ctx, client, cfg.Bucket, cfg.Region); err != nil {
		return nil, err
	}

	l.Info("Report export enabled", zap.String("bucket", cfg.Bucket), zap.String("prefix", cfg.Prefix))
	return archive.New(client, cfg.Bucket, cfg.Prefix), nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
