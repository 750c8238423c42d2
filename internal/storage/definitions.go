package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jwebster45206/npc-engine/pkg/interaction"
	"github.com/jwebster45206/npc-engine/pkg/need"
)

// Definition operations (filesystem-backed). These are read once at
// startup; the host sequences them before constructing services.

const (
	needsConfigFile  = "needs.json"
	interactionsFile = "interactions.json"
)

// GetNeedsConfig loads and validates the needs-definition document from
// the data directory. A missing or malformed document is a startup error.
func (r *RedisStorage) GetNeedsConfig(ctx context.Context) (*need.Config, error) {
	path := filepath.Join(r.dataDir, needsConfigFile)
	cfg, err := need.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load needs config from %s: %w", path, err)
	}
	r.logger.Info("Needs config loaded", "path", path, "needs", len(cfg.Needs))
	return cfg, nil
}

// GetInteractions loads interaction definitions from the data directory.
// A missing file is tolerated: interactions are optional.
func (r *RedisStorage) GetInteractions(ctx context.Context) ([]interaction.Definition, error) {
	path := filepath.Join(r.dataDir, interactionsFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		r.logger.Info("No interactions file, continuing without interactions", "path", path)
		return nil, nil
	}

	defs, err := interaction.LoadDefinitions(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load interactions from %s: %w", path, err)
	}
	r.logger.Info("Interactions loaded", "path", path, "count", len(defs))
	return defs, nil
}
