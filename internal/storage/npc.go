package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/jwebster45206/npc-engine/pkg/npc"
)

// NPC operations (Redis-backed). NPCs are durable state: no TTL.

const npcKeyPrefix = "npc:"

func npcKey(id uuid.UUID) string {
	return npcKeyPrefix + id.String()
}

func (r *RedisStorage) SaveNPC(ctx context.Context, n *npc.NPC) error {
	if n == nil {
		return fmt.Errorf("npc cannot be nil")
	}

	data, err := json.Marshal(n)
	if err != nil {
		r.logger.Error("Failed to marshal NPC", "uuid", n.ID, "error", err)
		return fmt.Errorf("failed to marshal npc: %w", err)
	}

	cmd := r.client.Set(ctx, npcKey(n.ID), string(data), 0)
	if err := cmd.Err(); err != nil {
		r.logger.Error("Failed to save NPC", "uuid", n.ID, "error", err)
		return fmt.Errorf("failed to save npc: %w", err)
	}

	return nil
}

func (r *RedisStorage) LoadNPC(ctx context.Context, id uuid.UUID) (*npc.NPC, error) {
	cmd := r.client.Get(ctx, npcKey(id))
	if err := cmd.Err(); err != nil {
		if err == redis.Nil {
			r.logger.Warn("NPC not found", "uuid", id)
			return nil, nil // Return nil for not found
		}
		r.logger.Error("Failed to load NPC", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load npc: %w", err)
	}

	data := cmd.Val()
	if data == "" {
		r.logger.Warn("NPC not found", "uuid", id)
		return nil, nil
	}

	var n npc.NPC
	if err := json.Unmarshal([]byte(data), &n); err != nil {
		r.logger.Error("Failed to unmarshal NPC", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal npc: %w", err)
	}

	return &n, nil
}

func (r *RedisStorage) DeleteNPC(ctx context.Context, id uuid.UUID) error {
	cmd := r.client.Del(ctx, npcKey(id))
	if err := cmd.Err(); err != nil {
		r.logger.Error("Failed to delete NPC", "uuid", id, "error", err)
		return fmt.Errorf("failed to delete npc: %w", err)
	}
	return nil
}

// ListNPCs scans for NPC keys and returns their ids. The keyspace is small
// (one key per live NPC), so SCAN over the prefix is adequate.
func (r *RedisStorage) ListNPCs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	iter := r.client.Scan(ctx, 0, npcKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		id, err := uuid.Parse(key[len(npcKeyPrefix):])
		if err != nil {
			r.logger.Warn("Skipping malformed NPC key", "key", key, "error", err)
			continue
		}
		ids = append(ids, id)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list npcs: %w", err)
	}
	return ids, nil
}
