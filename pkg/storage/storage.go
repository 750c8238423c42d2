package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwebster45206/npc-engine/pkg/interaction"
	"github.com/jwebster45206/npc-engine/pkg/need"
	"github.com/jwebster45206/npc-engine/pkg/npc"
)

// Storage defines a unified interface for all storage operations:
// NPC state persistence (Redis) and static definition loading (filesystem).
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// NPC operations (Redis-backed). LoadNPC returns (nil, nil) for an
	// unknown id.
	SaveNPC(ctx context.Context, n *npc.NPC) error
	LoadNPC(ctx context.Context, id uuid.UUID) (*npc.NPC, error)
	DeleteNPC(ctx context.Context, id uuid.UUID) error
	ListNPCs(ctx context.Context) ([]uuid.UUID, error)

	// Definition operations (filesystem-backed, loaded at startup).
	// The needs config must be present; interactions may be absent.
	GetNeedsConfig(ctx context.Context) (*need.Config, error)
	GetInteractions(ctx context.Context) ([]interaction.Definition, error)
}
