package repository

import (
	"context"
	"ctchen222/Hex/internal/player"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("repository")

// Presence is where a player was last seen.
type Presence struct {
	GameID string
	Seat   int
	Status player.Status
}

//go:generate mockgen -source=player_repository.go -destination=mocks/mock_player_repository.go -package=mocks

// PlayerRepository tracks which game and seat each connected player is in, so
// a player can reconnect to the right room.
type PlayerRepository interface {
	SetPresence(ctx context.Context, playerID string, p Presence) error
	FindPresence(ctx context.Context, playerID string) (*Presence, error)
	UpdateConnectionStatus(ctx context.Context, playerID string, status player.Status) error
}

type redisPlayerRepository struct {
	rdb *redis.Client
}

// NewPlayerRepository creates a new Redis-based PlayerRepository.
func NewPlayerRepository(rdb *redis.Client) PlayerRepository {
	return &redisPlayerRepository{
		rdb: rdb,
	}
}

func playerKey(id string) string {
	return fmt.Sprintf("player:%s", id)
}

// SetPresence records the player's game, seat and connection status.
func (r *redisPlayerRepository) SetPresence(ctx context.Context, playerID string, p Presence) error {
	ctx, span := tracer.Start(ctx, "PlayerRepository.SetPresence")
	defer span.End()

	err := r.rdb.HSet(ctx, playerKey(playerID),
		"game_id", p.GameID,
		"seat", strconv.Itoa(p.Seat),
		"connection_status", string(p.Status),
	).Err()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to set presence")
		return fmt.Errorf("failed to set presence of player %s: %w", playerID, err)
	}
	return nil
}

// FindPresence retrieves the data a player needs to reconnect.
func (r *redisPlayerRepository) FindPresence(ctx context.Context, playerID string) (*Presence, error) {
	ctx, span := tracer.Start(ctx, "PlayerRepository.FindPresence")
	defer span.End()

	data, err := r.rdb.HGetAll(ctx, playerKey(playerID)).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to read presence")
		return nil, fmt.Errorf("failed to get presence of player %s: %w", playerID, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("player %s: %w", playerID, ErrNotFound)
	}
	seat, err := strconv.Atoi(data["seat"])
	if err != nil {
		return nil, fmt.Errorf("player %s has a bad seat %q: %w", playerID, data["seat"], err)
	}
	return &Presence{
		GameID: data["game_id"],
		Seat:   seat,
		Status: player.Status(data["connection_status"]),
	}, nil
}

// UpdateConnectionStatus updates only the connection status of a player.
func (r *redisPlayerRepository) UpdateConnectionStatus(ctx context.Context, playerID string, status player.Status) error {
	ctx, span := tracer.Start(ctx, "PlayerRepository.UpdateConnectionStatus")
	defer span.End()

	if err := r.rdb.HSet(ctx, playerKey(playerID), "connection_status", string(status)).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update connection status")
		return fmt.Errorf("failed to update status of player %s: %w", playerID, err)
	}
	return nil
}
