package repository

import (
	"context"
	"ctchen222/Hex/internal/events"
	"ctchen222/Hex/internal/hex"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	activeGamesKey = "games:active"

	fieldSGF       = "sgf"
	fieldState     = "state"
	fieldBlackID   = "black_id"
	fieldWhiteID   = "white_id"
	fieldStartedAt = "started_at"
	fieldUpdatedAt = "updated_at"

	// finishedTTL is how long a terminal game stays in Redis after it was archived.
	finishedTTL = time.Hour
)

// GameSnapshot is the live state of one game as stored in Redis. The record
// is authoritative; State is denormalized for listing without decoding.
type GameSnapshot struct {
	ID        string
	SGF       string
	State     string
	PlayerIDs [2]string // seating before any swap, same order as PB/PW
	StartedAt time.Time
	UpdatedAt time.Time
}

// Terminal reports whether the snapshot belongs to a finished game.
func (s *GameSnapshot) Terminal() bool {
	return s.State == hex.StateEnded.String() || s.State == hex.StateCanceled.String()
}

//go:generate mockgen -source=game_repository.go -destination=mocks/mock_game_repository.go -package=mocks

// GameRepository defines the interface for live game storage.
type GameRepository interface {
	Save(ctx context.Context, snap *GameSnapshot) error
	FindByID(ctx context.Context, id string) (*GameSnapshot, error)
	Delete(ctx context.Context, id string) error
	ListActive(ctx context.Context) ([]string, error)
	Publish(ctx context.Context, id string, payload []byte) error
	// Subscribe streams payloads published for the game until stop is called
	// or ctx is done.
	Subscribe(ctx context.Context, id string) (payloads <-chan []byte, stop func() error, err error)
}

type redisGameRepository struct {
	rdb *redis.Client
}

// NewGameRepository creates a new Redis-based GameRepository.
func NewGameRepository(rdb *redis.Client) GameRepository {
	return &redisGameRepository{rdb: rdb}
}

func gameKey(id string) string {
	return fmt.Sprintf("game:%s", id)
}

// Save writes the snapshot and keeps the active set in sync with its state.
func (r *redisGameRepository) Save(ctx context.Context, snap *GameSnapshot) error {
	ctx, span := tracer.Start(ctx, "GameRepository.Save", trace.WithAttributes(
		attribute.String("game.id", snap.ID),
		attribute.String("game.state", snap.State),
	))
	defer span.End()

	key := gameKey(snap.ID)
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, key,
		fieldSGF, snap.SGF,
		fieldState, snap.State,
		fieldBlackID, snap.PlayerIDs[0],
		fieldWhiteID, snap.PlayerIDs[1],
		fieldStartedAt, formatTime(snap.StartedAt),
		fieldUpdatedAt, formatTime(snap.UpdatedAt),
	)
	if snap.Terminal() {
		pipe.SRem(ctx, activeGamesKey, snap.ID)
		pipe.Expire(ctx, key, finishedTTL)
	} else {
		pipe.SAdd(ctx, activeGamesKey, snap.ID)
		pipe.Persist(ctx, key)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to save game")
		return fmt.Errorf("failed to save game %s in redis: %w", snap.ID, err)
	}
	return nil
}

// FindByID retrieves a game snapshot from Redis.
func (r *redisGameRepository) FindByID(ctx context.Context, id string) (*GameSnapshot, error) {
	ctx, span := tracer.Start(ctx, "GameRepository.FindByID", trace.WithAttributes(
		attribute.String("game.id", id),
	))
	defer span.End()

	data, err := r.rdb.HGetAll(ctx, gameKey(id)).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to read game")
		return nil, fmt.Errorf("failed to get game %s from redis: %w", id, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("game %s: %w", id, ErrNotFound)
	}

	snap := &GameSnapshot{
		ID:        id,
		SGF:       data[fieldSGF],
		State:     data[fieldState],
		PlayerIDs: [2]string{data[fieldBlackID], data[fieldWhiteID]},
	}
	if snap.StartedAt, err = parseTime(data[fieldStartedAt]); err != nil {
		return nil, fmt.Errorf("game %s has a bad %s: %w", id, fieldStartedAt, err)
	}
	if snap.UpdatedAt, err = parseTime(data[fieldUpdatedAt]); err != nil {
		return nil, fmt.Errorf("game %s has a bad %s: %w", id, fieldUpdatedAt, err)
	}
	return snap, nil
}

// Delete removes a game and its active set entry.
func (r *redisGameRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "GameRepository.Delete", trace.WithAttributes(
		attribute.String("game.id", id),
	))
	defer span.End()

	pipe := r.rdb.TxPipeline()
	pipe.Del(ctx, gameKey(id))
	pipe.SRem(ctx, activeGamesKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete game")
		return fmt.Errorf("failed to delete game %s from redis: %w", id, err)
	}
	return nil
}

// ListActive returns the ids of games that are not over yet.
func (r *redisGameRepository) ListActive(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "GameRepository.ListActive")
	defer span.End()

	ids, err := r.rdb.SMembers(ctx, activeGamesKey).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list active games")
		return nil, fmt.Errorf("failed to list active games: %w", err)
	}
	span.SetAttributes(attribute.Int("game.count", len(ids)))
	return ids, nil
}

// Publish sends payload on the game's channel.
func (r *redisGameRepository) Publish(ctx context.Context, id string, payload []byte) error {
	ctx, span := tracer.Start(ctx, "GameRepository.Publish", trace.WithAttributes(
		attribute.String("game.id", id),
	))
	defer span.End()

	if err := r.rdb.Publish(ctx, events.GameChannel(id), payload).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to publish game event")
		return fmt.Errorf("failed to publish on %s: %w", events.GameChannel(id), err)
	}
	return nil
}

func (r *redisGameRepository) Subscribe(ctx context.Context, id string) (<-chan []byte, func() error, error) {
	ctx, span := tracer.Start(ctx, "GameRepository.Subscribe", trace.WithAttributes(
		attribute.String("game.id", id),
	))
	defer span.End()

	pubsub := r.rdb.Subscribe(ctx, events.GameChannel(id))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to subscribe to game events")
		return nil, nil, fmt.Errorf("failed to subscribe to %s: %w", events.GameChannel(id), err)
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			select {
			case out <- []byte(msg.Payload):
			case <-ctx.Done():
				pubsub.Close()
				return
			}
		}
	}()
	return out, pubsub.Close, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
