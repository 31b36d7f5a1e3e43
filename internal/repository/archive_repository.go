package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ArchivedGame is a finished or canceled game kept in SQLite. Black and White
// are the seats before any swap; Winner is the turn order index at the end of
// the game and WinnerID resolves it to a player.
type ArchivedGame struct {
	ID        string       `db:"id" json:"id"`
	Size      int          `db:"size" json:"size"`
	BlackID   string       `db:"black_id" json:"black_id"`
	BlackName string       `db:"black_name" json:"black_name"`
	WhiteID   string       `db:"white_id" json:"white_id"`
	WhiteName string       `db:"white_name" json:"white_name"`
	State     string       `db:"state" json:"state"`
	Winner    int          `db:"winner" json:"winner"`
	WinnerID  string       `db:"winner_id" json:"winner_id"`
	Reason    string       `db:"reason" json:"reason"`
	Moves     int          `db:"moves" json:"moves"`
	SGF       string       `db:"sgf" json:"sgf"`
	StartedAt sql.NullTime `db:"started_at" json:"-"`
	EndedAt   sql.NullTime `db:"ended_at" json:"-"`
}

//go:generate mockgen -source=archive_repository.go -destination=mocks/mock_archive_repository.go -package=mocks

// ArchiveRepository stores games once they are over.
type ArchiveRepository interface {
	Store(ctx context.Context, game *ArchivedGame) error
	FindByID(ctx context.Context, id string) (*ArchivedGame, error)
	ListByPlayer(ctx context.Context, playerID string, limit int) ([]ArchivedGame, error)
}

type sqliteArchiveRepository struct {
	db *sqlx.DB
}

// NewArchiveRepository creates a new SQLite-based ArchiveRepository.
func NewArchiveRepository(db *sqlx.DB) ArchiveRepository {
	return &sqliteArchiveRepository{db: db}
}

// NullTime converts a zero time to NULL.
func NullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t.UTC(), Valid: !t.IsZero()}
}

// Store inserts the game, replacing an earlier archive of the same id.
func (r *sqliteArchiveRepository) Store(ctx context.Context, game *ArchivedGame) error {
	ctx, span := tracer.Start(ctx, "ArchiveRepository.Store", trace.WithAttributes(
		attribute.String("game.id", game.ID),
	))
	defer span.End()

	query := `INSERT OR REPLACE INTO games
		(id, size, black_id, black_name, white_id, white_name, state, winner, winner_id, reason, moves, sgf, started_at, ended_at)
		VALUES
		(:id, :size, :black_id, :black_name, :white_id, :white_name, :state, :winner, :winner_id, :reason, :moves, :sgf, :started_at, :ended_at)`
	if _, err := r.db.NamedExecContext(ctx, query, game); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to archive game")
		return fmt.Errorf("failed to archive game %s: %w", game.ID, err)
	}
	return nil
}

// FindByID retrieves an archived game.
func (r *sqliteArchiveRepository) FindByID(ctx context.Context, id string) (*ArchivedGame, error) {
	ctx, span := tracer.Start(ctx, "ArchiveRepository.FindByID", trace.WithAttributes(
		attribute.String("game.id", id),
	))
	defer span.End()

	var game ArchivedGame
	err := r.db.GetContext(ctx, &game, "SELECT * FROM games WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("archived game %s: %w", id, ErrNotFound)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to read archived game")
		return nil, fmt.Errorf("failed to get archived game %s: %w", id, err)
	}
	return &game, nil
}

// ListByPlayer returns the most recent games playerID took part in.
func (r *sqliteArchiveRepository) ListByPlayer(ctx context.Context, playerID string, limit int) ([]ArchivedGame, error) {
	ctx, span := tracer.Start(ctx, "ArchiveRepository.ListByPlayer", trace.WithAttributes(
		attribute.String("player.id", playerID),
		attribute.Int("limit", limit),
	))
	defer span.End()

	games := []ArchivedGame{}
	err := r.db.SelectContext(ctx, &games,
		`SELECT * FROM games WHERE black_id = ? OR white_id = ? ORDER BY ended_at DESC, id LIMIT ?`,
		playerID, playerID, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list archived games")
		return nil, fmt.Errorf("failed to list games of player %s: %w", playerID, err)
	}
	return games, nil
}
