package service

import (
	"context"
	"ctchen222/Hex/internal/api/models"
	"ctchen222/Hex/internal/events"
	"ctchen222/Hex/internal/hex"
	"ctchen222/Hex/internal/hub"
	"ctchen222/Hex/internal/notation"
	"ctchen222/Hex/internal/repository"
	"ctchen222/Hex/pkg/proto"
	"fmt"
)

const defaultHistoryLimit = 20

// GameService defines the interface for game-related business logic.
type GameService interface {
	Create(ctx context.Context, req *models.CreateGameRequest) (*proto.GameView, error)
	Get(ctx context.Context, id string) (*proto.GameView, error)
	Start(ctx context.Context, id string) (*proto.GameView, error)
	Play(ctx context.Context, id string, req *models.MoveRequest) (*proto.GameView, error)
	Resign(ctx context.Context, id string, seat int) (*proto.GameView, error)
	Cancel(ctx context.Context, id string) (*proto.GameView, error)
	SGF(ctx context.Context, id string) (string, error)
	Import(ctx context.Context, sgf string, ids [2]string) (*proto.GameView, error)
	Watch(ctx context.Context, id string) (<-chan events.Envelope, func() error, error)
	Archived(ctx context.Context, id string) (*repository.ArchivedGame, error)
	History(ctx context.Context, playerID string, limit int) ([]repository.ArchivedGame, error)
}

type gameService struct {
	hub     *hub.Hub
	archive repository.ArchiveRepository
}

// NewGameService creates a new GameService.
func NewGameService(h *hub.Hub, archive repository.ArchiveRepository) GameService {
	return &gameService{hub: h, archive: archive}
}

func (s *gameService) Create(ctx context.Context, req *models.CreateGameRequest) (*proto.GameView, error) {
	players := [2]hex.Player{
		{ID: req.Black.ID, Name: req.Black.Name},
		{ID: req.White.ID, Name: req.White.Name},
	}
	if players[0].ID == players[1].ID {
		return nil, fmt.Errorf("%w: black and white are both %s", hex.ErrInvalidPlayer, players[0].ID)
	}
	r, err := s.hub.Create(ctx, req.Size, players)
	if err != nil {
		return nil, err
	}
	return r.View(), nil
}

func (s *gameService) Get(ctx context.Context, id string) (*proto.GameView, error) {
	r, err := s.hub.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.View(), nil
}

func (s *gameService) Start(ctx context.Context, id string) (*proto.GameView, error) {
	r, err := s.hub.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.Start(ctx); err != nil {
		return nil, err
	}
	return r.View(), nil
}

func (s *gameService) Play(ctx context.Context, id string, req *models.MoveRequest) (*proto.GameView, error) {
	r, err := s.hub.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	m, err := moveOf(req, r.View().Size)
	if err != nil {
		return nil, err
	}
	if err := r.Play(ctx, *req.Player, m); err != nil {
		return nil, err
	}
	return r.View(), nil
}

// moveOf reads the move from whichever form the request used.
func moveOf(req *models.MoveRequest, size int) (hex.Move, error) {
	switch {
	case req.Swap:
		return hex.SwapMove(), nil
	case req.Move != "":
		return notation.ParseMove(req.Move, size)
	default:
		return hex.NewMove(*req.Row, *req.Col), nil
	}
}

func (s *gameService) Resign(ctx context.Context, id string, seat int) (*proto.GameView, error) {
	r, err := s.hub.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.Resign(ctx, seat); err != nil {
		return nil, err
	}
	return r.View(), nil
}

func (s *gameService) Cancel(ctx context.Context, id string) (*proto.GameView, error) {
	r, err := s.hub.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.Cancel(ctx); err != nil {
		return nil, err
	}
	return r.View(), nil
}

func (s *gameService) SGF(ctx context.Context, id string) (string, error) {
	r, err := s.hub.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return r.SGF(), nil
}

func (s *gameService) Import(ctx context.Context, sgf string, ids [2]string) (*proto.GameView, error) {
	r, err := s.hub.Import(ctx, sgf, ids)
	if err != nil {
		return nil, err
	}
	return r.View(), nil
}

func (s *gameService) Watch(ctx context.Context, id string) (<-chan events.Envelope, func() error, error) {
	return s.hub.Watch(ctx, id)
}

func (s *gameService) Archived(ctx context.Context, id string) (*repository.ArchivedGame, error) {
	return s.archive.FindByID(ctx, id)
}

func (s *gameService) History(ctx context.Context, playerID string, limit int) ([]repository.ArchivedGame, error) {
	if limit == 0 {
		limit = defaultHistoryLimit
	}
	return s.archive.ListByPlayer(ctx, playerID, limit)
}
