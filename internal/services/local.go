package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/practicebook/internal/models"
	"github.com/desertthunder/practicebook/internal/repositories"
	"github.com/desertthunder/practicebook/internal/shared"
	"github.com/desertthunder/practicebook/internal/telemetry"
)

var _ Service = (*LocalService)(nil)

// LocalService implements [Service] in-process.
type LocalService struct {
	regiments *repositories.RegimentRepository
	pieces    *repositories.PieceRepository
	active    *repositories.ActivePieceRepository
	logs      *repositories.LogRepository
	broker    *telemetry.Broker
	logger    *log.Logger
}

// NewLocalService creates a service over db. A nil broker makes [LocalService.SubscribeBPM] fail with [shared.ErrServiceUnavailable].
func NewLocalService(db *sql.DB, broker *telemetry.Broker, logger *log.Logger) *LocalService {
	if logger == nil {
		logger = log.Default()
	}
	return &LocalService{
		regiments: repositories.NewRegimentRepository(db),
		pieces:    repositories.NewPieceRepository(db),
		active:    repositories.NewActivePieceRepository(db),
		logs:      repositories.NewLogRepository(db),
		broker:    broker,
		logger:    shared.WithLogger(logger, "service", "local"),
	}
}

func (s *LocalService) Name() string { return "local" }

// Logs exposes the log repository for the recorder.
func (s *LocalService) Logs() *repositories.LogRepository { return s.logs }

// Active exposes the active piece repository for the recorder.
func (s *LocalService) Active() *repositories.ActivePieceRepository { return s.active }

func (s *LocalService) CreateRegiment(ctx context.Context, regiment *models.Regiment) (*models.Regiment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if regiment == nil {
		return nil, shared.NewValidationError("regiment", "is required")
	}

	draft := &models.Regiment{
		DraftID: regiment.DraftID,
		Date:    regiment.Date,
		Pieces:  make([]models.Piece, 0, len(regiment.Pieces)),
	}
	for _, piece := range regiment.Pieces {
		draft.Pieces = append(draft.Pieces, models.Piece{DraftID: piece.DraftID, Name: piece.Name})
	}

	if err := s.regiments.Create(draft); err != nil {
		return nil, err
	}

	s.logger.Info("created regiment", "id", draft.ID, "sequence", draft.Sequence, "pieces", len(draft.Pieces))
	return draft, nil
}

func (s *LocalService) LoadRegiments(ctx context.Context) ([]models.Regiment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	found, err := s.regiments.List(nil)
	if err != nil {
		return nil, err
	}

	regiments := make([]models.Regiment, 0, len(found))
	for _, r := range found {
		regiments = append(regiments, *r)
	}
	return regiments, nil
}

// DeleteRegiment soft-deletes the regiment and clears the active piece when it belonged to it.
func (s *LocalService) DeleteRegiment(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	regiment, err := s.regiments.Get(id)
	if err != nil {
		return err
	}

	active, err := s.active.Get()
	if err != nil {
		return err
	}

	if err := s.regiments.Delete(id); err != nil {
		return err
	}

	if active.PieceID != "" && regiment.FindPiece(active.PieceID) != nil {
		if err := s.active.Clear(); err != nil {
			return fmt.Errorf("regiment deleted but active piece not cleared: %w", err)
		}
	}

	s.logger.Info("deleted regiment", "id", id)
	return nil
}

func (s *LocalService) ActivePiece(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	active, err := s.active.Get()
	if err != nil {
		return "", false, err
	}
	return active.PieceID, active.PieceID != "", nil
}

func (s *LocalService) MarkActivePiece(ctx context.Context, pieceID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if pieceID == "" {
		return shared.NewValidationError("piece_id", "is required")
	}

	if _, err := s.pieces.Get(pieceID); err != nil {
		return err
	}
	if err := s.active.Set(pieceID); err != nil {
		return err
	}

	s.logger.Info("marked active piece", "piece_id", pieceID)
	return nil
}

// SubscribeBPM subscribes to the broker. The subscription is also released when ctx ends.
func (s *LocalService) SubscribeBPM(ctx context.Context) (*Subscription, error) {
	if s.broker == nil {
		return nil, fmt.Errorf("%w: no live BPM source", shared.ErrServiceUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ch, cancel := s.broker.Subscribe()
	sub := NewSubscription(ch, cancel)
	context.AfterFunc(ctx, sub.Close)
	return sub, nil
}
