package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/practicebook/internal/models"
	"github.com/desertthunder/practicebook/internal/shared"
)

// ActivePieceRepository persists the single, global active piece.
type ActivePieceRepository struct {
	db *sql.DB
}

// NewActivePieceRepository creates a new ActivePieceRepository with the given database connection
func NewActivePieceRepository(db *sql.DB) *ActivePieceRepository {
	return &ActivePieceRepository{db: db}
}

// Get returns the active piece. PieceID is empty when none has been marked or the piece was removed.
func (r *ActivePieceRepository) Get() (*models.ActivePiece, error) {
	var (
		pieceID   sql.NullString
		updatedAt time.Time
	)
	err := r.db.QueryRow(`
		SELECT a.piece_id, a.updated_at
		FROM active_piece a
		LEFT JOIN practice_pieces p ON p.id = a.piece_id
		LEFT JOIN regiments r ON r.id = p.regiment_id
		WHERE a.id = 1 AND (a.piece_id IS NULL OR r.deleted_at IS NULL)
	`).Scan(&pieceID, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.ActivePiece{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active piece: %w", err)
	}
	return &models.ActivePiece{PieceID: pieceID.String, UpdatedAt: updatedAt}, nil
}

// Set marks pieceID as the active piece, replacing any previous one.
func (r *ActivePieceRepository) Set(pieceID string) error {
	if pieceID == "" {
		return shared.NewValidationError("piece_id", "is required")
	}

	_, err := r.db.Exec(`
		INSERT INTO active_piece (id, piece_id, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET piece_id = excluded.piece_id, updated_at = excluded.updated_at
	`, pieceID, time.Now().UTC())
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: %s", shared.ErrPieceNotFound, pieceID)
	}
	if err != nil {
		return fmt.Errorf("failed to set active piece: %w", err)
	}
	return nil
}

// Clear removes the active piece.
func (r *ActivePieceRepository) Clear() error {
	if _, err := r.db.Exec(`DELETE FROM active_piece WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to clear active piece: %w", err)
	}
	return nil
}
