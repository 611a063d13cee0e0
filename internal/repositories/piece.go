package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/practicebook/internal/models"
	"github.com/desertthunder/practicebook/internal/shared"
)

// PieceRepository reads pieces. Pieces are written through [RegimentRepository.Create].
type PieceRepository struct {
	db *sql.DB
}

// NewPieceRepository creates a new PieceRepository with the given database connection
func NewPieceRepository(db *sql.DB) *PieceRepository {
	return &PieceRepository{db: db}
}

// Get retrieves a piece by ID without its logs. Pieces of soft-deleted regiments are not found.
func (r *PieceRepository) Get(id string) (*models.Piece, error) {
	piece := &models.Piece{Logs: []models.Log{}}
	err := r.db.QueryRow(`
		SELECT p.id, p.regiment_id, p.name, p.position
		FROM practice_pieces p
		JOIN regiments r ON r.id = p.regiment_id
		WHERE p.id = ? AND r.deleted_at IS NULL
	`, id).Scan(&piece.ID, &piece.RegimentID, &piece.Name, &piece.Position)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrPieceNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get piece: %w", err)
	}
	return piece, nil
}

// Exists reports whether a live piece with id exists.
func (r *PieceRepository) Exists(id string) (bool, error) {
	if _, err := r.Get(id); err != nil {
		if errors.Is(err, shared.ErrPieceNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListByRegiment retrieves the pieces of a regiment ordered by position, without logs.
func (r *PieceRepository) ListByRegiment(regimentID string) ([]models.Piece, error) {
	rows, err := r.db.Query(`
		SELECT id, regiment_id, name, position
		FROM practice_pieces
		WHERE regiment_id = ?
		ORDER BY position ASC
	`, regimentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pieces: %w", err)
	}
	defer rows.Close()

	pieces := []models.Piece{}
	for rows.Next() {
		piece := models.Piece{Logs: []models.Log{}}
		if err := rows.Scan(&piece.ID, &piece.RegimentID, &piece.Name, &piece.Position); err != nil {
			return nil, fmt.Errorf("failed to scan piece: %w", err)
		}
		pieces = append(pieces, piece)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return pieces, nil
}
