package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/practicebook/internal/models"
	"github.com/desertthunder/practicebook/internal/shared"
)

// LogRepository stores BPM samples.
type LogRepository struct {
	db *sql.DB
}

// NewLogRepository creates a new LogRepository with the given database connection
func NewLogRepository(db *sql.DB) *LogRepository {
	return &LogRepository{db: db}
}

// Create stores a sample and assigns its ID. Unknown pieces yield [shared.ErrPieceNotFound].
func (r *LogRepository) Create(l *models.Log) error {
	if err := l.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if l.PieceID == "" {
		return shared.NewValidationError("piece_id", "is required")
	}

	id := shared.GenerateID()
	ts := l.Timestamp.UTC()

	_, err := r.db.Exec(`
		INSERT INTO practice_logs (id, piece_id, bpm, timestamp)
		VALUES (?, ?, ?, ?)
	`, id, l.PieceID, l.BPM, ts)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: %s", shared.ErrPieceNotFound, l.PieceID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert log: %w", err)
	}

	l.ID = id
	l.Timestamp = ts
	return nil
}

// ListByPiece returns the samples of a piece, oldest first.
func (r *LogRepository) ListByPiece(pieceID string) ([]models.Log, error) {
	rows, err := r.db.Query(`
		SELECT id, piece_id, bpm, timestamp
		FROM practice_logs
		WHERE piece_id = ?
		ORDER BY timestamp ASC, id ASC
	`, pieceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query logs: %w", err)
	}
	defer rows.Close()

	logs := []models.Log{}
	for rows.Next() {
		var l models.Log
		if err := rows.Scan(&l.ID, &l.PieceID, &l.BPM, &l.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan log: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return logs, nil
}
