package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/practicebook/internal/models"
	"github.com/desertthunder/practicebook/internal/shared"
)

var _ models.Repository[*models.Regiment] = (*RegimentRepository)(nil)

// RegimentRepository implements models.Repository[*models.Regiment].
//
// Pieces are owned by their regiment: they are written with it and loaded with it, logs included.
type RegimentRepository struct {
	db *sql.DB
}

// NewRegimentRepository creates a new RegimentRepository with the given database connection
func NewRegimentRepository(db *sql.DB) *RegimentRepository {
	return &RegimentRepository{db: db}
}

// Create inserts the regiment and its pieces in a single transaction.
//
// Backend identifiers replace whatever IDs the caller set; DraftIDs are left untouched for reconciliation.
// The regiment is only modified once the transaction commits.
func (r *RegimentRepository) Create(regiment *models.Regiment) error {
	if err := regiment.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequence, err := NextSequence(tx, "regiments")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	now := time.Now().UTC()
	date := calendarDay(regiment.Date)

	_, err = tx.Exec(`
		INSERT INTO regiments (id, sequence, date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, sequence, date, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert regiment: %w", err)
	}

	pieceIDs := make([]string, len(regiment.Pieces))
	for i, piece := range regiment.Pieces {
		pieceIDs[i] = shared.GenerateID()
		_, err := tx.Exec(`
			INSERT INTO practice_pieces (id, regiment_id, name, position, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, pieceIDs[i], id, piece.Name, i, now)
		if err != nil {
			return fmt.Errorf("failed to insert piece %q: %w", piece.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit regiment: %w", err)
	}

	regiment.ID = id
	regiment.Sequence = sequence
	regiment.Date = date
	regiment.CreatedAt = now
	for i := range regiment.Pieces {
		regiment.Pieces[i].ID = pieceIDs[i]
		regiment.Pieces[i].RegimentID = id
		regiment.Pieces[i].Position = i
		regiment.Pieces[i].Logs = []models.Log{}
	}

	return nil
}

// Get retrieves a regiment with its pieces and logs, excluding soft-deleted regiments
func (r *RegimentRepository) Get(id string) (*models.Regiment, error) {
	regiments, err := r.load(`
		SELECT id, sequence, date, created_at
		FROM regiments
		WHERE id = ? AND deleted_at IS NULL
	`, id)
	if err != nil {
		return nil, err
	}
	if len(regiments) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrRegimentNotFound, id)
	}
	return regiments[0], nil
}

// Delete soft-deletes a regiment by ID
func (r *RegimentRepository) Delete(id string) error {
	result, err := r.db.Exec(`
		UPDATE regiments
		SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, time.Now().UTC(), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete regiment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRegimentNotFound, id)
	}

	return nil
}

// List retrieves regiments newest first, excluding soft-deleted regiments.
//
// Supported criteria: "since" ([time.Time], inclusive lower bound on date) and "limit" (int).
func (r *RegimentRepository) List(criteria map[string]any) ([]*models.Regiment, error) {
	query := `
		SELECT id, sequence, date, created_at
		FROM regiments
		WHERE deleted_at IS NULL
	`
	args := []any{}

	if since, ok := criteria["since"].(time.Time); ok && !since.IsZero() {
		query += " AND date >= ?"
		args = append(args, calendarDay(since))
	}

	query += " ORDER BY date DESC, sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	return r.load(query, args...)
}

// load runs a regiment query and attaches pieces and logs in two follow-up queries.
func (r *RegimentRepository) load(query string, args ...any) ([]*models.Regiment, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query regiments: %w", err)
	}

	var regiments []*models.Regiment
	byID := make(map[string]*models.Regiment)
	for rows.Next() {
		regiment := &models.Regiment{Pieces: []models.Piece{}}
		if err := rows.Scan(&regiment.ID, &regiment.Sequence, &regiment.Date, &regiment.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan regiment: %w", err)
		}
		regiments = append(regiments, regiment)
		byID[regiment.ID] = regiment
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	rows.Close()

	if len(regiments) == 0 {
		return regiments, nil
	}

	if err := r.attachPieces(regiments, byID); err != nil {
		return nil, err
	}
	return regiments, nil
}

func (r *RegimentRepository) attachPieces(regiments []*models.Regiment, byID map[string]*models.Regiment) error {
	ids := make([]any, 0, len(regiments))
	for _, regiment := range regiments {
		ids = append(ids, regiment.ID)
	}

	rows, err := r.db.Query(fmt.Sprintf(`
		SELECT id, regiment_id, name, position
		FROM practice_pieces
		WHERE regiment_id IN (%s)
		ORDER BY regiment_id, position ASC
	`, placeholders(len(ids))), ids...)
	if err != nil {
		return fmt.Errorf("failed to query pieces: %w", err)
	}

	var pieces []models.Piece
	for rows.Next() {
		piece := models.Piece{Logs: []models.Log{}}
		if err := rows.Scan(&piece.ID, &piece.RegimentID, &piece.Name, &piece.Position); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan piece: %w", err)
		}
		pieces = append(pieces, piece)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("row iteration error: %w", err)
	}
	rows.Close()

	if len(pieces) == 0 {
		return nil
	}

	logs, err := r.logsFor(pieces)
	if err != nil {
		return err
	}

	for _, piece := range pieces {
		if l, ok := logs[piece.ID]; ok {
			piece.Logs = l
		}
		regiment := byID[piece.RegimentID]
		regiment.Pieces = append(regiment.Pieces, piece)
	}
	return nil
}

func (r *RegimentRepository) logsFor(pieces []models.Piece) (map[string][]models.Log, error) {
	ids := make([]any, len(pieces))
	for i, p := range pieces {
		ids[i] = p.ID
	}

	rows, err := r.db.Query(fmt.Sprintf(`
		SELECT id, piece_id, bpm, timestamp
		FROM practice_logs
		WHERE piece_id IN (%s)
		ORDER BY timestamp ASC, id ASC
	`, placeholders(len(ids))), ids...)
	if err != nil {
		return nil, fmt.Errorf("failed to query logs: %w", err)
	}
	defer rows.Close()

	logs := make(map[string][]models.Log)
	for rows.Next() {
		var l models.Log
		if err := rows.Scan(&l.ID, &l.PieceID, &l.BPM, &l.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan log: %w", err)
		}
		logs[l.PieceID] = append(logs[l.PieceID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return logs, nil
}

// calendarDay stores a regiment date as midnight UTC of the day it names in its own location.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
