package models

import (
	"math"
	"strings"
	"time"

	"github.com/desertthunder/practicebook/internal/shared"
	"github.com/google/uuid"
)

const draftPrefix = "draft-"

// Regiment is a dated collection of pieces to practice.
type Regiment struct {
	ID        string    `json:"id,omitempty"`
	DraftID   string    `json:"draft_id,omitempty"`
	Sequence  int       `json:"sequence,omitempty"`
	Date      time.Time `json:"date"`
	Pieces    []Piece   `json:"pieces"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Piece is a named entry of a regiment with its BPM history.
type Piece struct {
	ID         string `json:"id,omitempty"`
	DraftID    string `json:"draft_id,omitempty"`
	RegimentID string `json:"regiment_id,omitempty"`
	Name       string `json:"name"`
	Position   int    `json:"position"`
	Logs       []Log  `json:"logs"`
}

// Log is one BPM sample for a piece.
type Log struct {
	ID        string    `json:"id,omitempty"`
	PieceID   string    `json:"piece_id"`
	BPM       float64   `json:"bpm"`
	Timestamp time.Time `json:"timestamp"`
}

// ActivePiece names the piece currently receiving live samples. PieceID is empty when none is active.
type ActivePiece struct {
	PieceID   string    `json:"piece_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ActivePieceBody is the wire shape of the active piece. PieceID is null when none is active.
type ActivePieceBody struct {
	PieceID *string `json:"piece_id"`
}

// NewDraftID returns a provisional identifier for a client-side draft.
func NewDraftID() string {
	return draftPrefix + uuid.NewString()
}

// IsProvisional reports whether id was produced by [NewDraftID].
func IsProvisional(id string) bool {
	return strings.HasPrefix(id, draftPrefix)
}

// NewDraftRegiment starts an unsaved regiment for date.
func NewDraftRegiment(date time.Time) *Regiment {
	return &Regiment{DraftID: NewDraftID(), Date: date}
}

// AddPiece appends a piece named name. Blank names are rejected and leave the regiment unchanged.
func (r *Regiment) AddPiece(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	r.Pieces = append(r.Pieces, Piece{
		DraftID:  NewDraftID(),
		Name:     name,
		Position: len(r.Pieces),
	})
	return true
}

// PieceNames returns piece names in order.
func (r *Regiment) PieceNames() []string {
	names := make([]string, len(r.Pieces))
	for i, p := range r.Pieces {
		names[i] = p.Name
	}
	return names
}

// Persisted reports whether the backend has assigned an ID.
func (r *Regiment) Persisted() bool {
	return r.ID != "" && !IsProvisional(r.ID)
}

// FindPiece returns the piece with id, or nil.
func (r *Regiment) FindPiece(id string) *Piece {
	for i := range r.Pieces {
		if r.Pieces[i].ID == id {
			return &r.Pieces[i]
		}
	}
	return nil
}

func (r *Regiment) Validate() error {
	if r.Date.IsZero() {
		return shared.NewValidationError("date", "is required")
	}
	for i := range r.Pieces {
		if err := r.Pieces[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Piece) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return shared.NewValidationError("name", "must not be empty")
	}
	for i := range p.Logs {
		if err := p.Logs[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// MaxBPM returns the highest logged BPM. ok is false when there are no logs.
func (p *Piece) MaxBPM() (max float64, ok bool) {
	for i, l := range p.Logs {
		if i == 0 || l.BPM > max {
			max = l.BPM
		}
	}
	return max, len(p.Logs) > 0
}

// BPMSeries returns the logged BPM values in log order.
func (p *Piece) BPMSeries() []float64 {
	series := make([]float64, len(p.Logs))
	for i, l := range p.Logs {
		series[i] = l.BPM
	}
	return series
}

// LatestLog returns the most recent log, or nil.
func (p *Piece) LatestLog() *Log {
	var latest *Log
	for i := range p.Logs {
		if latest == nil || p.Logs[i].Timestamp.After(latest.Timestamp) {
			latest = &p.Logs[i]
		}
	}
	return latest
}

// NewLog builds a sample for pieceID.
func NewLog(pieceID string, bpm float64, ts time.Time) Log {
	return Log{PieceID: pieceID, BPM: bpm, Timestamp: ts}
}

// ValidBPM reports whether bpm is a finite, non-negative sample.
func ValidBPM(bpm float64) bool {
	return !math.IsNaN(bpm) && !math.IsInf(bpm, 0) && bpm >= 0
}

func (l *Log) Validate() error {
	if !ValidBPM(l.BPM) {
		return shared.NewValidationError("bpm", "must be a non-negative number")
	}
	if l.Timestamp.IsZero() {
		return shared.NewValidationError("timestamp", "is required")
	}
	return nil
}
