package services

import (
	"context"
	"sync"

	"github.com/desertthunder/practicebook/internal/models"
)

// Service is the command, query and event boundary of the practice backend.
type Service interface {
	// CreateRegiment persists a draft regiment and returns it with backend identifiers.
	// Incoming IDs are ignored; the DraftID is echoed back for reconciliation.
	CreateRegiment(ctx context.Context, regiment *models.Regiment) (*models.Regiment, error)

	// LoadRegiments returns all regiments with pieces and logs, newest first.
	LoadRegiments(ctx context.Context) ([]models.Regiment, error)

	// DeleteRegiment removes a regiment.
	DeleteRegiment(ctx context.Context, id string) error

	// ActivePiece returns the active piece ID. ok is false when none is active.
	ActivePiece(ctx context.Context) (pieceID string, ok bool, err error)

	// MarkActivePiece makes pieceID the target of live BPM logging.
	MarkActivePiece(ctx context.Context, pieceID string) error

	// SubscribeBPM opens a live BPM stream. The caller must Close it.
	SubscribeBPM(ctx context.Context) (*Subscription, error)

	// Name returns the name of the service (e.g., "local", "http://127.0.0.1:3000")
	Name() string
}

// Subscription is a live BPM stream. C is closed once the subscription ends.
type Subscription struct {
	C <-chan float64

	once    sync.Once
	release func()
}

// NewSubscription wraps c. release runs exactly once, on the first Close.
func NewSubscription(c <-chan float64, release func()) *Subscription {
	return &Subscription{C: c, release: release}
}

// Close releases the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.release != nil {
			s.release()
		}
	})
}
