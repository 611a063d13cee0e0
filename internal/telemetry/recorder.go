package telemetry

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/practicebook/internal/models"
	"github.com/desertthunder/practicebook/internal/shared"
	"golang.org/x/time/rate"
)

// ActiveSource reports the currently active piece.
type ActiveSource interface {
	Get() (*models.ActivePiece, error)
}

// LogWriter persists practice logs.
type LogWriter interface {
	Create(l *models.Log) error
}

// Recorder appends samples to the active piece's log history.
type Recorder struct {
	active  ActiveSource
	logs    LogWriter
	limiter *rate.Limiter
	logger  *log.Logger
	now     func() time.Time
}

// NewRecorder creates a recorder writing at most perSecond logs per second. A non-positive rate disables throttling.
func NewRecorder(active ActiveSource, logs LogWriter, perSecond float64, logger *log.Logger) *Recorder {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	if logger == nil {
		logger = log.Default()
	}

	return &Recorder{
		active:  active,
		logs:    logs,
		limiter: rate.NewLimiter(limit, 1),
		logger:  shared.WithLogger(logger, "component", "recorder"),
		now:     time.Now,
	}
}

// Record stores bpm against the active piece. It reports false when there is no active piece or the sample was throttled.
func (r *Recorder) Record(bpm float64) (bool, error) {
	active, err := r.active.Get()
	if err != nil {
		return false, err
	}
	if active.PieceID == "" {
		return false, nil
	}
	if !r.limiter.Allow() {
		return false, nil
	}

	l := models.NewLog(active.PieceID, bpm, r.now())
	if err := r.logs.Create(&l); err != nil {
		return false, err
	}
	return true, nil
}

// Run records every sample from samples until ctx is done or the channel closes.
func (r *Recorder) Run(ctx context.Context, samples <-chan float64) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case bpm, ok := <-samples:
			if !ok {
				return nil
			}
			if _, err := r.Record(bpm); err != nil {
				r.logger.Error("failed to record sample", "bpm", bpm, "error", err)
			}
		}
	}
}
