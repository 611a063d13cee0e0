package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/practicebook/internal/services"
)

const heartbeatInterval = 15 * time.Second

// BPMStream serves live BPM samples as Server-Sent Events.
//
// Each request holds one subscription, released when the client goes away.
type BPMStream struct {
	service   services.Service
	logger    *log.Logger
	heartbeat time.Duration
}

// NewBPMStream creates the event stream handler.
func NewBPMStream(service services.Service, logger *log.Logger) *BPMStream {
	return &BPMStream{service: service, logger: logger, heartbeat: heartbeatInterval}
}

// Routes returns the HTTP routes this handler serves.
func (h *BPMStream) Routes() []string {
	return []string{"GET /api/bpm"}
}

func (h *BPMStream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sub, err := h.service.SubscribeBPM(ctx)
	if err != nil {
		h.logger.Warn("bpm subscription failed", "error", err)
		writeJSON(w, StatusFor(err), errorBody{Error: err.Error()})
		return
	}
	defer sub.Close()

	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		h.logger.Error("streaming unsupported", "error", err)
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		case bpm, ok := <-sub.C:
			if !ok {
				return
			}
			if _, err := w.Write(FormatEvent("bpm", strconv.FormatFloat(bpm, 'f', -1, 64))); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

// FormatEvent renders a single-line Server-Sent Event frame.
func FormatEvent(event, data string) []byte {
	return fmt.Appendf(nil, "event: %s\ndata: %s\n\n", event, data)
}
