package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/practicebook/internal/formatter"
	"github.com/desertthunder/practicebook/internal/services"
	"github.com/desertthunder/practicebook/internal/shared"
)

const bpmPlaceholder = "--"

// LiveBPM shows the most recent BPM sample pushed by the backend.
//
// It subscribes once in Init and holds the subscription until Close.
type LiveBPM struct {
	ctx        context.Context
	service    services.Service
	logger     *log.Logger
	sub        *services.Subscription
	subscribed bool
	closed     bool
	bpm        float64
	received   bool
	failure    *shared.Failure
	help       help.Model
	keys       keyMap
}

var _ tea.Model = (*LiveBPM)(nil)

func NewLiveBPM(ctx context.Context, service services.Service, logger *log.Logger) *LiveBPM {
	if logger == nil {
		logger = log.Default()
	}
	return &LiveBPM{
		ctx:     ctx,
		service: service,
		logger:  shared.WithLogger(logger, "view", "live"),
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

func (l *LiveBPM) Init() tea.Cmd {
	if l.subscribed || l.closed {
		return nil
	}
	l.subscribed = true

	ctx, service := l.ctx, l.service
	return func() tea.Msg {
		sub, err := service.SubscribeBPM(ctx)
		return subscribedMsg(l, sub, err)
	}
}

func (l *LiveBPM) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, ok := msg.(Msg)
	if !ok {
		return l, nil
	}
	ev, ok := m.data.(liveEvent)
	if !ok || ev.owner != l {
		return l, nil
	}

	switch m.kind {
	case MsgSubscribed:
		if ev.err != nil {
			l.failure = shared.NewFailure("subscribe to bpm", ev.err)
			l.logger.Error("failed to subscribe to bpm", "err", ev.err)
			return l, nil
		}
		if l.closed {
			ev.sub.Close()
			return l, nil
		}
		l.sub = ev.sub
		return l, l.wait()
	case MsgBPMSample:
		if l.closed {
			return l, nil
		}
		l.bpm, l.received = ev.bpm, true
		return l, l.wait()
	case MsgStreamClosed:
		if !l.closed {
			l.failure = shared.NewFailure("bpm stream", shared.ErrSubscriptionClosed)
			l.logger.Warn("bpm stream closed")
			l.sub = nil
		}
	}
	return l, nil
}

// wait reads the next sample. It is re-armed after every sample.
func (l *LiveBPM) wait() tea.Cmd {
	sub := l.sub
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		bpm, ok := <-sub.C
		if !ok {
			return streamClosedMsg(l)
		}
		return bpmSampleMsg(l, bpm)
	}
}

// Close releases the subscription. It is safe to call more than once.
func (l *LiveBPM) Close() {
	l.closed = true
	if l.sub != nil {
		l.sub.Close()
		l.sub = nil
	}
}

// Value returns the displayed text: the latest sample, or the placeholder before the first one.
func (l *LiveBPM) Value() string {
	if !l.received {
		return bpmPlaceholder
	}
	return formatter.FormatBPM(l.bpm)
}

func (l *LiveBPM) View() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Live BPM"))
	b.WriteString("\n")
	b.WriteString(styles.ok.Render(l.Value()))
	b.WriteString(" BPM\n\n")
	if l.failure != nil {
		b.WriteString(styles.err.Render(l.failure.Error()))
		b.WriteString("\n")
	}
	b.WriteString(l.help.ShortHelpView([]key.Binding{l.keys.next, l.keys.quit}))
	return b.String()
}
