package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/practicebook/internal/formatter"
	"github.com/desertthunder/practicebook/internal/models"
	"github.com/desertthunder/practicebook/internal/services"
	"github.com/desertthunder/practicebook/internal/shared"
	"github.com/dustin/go-humanize"
)

// ListState is the load state of a [RegimentList].
type ListState int

const (
	ListLoading ListState = iota
	ListReady
)

// pieceRef locates a piece row within the loaded regiments.
type pieceRef struct {
	regiment int
	piece    int
}

// RegimentList renders regiment history grouped by week and lets the user pick the active piece.
//
// A failed load keeps the list in [ListLoading] and only adds a failure line.
type RegimentList struct {
	ctx         context.Context
	service     services.Service
	logger      *log.Logger
	state       ListState
	regiments   []models.Regiment
	rows        []pieceRef
	cursor      int
	activeID    string
	activeKnown bool
	failure     *shared.Failure
	spinner     spinner.Model
	now         func() time.Time
	help        help.Model
	keys        keyMap
}

var _ tea.Model = (*RegimentList)(nil)

// NewRegimentList creates a list view in the loading state.
func NewRegimentList(ctx context.Context, service services.Service, logger *log.Logger) *RegimentList {
	if logger == nil {
		logger = log.Default()
	}
	return &RegimentList{
		ctx:     ctx,
		service: service,
		logger:  shared.WithLogger(logger, "view", "list"),
		state:   ListLoading,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		now:     time.Now,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init loads regiments and the active piece as two independent commands.
func (l *RegimentList) Init() tea.Cmd {
	return tea.Batch(l.spinner.Tick, l.loadRegiments(), l.loadActive())
}

func (l *RegimentList) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return l, l.handleKey(msg)
	case spinner.TickMsg:
		if l.state != ListLoading {
			return l, nil
		}
		var cmd tea.Cmd
		l.spinner, cmd = l.spinner.Update(msg)
		return l, cmd
	case Msg:
		switch msg.kind {
		case MsgRegimentsLoaded:
			l.handleLoaded(msg.data.(regimentsLoaded))
		case MsgActiveLoaded:
			l.handleActive(msg.data.(activeLoaded))
		case MsgActiveMarked:
			l.handleMarked(msg.data.(activeMarked))
		}
	}
	return l, nil
}

func (l *RegimentList) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, l.keys.reload):
		return l.Reload()
	case l.state != ListReady:
		return nil
	case key.Matches(msg, l.keys.up):
		if l.cursor > 0 {
			l.cursor--
		}
	case key.Matches(msg, l.keys.down):
		if l.cursor < len(l.rows)-1 {
			l.cursor++
		}
	case key.Matches(msg, l.keys.activate):
		return l.markActive()
	}
	return nil
}

// Reload re-runs both queries. The view shows the loading state until regiments arrive.
func (l *RegimentList) Reload() tea.Cmd {
	l.state = ListLoading
	l.failure = nil
	return tea.Batch(l.spinner.Tick, l.loadRegiments(), l.loadActive())
}

func (l *RegimentList) loadRegiments() tea.Cmd {
	ctx, service := l.ctx, l.service
	return func() tea.Msg {
		regiments, err := service.LoadRegiments(ctx)
		return regimentsLoadedMsg(regiments, err)
	}
}

func (l *RegimentList) loadActive() tea.Cmd {
	ctx, service := l.ctx, l.service
	return func() tea.Msg {
		id, ok, err := service.ActivePiece(ctx)
		return activeLoadedMsg(id, ok, err)
	}
}

func (l *RegimentList) markActive() tea.Cmd {
	piece := l.Selected()
	if piece == nil || !l.CanActivate(piece.ID) {
		return nil
	}

	ctx, service, id := l.ctx, l.service, piece.ID
	return func() tea.Msg {
		return activeMarkedMsg(id, service.MarkActivePiece(ctx, id))
	}
}

func (l *RegimentList) handleLoaded(res regimentsLoaded) {
	if res.err != nil {
		l.state = ListLoading
		l.failure = shared.NewFailure("load regiments", res.err)
		l.logger.Error("failed to load regiments", "err", res.err)
		return
	}

	l.regiments = res.regiments
	l.rows = l.rows[:0]
	for ri := range l.regiments {
		for pi := range l.regiments[ri].Pieces {
			l.rows = append(l.rows, pieceRef{regiment: ri, piece: pi})
		}
	}
	l.cursor = min(l.cursor, max(len(l.rows)-1, 0))
	l.failure = nil
	l.state = ListReady
}

func (l *RegimentList) handleActive(res activeLoaded) {
	if res.err != nil {
		l.activeID, l.activeKnown = "", false
		l.logger.Error("failed to load active piece", "err", res.err)
		return
	}
	l.activeKnown = true
	l.activeID = ""
	if res.ok {
		l.activeID = res.pieceID
	}
}

func (l *RegimentList) handleMarked(res activeMarked) {
	if res.err != nil {
		l.failure = shared.NewFailure("mark active piece", res.err)
		l.logger.Error("failed to mark piece active", "piece", res.pieceID, "err", res.err)
		return
	}
	l.failure = nil
	l.activeID, l.activeKnown = res.pieceID, true
}

// State reports whether the list is loading or ready.
func (l *RegimentList) State() ListState { return l.state }

// ActiveID returns the active piece ID and whether it is known.
func (l *RegimentList) ActiveID() (string, bool) { return l.activeID, l.activeKnown }

// Failure returns the last failure shown by the view, or nil.
func (l *RegimentList) Failure() *shared.Failure { return l.failure }

// Selected returns the piece under the cursor, or nil when there is none.
func (l *RegimentList) Selected() *models.Piece {
	if l.state != ListReady || len(l.rows) == 0 {
		return nil
	}
	ref := l.rows[l.cursor]
	return &l.regiments[ref.regiment].Pieces[ref.piece]
}

// CanActivate reports whether the mark-active action is enabled for pieceID.
func (l *RegimentList) CanActivate(pieceID string) bool {
	return pieceID != "" && !(l.activeKnown && l.activeID == pieceID)
}

func (l *RegimentList) View() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Regiments"))
	b.WriteString("\n")

	if l.state == ListLoading {
		b.WriteString(l.spinner.View() + " Loading regiments...\n")
		if l.failure != nil {
			b.WriteString(styles.err.Render(l.failure.Error()))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(l.help.ShortHelpView([]key.Binding{l.keys.reload, l.keys.next, l.keys.quit}))
		return b.String()
	}

	if len(l.regiments) == 0 {
		b.WriteString(styles.help.Render("No regiments yet. Press tab to create one."))
		b.WriteString("\n")
	}

	row := 0
	for _, r := range l.regiments {
		fmt.Fprintf(&b, "%s %s\n", styles.ok.Render(models.WeekTitle(r.Date)), styles.help.Render(formatter.Label(&r)))
		if len(r.Pieces) == 0 {
			b.WriteString(styles.help.Render("  no pieces"))
			b.WriteString("\n")
		}
		for i := range r.Pieces {
			b.WriteString(l.renderPiece(&r.Pieces[i], row == l.cursor))
			b.WriteString("\n")
			row++
		}
		b.WriteString("\n")
	}

	if l.failure != nil {
		b.WriteString(styles.err.Render(l.failure.Error()))
		b.WriteString("\n")
	}
	b.WriteString(l.help.ShortHelpView([]key.Binding{l.keys.up, l.keys.down, l.keys.activate, l.keys.reload, l.keys.next, l.keys.quit}))
	return b.String()
}

func (l *RegimentList) renderPiece(p *models.Piece, selected bool) string {
	cursor := "  "
	if selected {
		cursor = "> "
	}

	name := p.Name
	if l.activeKnown && p.ID == l.activeID {
		name = styles.active.Render(name) + " " + styles.ok.Render("active")
	}

	stats := "no logs"
	if maxBPM, ok := p.MaxBPM(); ok {
		stats = fmt.Sprintf("max %s BPM %s", formatter.FormatBPM(maxBPM), formatter.Sparkline(p.BPMSeries()))
		if latest := p.LatestLog(); latest != nil {
			stats += " · " + humanize.RelTime(latest.Timestamp, l.now(), "ago", "from now")
		}
	}
	return fmt.Sprintf("%s%s  %s", cursor, name, styles.help.Render(stats))
}
