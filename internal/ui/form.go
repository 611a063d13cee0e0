package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/practicebook/internal/models"
	"github.com/desertthunder/practicebook/internal/services"
	"github.com/desertthunder/practicebook/internal/shared"
)

type formField int

const (
	dateField formField = iota
	pieceField
)

// RegimentForm collects a date and piece names and saves them as a new regiment.
//
// The draft survives a failed save so the user can retry by saving again.
type RegimentForm struct {
	ctx     context.Context
	service services.Service
	logger  *log.Logger
	date    textinput.Model
	piece   textinput.Model
	field   formField
	draft   *models.Regiment
	saving  bool
	invalid *shared.Failure
	alert   *shared.Failure
	saved   *models.Regiment
	loc     *time.Location
	now     func() time.Time
	help    help.Model
	keys    keyMap
}

var _ tea.Model = (*RegimentForm)(nil)

// NewRegimentForm creates an empty form backed by service.
func NewRegimentForm(ctx context.Context, service services.Service, logger *log.Logger) *RegimentForm {
	if logger == nil {
		logger = log.Default()
	}

	date := textinput.New()
	date.Prompt = "Date: "
	date.Placeholder = "YYYY-MM-DD (blank for today)"
	date.Focus()

	piece := textinput.New()
	piece.Prompt = "Piece: "
	piece.Placeholder = "name, enter to add"

	return &RegimentForm{
		ctx:     ctx,
		service: service,
		logger:  shared.WithLogger(logger, "view", "form"),
		date:    date,
		piece:   piece,
		draft:   models.NewDraftRegiment(time.Time{}),
		loc:     time.Local,
		now:     time.Now,
		help:    help.New(),
		keys:    newKeyMap().formKeys(),
	}
}

func (f *RegimentForm) Init() tea.Cmd {
	return textinput.Blink
}

func (f *RegimentForm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return f, f.handleKey(msg)
	case Msg:
		if msg.kind == MsgRegimentSaved {
			f.handleSaved(msg.data.(regimentSaved))
		}
		return f, nil
	}
	return f, f.updateInputs(msg)
}

func (f *RegimentForm) handleKey(msg tea.KeyMsg) tea.Cmd {
	if f.alert != nil {
		if key.Matches(msg, f.keys.dismiss) {
			f.alert = nil
		}
		return nil
	}

	switch {
	case key.Matches(msg, f.keys.save):
		return f.save()
	case key.Matches(msg, f.keys.up):
		return f.focus(dateField)
	case key.Matches(msg, f.keys.down):
		return f.focus(pieceField)
	case msg.Type == tea.KeyEnter:
		if f.field == dateField {
			return f.focus(pieceField)
		}
		f.addPiece()
		return nil
	}
	return f.updateInputs(msg)
}

func (f *RegimentForm) updateInputs(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if f.field == dateField {
		f.date, cmd = f.date.Update(msg)
	} else {
		f.piece, cmd = f.piece.Update(msg)
	}
	return cmd
}

func (f *RegimentForm) focus(field formField) tea.Cmd {
	f.field = field
	if field == dateField {
		f.piece.Blur()
		return f.date.Focus()
	}
	f.date.Blur()
	return f.piece.Focus()
}

// addPiece appends the typed name to the draft and clears the input. Blank names change nothing.
func (f *RegimentForm) addPiece() bool {
	if !f.draft.AddPiece(f.piece.Value()) {
		return false
	}
	f.piece.Reset()
	return true
}

func (f *RegimentForm) save() tea.Cmd {
	if f.saving {
		return nil
	}

	date, err := models.ParseDate(strings.TrimSpace(f.date.Value()), f.loc, f.now())
	if err != nil {
		f.invalid = shared.NewFailure("parse date", err)
		return nil
	}
	f.invalid = nil
	f.draft.Date = date
	f.saving = true

	draft := *f.draft
	draft.Pieces = append([]models.Piece(nil), f.draft.Pieces...)

	ctx, service := f.ctx, f.service
	return func() tea.Msg {
		created, err := service.CreateRegiment(ctx, &draft)
		return regimentSavedMsg(draft.DraftID, created, err)
	}
}

func (f *RegimentForm) handleSaved(res regimentSaved) {
	f.saving = false
	if res.err != nil {
		f.alert = shared.NewFailure("save regiment", res.err)
		f.logger.Error("failed to save regiment", "draft", res.draftID, "pieces", len(f.draft.Pieces), "err", res.err)
		return
	}
	if !f.reconcile(res.regiment) {
		f.logger.Warn("ignoring save result for a stale draft", "draft", res.draftID)
		return
	}
	f.logger.Info("saved regiment", "id", res.regiment.ID, "sequence", res.regiment.Sequence)
	f.reset()
}

// reconcile replaces the provisional draft with the persisted regiment the backend returned.
func (f *RegimentForm) reconcile(created *models.Regiment) bool {
	if created == nil || created.DraftID != f.draft.DraftID || !created.Persisted() {
		return false
	}
	f.saved = created
	return true
}

func (f *RegimentForm) reset() {
	f.draft = models.NewDraftRegiment(time.Time{})
	f.date.Reset()
	f.piece.Reset()
	f.invalid = nil
	f.focus(dateField)
}

// Draft returns the regiment being edited.
func (f *RegimentForm) Draft() *models.Regiment { return f.draft }

// Saved returns the last regiment persisted from this form, or nil.
func (f *RegimentForm) Saved() *models.Regiment { return f.saved }

// Alert returns the blocking save failure, or nil.
func (f *RegimentForm) Alert() *shared.Failure { return f.alert }

func (f *RegimentForm) View() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("New Regiment"))
	b.WriteString("\n")

	if f.alert != nil {
		b.WriteString(styles.alert.Render(fmt.Sprintf("Could not save regiment\n%v", f.alert.Err)))
		b.WriteString("\n")
		b.WriteString(f.help.ShortHelpView([]key.Binding{f.keys.dismiss}))
		return b.String()
	}

	b.WriteString(f.date.View())
	b.WriteString("\n")
	if f.invalid != nil {
		b.WriteString(styles.err.Render(f.invalid.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if len(f.draft.Pieces) == 0 {
		b.WriteString(styles.help.Render("No pieces yet"))
		b.WriteString("\n")
	}
	for i, p := range f.draft.Pieces {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p.Name)
	}
	b.WriteString(f.piece.View())
	b.WriteString("\n\n")

	switch {
	case f.saving:
		b.WriteString(styles.warn.Render("Saving..."))
		b.WriteString("\n")
	case f.saved != nil:
		b.WriteString(styles.ok.Render(fmt.Sprintf("✓ Saved regiment #%d", f.saved.Sequence)))
		b.WriteString("\n")
	}

	b.WriteString(f.help.ShortHelpView([]key.Binding{f.keys.up, f.keys.down, f.keys.add, f.keys.save}))
	return b.String()
}
