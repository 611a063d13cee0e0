package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/practicebook/internal/models"
	"github.com/desertthunder/practicebook/internal/services"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgRegimentSaved MsgKind = iota
	MsgRegimentsLoaded
	MsgActiveLoaded
	MsgActiveMarked
	MsgSubscribed
	MsgBPMSample
	MsgStreamClosed
)

type regimentSaved struct {
	draftID  string
	regiment *models.Regiment
	err      error
}

type regimentsLoaded struct {
	regiments []models.Regiment
	err       error
}

type activeLoaded struct {
	pieceID string
	ok      bool
	err     error
}

type activeMarked struct {
	pieceID string
	err     error
}

// liveEvent carries the [LiveBPM] that issued the command so late messages reach their owner.
type liveEvent struct {
	owner *LiveBPM
	sub   *services.Subscription
	bpm   float64
	err   error
}

// regimentSavedMsg is the constructor for [MsgRegimentSaved]
func regimentSavedMsg(draftID string, regiment *models.Regiment, err error) Msg {
	return Msg{kind: MsgRegimentSaved, data: regimentSaved{draftID, regiment, err}}
}

// regimentsLoadedMsg is the constructor for [MsgRegimentsLoaded]
func regimentsLoadedMsg(regiments []models.Regiment, err error) Msg {
	return Msg{kind: MsgRegimentsLoaded, data: regimentsLoaded{regiments, err}}
}

// activeLoadedMsg is the constructor for [MsgActiveLoaded]
func activeLoadedMsg(pieceID string, ok bool, err error) Msg {
	return Msg{kind: MsgActiveLoaded, data: activeLoaded{pieceID, ok, err}}
}

// activeMarkedMsg is the constructor for [MsgActiveMarked]
func activeMarkedMsg(pieceID string, err error) Msg {
	return Msg{kind: MsgActiveMarked, data: activeMarked{pieceID, err}}
}

// subscribedMsg is the constructor for [MsgSubscribed]
func subscribedMsg(owner *LiveBPM, sub *services.Subscription, err error) Msg {
	return Msg{kind: MsgSubscribed, data: liveEvent{owner: owner, sub: sub, err: err}}
}

// bpmSampleMsg is the constructor for [MsgBPMSample]
func bpmSampleMsg(owner *LiveBPM, bpm float64) Msg {
	return Msg{kind: MsgBPMSample, data: liveEvent{owner: owner, bpm: bpm}}
}

// streamClosedMsg is the constructor for [MsgStreamClosed]
func streamClosedMsg(owner *LiveBPM) Msg {
	return Msg{kind: MsgStreamClosed, data: liveEvent{owner: owner}}
}

// Kind reports the message type.
func (m Msg) Kind() MsgKind { return m.kind }
