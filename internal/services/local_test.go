package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/practicebook/internal/models"
	"github.com/desertthunder/practicebook/internal/shared"
	"github.com/desertthunder/practicebook/internal/telemetry"
)

func setupLocalService(t *testing.T) (*LocalService, *telemetry.Broker) {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	var buf bytes.Buffer
	broker := telemetry.NewBroker()
	return NewLocalService(db, broker, shared.NewLogger(&buf)), broker
}

func exampleDraft() *models.Regiment {
	draft := models.NewDraftRegiment(time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC))
	draft.AddPiece("Scales")
	draft.AddPiece("Etude No. 3")
	return draft
}

func TestSubscription(t *testing.T) {
	calls := 0
	sub := NewSubscription(make(chan float64), func() { calls++ })
	sub.Close()
	sub.Close()

	if calls != 1 {
		t.Errorf("expected release once, got %d", calls)
	}

	var nilSub *Subscription
	nilSub.Close()
}

func TestLocalService(t *testing.T) {
	ctx := context.Background()

	t.Run("Name", func(t *testing.T) {
		svc, _ := setupLocalService(t)
		if svc.Name() != "local" {
			t.Errorf("expected 'local', got %q", svc.Name())
		}
	})

	t.Run("CreateRegiment", func(t *testing.T) {
		svc, _ := setupLocalService(t)
		draft := exampleDraft()
		draft.ID = "draft-should-be-ignored"
		draft.Pieces[0].Logs = []models.Log{models.NewLog("x", 90, time.Now())}

		saved, err := svc.CreateRegiment(ctx, draft)
		if err != nil {
			t.Fatalf("CreateRegiment failed: %v", err)
		}
		if saved.ID == draft.ID || models.IsProvisional(saved.ID) {
			t.Errorf("expected a backend ID, got %q", saved.ID)
		}
		if saved.DraftID != draft.DraftID {
			t.Errorf("expected DraftID %q to be echoed, got %q", draft.DraftID, saved.DraftID)
		}
		names := saved.PieceNames()
		if len(names) != 2 || names[0] != "Scales" || names[1] != "Etude No. 3" {
			t.Errorf("unexpected pieces: %v", names)
		}
		if len(saved.Pieces[0].Logs) != 0 {
			t.Error("expected incoming logs to be ignored")
		}
		if draft.Pieces[0].ID != "" {
			t.Error("expected caller's draft to be left untouched")
		}
	})

	t.Run("CreateRegiment rejects nil and invalid", func(t *testing.T) {
		svc, _ := setupLocalService(t)

		if _, err := svc.CreateRegiment(ctx, nil); shared.Classify(err) != shared.FailureValidation {
			t.Errorf("expected validation failure, got %v", err)
		}

		blank := &models.Regiment{Date: time.Now(), Pieces: []models.Piece{{Name: " "}}}
		if _, err := svc.CreateRegiment(ctx, blank); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}

		if _, err := svc.CreateRegiment(ctx, &models.Regiment{}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for missing date, got %v", err)
		}
	})

	t.Run("CreateRegiment honors cancelled context", func(t *testing.T) {
		svc, _ := setupLocalService(t)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		if _, err := svc.CreateRegiment(cancelled, exampleDraft()); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("LoadRegiments", func(t *testing.T) {
		svc, _ := setupLocalService(t)

		empty, err := svc.LoadRegiments(ctx)
		if err != nil {
			t.Fatalf("LoadRegiments failed: %v", err)
		}
		if empty == nil || len(empty) != 0 {
			t.Errorf("expected empty non-nil slice, got %v", empty)
		}

		saved, _ := svc.CreateRegiment(ctx, exampleDraft())
		got, err := svc.LoadRegiments(ctx)
		if err != nil {
			t.Fatalf("LoadRegiments failed: %v", err)
		}
		if len(got) != 1 || got[0].ID != saved.ID {
			t.Errorf("unexpected regiments: %+v", got)
		}
	})

	t.Run("active piece", func(t *testing.T) {
		svc, _ := setupLocalService(t)
		saved, _ := svc.CreateRegiment(ctx, exampleDraft())

		if _, ok, err := svc.ActivePiece(ctx); err != nil || ok {
			t.Fatalf("expected no active piece, got %v, %v", ok, err)
		}

		pieceID := saved.Pieces[1].ID
		if err := svc.MarkActivePiece(ctx, pieceID); err != nil {
			t.Fatalf("MarkActivePiece failed: %v", err)
		}

		got, ok, err := svc.ActivePiece(ctx)
		if err != nil || !ok || got != pieceID {
			t.Errorf("expected %q active, got %q, %v, %v", pieceID, got, ok, err)
		}

		if err := svc.MarkActivePiece(ctx, "missing"); !errors.Is(err, shared.ErrPieceNotFound) {
			t.Errorf("expected ErrPieceNotFound, got %v", err)
		}
		if err := svc.MarkActivePiece(ctx, ""); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("DeleteRegiment clears its active piece", func(t *testing.T) {
		svc, _ := setupLocalService(t)
		saved, _ := svc.CreateRegiment(ctx, exampleDraft())
		if err := svc.MarkActivePiece(ctx, saved.Pieces[0].ID); err != nil {
			t.Fatalf("MarkActivePiece failed: %v", err)
		}

		if err := svc.DeleteRegiment(ctx, saved.ID); err != nil {
			t.Fatalf("DeleteRegiment failed: %v", err)
		}
		if _, ok, _ := svc.ActivePiece(ctx); ok {
			t.Error("expected active piece to be cleared")
		}

		regiments, _ := svc.LoadRegiments(ctx)
		if len(regiments) != 0 {
			t.Errorf("expected no regiments, got %d", len(regiments))
		}

		if err := svc.DeleteRegiment(ctx, saved.ID); !errors.Is(err, shared.ErrRegimentNotFound) {
			t.Errorf("expected ErrRegimentNotFound, got %v", err)
		}
	})

	t.Run("DeleteRegiment keeps other active pieces", func(t *testing.T) {
		svc, _ := setupLocalService(t)
		keep, _ := svc.CreateRegiment(ctx, exampleDraft())
		drop, _ := svc.CreateRegiment(ctx, exampleDraft())
		if err := svc.MarkActivePiece(ctx, keep.Pieces[0].ID); err != nil {
			t.Fatalf("MarkActivePiece failed: %v", err)
		}

		if err := svc.DeleteRegiment(ctx, drop.ID); err != nil {
			t.Fatalf("DeleteRegiment failed: %v", err)
		}
		if id, ok, _ := svc.ActivePiece(ctx); !ok || id != keep.Pieces[0].ID {
			t.Errorf("expected active piece to survive, got %q", id)
		}
	})

	t.Run("SubscribeBPM", func(t *testing.T) {
		svc, broker := setupLocalService(t)

		sub, err := svc.SubscribeBPM(ctx)
		if err != nil {
			t.Fatalf("SubscribeBPM failed: %v", err)
		}

		broker.Publish(128)
		broker.Publish(132)
		if got := <-sub.C; got != 132 {
			t.Errorf("expected newest sample 132, got %v", got)
		}

		sub.Close()
		if _, ok := <-sub.C; ok {
			t.Error("expected channel closed after Close")
		}
		if broker.Subscribers() != 0 {
			t.Error("expected subscriber released")
		}
	})

	t.Run("SubscribeBPM released by context", func(t *testing.T) {
		svc, broker := setupLocalService(t)
		subCtx, cancel := context.WithCancel(ctx)

		sub, err := svc.SubscribeBPM(subCtx)
		if err != nil {
			t.Fatalf("SubscribeBPM failed: %v", err)
		}
		cancel()

		select {
		case _, ok := <-sub.C:
			if ok {
				t.Error("expected channel closed")
			}
		case <-time.After(2 * time.Second):
			t.Fatal("subscription not released on cancel")
		}
		if broker.Subscribers() != 0 {
			t.Error("expected subscriber released")
		}
	})

	t.Run("SubscribeBPM without broker", func(t *testing.T) {
		db, err := shared.NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		svc := NewLocalService(db, nil, nil)
		if _, err := svc.SubscribeBPM(ctx); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}
