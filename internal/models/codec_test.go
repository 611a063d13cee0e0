package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/desertthunder/practicebook/internal/shared"
)

func sampleRegiments() []Regiment {
	tokyo := time.FixedZone("JST", 9*60*60)
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	return []Regiment{
		{
			ID:       "r-1",
			Sequence: 1,
			Date:     base,
			Pieces: []Piece{
				{
					ID: "p-1", RegimentID: "r-1", Name: "Scales", Position: 0,
					Logs: []Log{
						{ID: "l-1", PieceID: "p-1", BPM: 96.5, Timestamp: base.Add(90*time.Minute + 123456789)},
						{ID: "l-2", PieceID: "p-1", BPM: 128, Timestamp: time.Date(2024, 5, 2, 9, 0, 0, 0, tokyo)},
					},
				},
				{ID: "p-2", RegimentID: "r-1", Name: "Etude No. 3", Position: 1, Logs: []Log{}},
			},
			CreatedAt: base.Add(time.Hour),
		},
		{ID: "r-2", Sequence: 2, Date: time.Date(2024, 5, 8, 12, 0, 0, 0, tokyo), Pieces: []Piece{}},
	}
}

func assertSameRegiments(t *testing.T, want, got []Regiment) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("expected %d regiments, got %d", len(want), len(got))
	}
	for i := range want {
		if !got[i].Date.Equal(want[i].Date) {
			t.Errorf("regiment %d date = %v, want %v", i, got[i].Date, want[i].Date)
		}
		if !got[i].CreatedAt.Equal(want[i].CreatedAt) {
			t.Errorf("regiment %d created_at = %v, want %v", i, got[i].CreatedAt, want[i].CreatedAt)
		}
		if len(got[i].Pieces) != len(want[i].Pieces) {
			t.Fatalf("regiment %d: expected %d pieces, got %d", i, len(want[i].Pieces), len(got[i].Pieces))
		}
		for j := range want[i].Pieces {
			wp, gp := want[i].Pieces[j], got[i].Pieces[j]
			if gp.Name != wp.Name || gp.ID != wp.ID {
				t.Errorf("piece %d/%d = %+v, want %+v", i, j, gp, wp)
			}
			if len(gp.Logs) != len(wp.Logs) {
				t.Fatalf("piece %d/%d: expected %d logs, got %d", i, j, len(wp.Logs), len(gp.Logs))
			}
			for k := range wp.Logs {
				if !gp.Logs[k].Timestamp.Equal(wp.Logs[k].Timestamp) {
					t.Errorf("log %d/%d/%d timestamp = %v, want %v", i, j, k, gp.Logs[k].Timestamp, wp.Logs[k].Timestamp)
				}
				if gp.Logs[k].BPM != wp.Logs[k].BPM {
					t.Errorf("log %d/%d/%d bpm = %v, want %v", i, j, k, gp.Logs[k].BPM, wp.Logs[k].BPM)
				}
			}
		}
	}
}

func TestCodec(t *testing.T) {
	t.Run("Round Trip", func(t *testing.T) {
		want := sampleRegiments()

		data, err := EncodeRegiments(want)
		if err != nil {
			t.Fatalf("failed to encode: %v", err)
		}

		got, err := DecodeRegiments(data)
		if err != nil {
			t.Fatalf("failed to decode: %v", err)
		}

		assertSameRegiments(t, want, got)
	})

	t.Run("Legacy String Payload", func(t *testing.T) {
		want := sampleRegiments()

		inner, err := EncodeRegiments(want)
		if err != nil {
			t.Fatalf("failed to encode: %v", err)
		}
		wrapped, err := json.Marshal(string(inner))
		if err != nil {
			t.Fatalf("failed to wrap: %v", err)
		}

		got, err := DecodeLegacyRegiments(wrapped)
		if err != nil {
			t.Fatalf("failed to decode legacy payload: %v", err)
		}
		assertSameRegiments(t, want, got)

		auto, err := DecodeAnyRegiments(append([]byte("  "), wrapped...))
		if err != nil {
			t.Fatalf("failed to auto-detect legacy payload: %v", err)
		}
		assertSameRegiments(t, want, auto)
	})

	t.Run("Nil Encodes As Empty Array", func(t *testing.T) {
		data, err := EncodeRegiments(nil)
		if err != nil {
			t.Fatalf("failed to encode: %v", err)
		}
		if string(data) != "[]" {
			t.Errorf("expected [], got %s", data)
		}

		got, err := DecodeRegiments([]byte("null"))
		if err != nil {
			t.Fatalf("failed to decode null: %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", got)
		}
	})

	t.Run("Rejects", func(t *testing.T) {
		tc := []struct {
			name    string
			payload string
			target  error
		}{
			{
				name:    "unknown field named date inside a log",
				payload: `[{"date":"2024-05-01T00:00:00Z","pieces":[{"name":"Scales","position":0,"logs":[{"piece_id":"p","bpm":1,"timestamp":"2024-05-01T00:00:00Z","date":"x"}]}]}]`,
				target:  shared.ErrInvalidPayload,
			},
			{
				name:    "textual date not RFC 3339",
				payload: `[{"date":"May 1st","pieces":[]}]`,
				target:  shared.ErrInvalidPayload,
			},
			{
				name:    "missing date",
				payload: `[{"pieces":[]}]`,
				target:  shared.ErrInvalidInput,
			},
			{
				name:    "blank piece name",
				payload: `[{"date":"2024-05-01T00:00:00Z","pieces":[{"name":"  ","position":0,"logs":[]}]}]`,
				target:  shared.ErrInvalidInput,
			},
			{
				name:    "negative bpm",
				payload: `[{"date":"2024-05-01T00:00:00Z","pieces":[{"name":"Scales","position":0,"logs":[{"piece_id":"p","bpm":-4,"timestamp":"2024-05-01T00:00:00Z"}]}]}]`,
				target:  shared.ErrInvalidInput,
			},
			{
				name:    "trailing data",
				payload: `[] []`,
				target:  shared.ErrInvalidPayload,
			},
			{
				name:    "object instead of array",
				payload: `{"date":"2024-05-01T00:00:00Z"}`,
				target:  shared.ErrInvalidPayload,
			},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				_, err := DecodeRegiments([]byte(tt.payload))
				if !errors.Is(err, tt.target) {
					t.Errorf("expected %v, got %v", tt.target, err)
				}
			})
		}
	})

	t.Run("Legacy Rejects Non-String", func(t *testing.T) {
		if _, err := DecodeLegacyRegiments([]byte(`[]`)); !errors.Is(err, shared.ErrInvalidPayload) {
			t.Errorf("expected ErrInvalidPayload, got %v", err)
		}
	})

	t.Run("DecodeRegiment", func(t *testing.T) {
		body := `{"date":"2024-05-01T00:00:00Z","draft_id":"draft-1","pieces":[{"name":"Scales","position":0,"logs":null},{"name":"Etude No. 3","position":1,"logs":null}]}`

		r, err := DecodeRegiment(strings.NewReader(body))
		if err != nil {
			t.Fatalf("failed to decode regiment: %v", err)
		}
		if r.DraftID != "draft-1" {
			t.Errorf("expected draft id to survive decode, got %q", r.DraftID)
		}
		names := r.PieceNames()
		if len(names) != 2 || names[0] != "Scales" || names[1] != "Etude No. 3" {
			t.Errorf("unexpected pieces %v", names)
		}

		if _, err := DecodeRegiment(strings.NewReader(`{"pieces":[]}`)); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected validation error for missing date, got %v", err)
		}

		readErr := errors.New("body too large")
		_, err = DecodeRegiment(iotest.ErrReader(readErr))
		if !errors.Is(err, shared.ErrInvalidPayload) || !errors.Is(err, readErr) {
			t.Errorf("expected invalid payload wrapping the read error, got %v", err)
		}
	})
}
