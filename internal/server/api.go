package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/practicebook/internal/models"
	"github.com/desertthunder/practicebook/internal/services"
	"github.com/desertthunder/practicebook/internal/shared"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

// API holds the JSON command and query handlers.
type API struct {
	service services.Service
	logger  *log.Logger
}

// NewAPI creates the JSON handlers for service.
func NewAPI(service services.Service, logger *log.Logger) *API {
	return &API{service: service, logger: logger}
}

// Register adds every API route to r.
func (a *API) Register(r Router) {
	r.Handle(http.MethodGet, "/healthz", http.HandlerFunc(a.health))
	r.Handle(http.MethodGet, "/api/regiments", http.HandlerFunc(a.listRegiments))
	r.Handle(http.MethodPost, "/api/regiments", http.HandlerFunc(a.createRegiment))
	r.Handle(http.MethodDelete, "/api/regiments/{id}", http.HandlerFunc(a.deleteRegiment))
	r.Handle(http.MethodGet, "/api/active-piece", http.HandlerFunc(a.activePiece))
	r.Handle(http.MethodPut, "/api/active-piece", http.HandlerFunc(a.markActivePiece))
}

func (a *API) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) listRegiments(w http.ResponseWriter, r *http.Request) {
	regiments, err := a.service.LoadRegiments(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}

	data, err := models.EncodeRegiments(regiments)
	if err != nil {
		a.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (a *API) createRegiment(w http.ResponseWriter, r *http.Request) {
	draft, err := models.DecodeRegiment(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		a.writeError(w, err)
		return
	}

	saved, err := a.service.CreateRegiment(r.Context(), draft)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (a *API) deleteRegiment(w http.ResponseWriter, r *http.Request) {
	if err := a.service.DeleteRegiment(r.Context(), r.PathValue("id")); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) activePiece(w http.ResponseWriter, r *http.Request) {
	pieceID, ok, err := a.service.ActivePiece(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}

	body := models.ActivePieceBody{}
	if ok {
		body.PieceID = &pieceID
	}
	writeJSON(w, http.StatusOK, body)
}

func (a *API) markActivePiece(w http.ResponseWriter, r *http.Request) {
	var body models.ActivePieceBody

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		a.writeError(w, fmt.Errorf("%w: %v", shared.ErrInvalidPayload, err))
		return
	}
	if body.PieceID == nil || *body.PieceID == "" {
		a.writeError(w, shared.NewValidationError("piece_id", "is required"))
		return
	}

	if err := a.service.MarkActivePiece(r.Context(), *body.PieceID); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, shared.ErrRegimentNotFound), errors.Is(err, shared.ErrPieceNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrInvalidPayload), shared.Classify(err) == shared.FailureValidation:
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
