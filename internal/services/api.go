// API service for talking to a remote practicebook server
package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/practicebook/internal/models"
	"github.com/desertthunder/practicebook/internal/shared"
)

var _ Service = (*APIService)(nil)

// APIService implements [Service] over the practicebook HTTP API.
type APIService struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIService creates a new API service instance for a practicebook server.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = "http://127.0.0.1:3000"
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: client,
	}
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

func (a *APIService) Name() string { return a.baseURL }

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	return a.do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return a.do(ctx, http.MethodPost, path, data)
}

// Put performs a PUT request with the given JSON data and returns the raw response.
func (a *APIService) Put(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return a.do(ctx, http.MethodPut, path, data)
}

// Delete performs a DELETE request and returns the raw response.
func (a *APIService) Delete(ctx context.Context, path string) (*APIResponse, error) {
	return a.do(ctx, http.MethodDelete, path, nil)
}

func (a *APIService) do(ctx context.Context, method, path string, data []byte) (*APIResponse, error) {
	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       respBody,
	}, nil
}

// statusError maps a non-2xx response to a shared sentinel. notFound is used for 404s.
func statusError(status int, body []byte, notFound error) error {
	if status >= 200 && status < 300 {
		return nil
	}

	var payload struct {
		Error string `json:"error"`
	}
	msg := http.StatusText(status)
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		msg = payload.Error
	}

	switch status {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", shared.ErrInvalidInput, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", notFound, msg)
	case http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %s", shared.ErrServiceUnavailable, msg)
	default:
		return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, status, msg)
	}
}

func (a *APIService) CreateRegiment(ctx context.Context, regiment *models.Regiment) (*models.Regiment, error) {
	if regiment == nil {
		return nil, shared.NewValidationError("regiment", "is required")
	}

	data, err := json.Marshal(regiment)
	if err != nil {
		return nil, fmt.Errorf("failed to encode regiment: %w", err)
	}

	resp, err := a.Post(ctx, "/api/regiments", data)
	if err != nil {
		return nil, err
	}
	if err := statusError(resp.StatusCode, resp.Body, shared.ErrRegimentNotFound); err != nil {
		return nil, err
	}

	created, err := models.DecodeRegiment(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidPayload, err)
	}
	return created, nil
}

func (a *APIService) LoadRegiments(ctx context.Context) ([]models.Regiment, error) {
	resp, err := a.Get(ctx, "/api/regiments")
	if err != nil {
		return nil, err
	}
	if err := statusError(resp.StatusCode, resp.Body, shared.ErrRegimentNotFound); err != nil {
		return nil, err
	}
	return models.DecodeAnyRegiments(resp.Body)
}

func (a *APIService) DeleteRegiment(ctx context.Context, id string) error {
	resp, err := a.Delete(ctx, "/api/regiments/"+url.PathEscape(id))
	if err != nil {
		return err
	}
	return statusError(resp.StatusCode, resp.Body, shared.ErrRegimentNotFound)
}

func (a *APIService) ActivePiece(ctx context.Context) (string, bool, error) {
	resp, err := a.Get(ctx, "/api/active-piece")
	if err != nil {
		return "", false, err
	}
	if err := statusError(resp.StatusCode, resp.Body, shared.ErrPieceNotFound); err != nil {
		return "", false, err
	}

	var body models.ActivePieceBody
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return "", false, fmt.Errorf("%w: %v", shared.ErrInvalidPayload, err)
	}
	if body.PieceID == nil || *body.PieceID == "" {
		return "", false, nil
	}
	return *body.PieceID, true, nil
}

func (a *APIService) MarkActivePiece(ctx context.Context, pieceID string) error {
	if pieceID == "" {
		return shared.NewValidationError("piece_id", "is required")
	}

	data, err := json.Marshal(models.ActivePieceBody{PieceID: &pieceID})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := a.Put(ctx, "/api/active-piece", data)
	if err != nil {
		return err
	}
	return statusError(resp.StatusCode, resp.Body, shared.ErrPieceNotFound)
}

// SubscribeBPM opens the server's event stream. Samples are delivered newest-wins; C closes when the stream ends, ctx is cancelled or Close is called.
func (a *APIService) SubscribeBPM(ctx context.Context) (*Subscription, error) {
	streamCtx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, a.baseURL+"/api/bpm", nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		cancel()
		return nil, statusError(resp.StatusCode, body, shared.ErrServiceUnavailable)
	}

	out := make(chan float64, 1)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		_ = ReadEvents(resp.Body, func(event, data string) {
			if event != "bpm" {
				return
			}
			bpm, err := strconv.ParseFloat(strings.TrimSpace(data), 64)
			if err != nil || !models.ValidBPM(bpm) {
				return
			}
			select {
			case out <- bpm:
				return
			default:
			}
			select {
			case <-out:
			default:
			}
			select {
			case out <- bpm:
			default:
			}
		})
	}()

	return NewSubscription(out, cancel), nil
}

// ReadEvents reads a text/event-stream body and calls emit for each dispatched event.
// Events without an event field are named "message". Comment lines are ignored.
func ReadEvents(r io.Reader, emit func(event, data string)) error {
	scanner := bufio.NewScanner(r)

	var (
		event string
		data  []string
	)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			if len(data) > 0 {
				name := event
				if name == "" {
					name = "message"
				}
				emit(name, strings.Join(data, "\n"))
			}
			event, data = "", nil
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			event = value
		case "data":
			data = append(data, value)
		}
	}
	return scanner.Err()
}
