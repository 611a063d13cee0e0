// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/practicebook/internal/models"
	"github.com/desertthunder/practicebook/internal/services"
	"github.com/desertthunder/practicebook/internal/shared"
)

// MockService is a test double for [services.Service].
//
// Each method delegates to the matching func field when set and records the call.
type MockService struct {
	mu sync.Mutex

	CreateFunc     func(ctx context.Context, regiment *models.Regiment) (*models.Regiment, error)
	LoadFunc       func(ctx context.Context) ([]models.Regiment, error)
	DeleteFunc     func(ctx context.Context, id string) error
	ActiveFunc     func(ctx context.Context) (string, bool, error)
	MarkActiveFunc func(ctx context.Context, pieceID string) error
	SubscribeFunc  func(ctx context.Context) (*services.Subscription, error)

	Created   []*models.Regiment
	Deleted   []string
	Marked    []string
	LoadCalls int
}

func (m *MockService) CreateRegiment(ctx context.Context, regiment *models.Regiment) (*models.Regiment, error) {
	m.mu.Lock()
	m.Created = append(m.Created, regiment)
	m.mu.Unlock()

	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, regiment)
	}
	if regiment == nil {
		return nil, shared.NewValidationError("regiment", "is required")
	}

	saved := *regiment
	saved.ID = shared.GenerateID()
	saved.Sequence = len(m.Created)
	saved.Pieces = make([]models.Piece, len(regiment.Pieces))
	for i, p := range regiment.Pieces {
		p.ID = shared.GenerateID()
		p.RegimentID = saved.ID
		p.Position = i
		p.Logs = []models.Log{}
		saved.Pieces[i] = p
	}
	return &saved, nil
}

func (m *MockService) LoadRegiments(ctx context.Context) ([]models.Regiment, error) {
	m.mu.Lock()
	m.LoadCalls++
	m.mu.Unlock()

	if m.LoadFunc != nil {
		return m.LoadFunc(ctx)
	}
	return []models.Regiment{}, nil
}

func (m *MockService) DeleteRegiment(ctx context.Context, id string) error {
	m.mu.Lock()
	m.Deleted = append(m.Deleted, id)
	m.mu.Unlock()

	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockService) ActivePiece(ctx context.Context) (string, bool, error) {
	if m.ActiveFunc != nil {
		return m.ActiveFunc(ctx)
	}
	return "", false, nil
}

func (m *MockService) MarkActivePiece(ctx context.Context, pieceID string) error {
	m.mu.Lock()
	m.Marked = append(m.Marked, pieceID)
	m.mu.Unlock()

	if m.MarkActiveFunc != nil {
		return m.MarkActiveFunc(ctx, pieceID)
	}
	return nil
}

func (m *MockService) SubscribeBPM(ctx context.Context) (*services.Subscription, error) {
	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(ctx)
	}
	return nil, shared.ErrServiceUnavailable
}

func (m *MockService) Name() string { return "mock" }

// MockStream is a controllable BPM stream for [MockService.SubscribeFunc].
type MockStream struct {
	C      chan float64
	mu     sync.Mutex
	closed int
}

// NewMockStream creates a stream with a buffer of size.
func NewMockStream(size int) *MockStream {
	return &MockStream{C: make(chan float64, size)}
}

// Subscription returns a subscription over the stream that counts Close calls.
func (s *MockStream) Subscription() *services.Subscription {
	return services.NewSubscription(s.C, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.closed++
	})
}

// Closed returns how many times the subscription was released.
func (s *MockStream) Closed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
