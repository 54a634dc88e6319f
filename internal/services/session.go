package services

import (
	"context"
	"sync"

	domainErrors "github.com/thomas-vilte/prbuddy/internal/errors"
	"github.com/thomas-vilte/prbuddy/internal/models"
)

// View is the screen a Session is on.
type View string

const (
	ViewGenerator View = "generator"
	ViewPending   View = "pending"
	ViewResult    View = "result"
)

// ErrStaleResult is returned to a generation whose session was reset or
// restarted while it was in flight. Its result is dropped.
var ErrStaleResult = domainErrors.NewAppError(domainErrors.TypeInternal, "Generation result discarded", nil)

type descriptionGenerator interface {
	GenerateDescription(ctx context.Context, rawURL string, gs models.GeneratorSettings) (models.GenerationResult, error)
}

// SessionState is a copy of the session fields a view renders.
type SessionState struct {
	View     View
	URL      string
	Settings models.GeneratorSettings
	Result   models.GenerationResult
	Err      error
}

// Session drives the generator → pending → result flow of a single user.
// Every Generate, Regenerate and Back bumps a sequence number, and a
// completion only lands when its number is still current.
type Session struct {
	mu    sync.Mutex
	gen   descriptionGenerator
	seq   uint64
	state SessionState
	// view to fall back to when the pending generation fails
	returnTo View
}

func NewSession(gen descriptionGenerator) *Session {
	return &Session{
		gen:      gen,
		state:    SessionState{View: ViewGenerator},
		returnTo: ViewGenerator,
	}
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Generate runs a generation for rawURL. On failure the session goes back to
// the view it came from holding the error, and any previous result is kept.
func (s *Session) Generate(ctx context.Context, rawURL string, gs models.GeneratorSettings) (models.GenerationResult, error) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	switch s.state.View {
	case ViewResult:
		s.returnTo = ViewResult
	case ViewGenerator:
		s.returnTo = ViewGenerator
	}
	s.state = SessionState{View: ViewPending, URL: rawURL, Settings: gs, Result: s.state.Result}
	s.mu.Unlock()

	res, err := s.gen.GenerateDescription(ctx, rawURL, gs)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return models.GenerationResult{}, ErrStaleResult
	}
	if err != nil {
		s.state.View = s.returnTo
		s.state.Err = err
		return models.GenerationResult{}, err
	}
	s.state.View = ViewResult
	s.state.Result = res
	return res, nil
}

// Regenerate repeats the last generation with the same URL and settings and
// replaces the current result.
func (s *Session) Regenerate(ctx context.Context) (models.GenerationResult, error) {
	s.mu.Lock()
	rawURL, gs := s.state.URL, s.state.Settings
	s.mu.Unlock()
	if rawURL == "" {
		return models.GenerationResult{}, domainErrors.ErrInvalidPRURL
	}
	return s.Generate(ctx, rawURL, gs)
}

// EditDescription replaces the generated description with the user's edit.
func (s *Session) EditDescription(description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.View == ViewResult {
		s.state.Result.Description = description
	}
}

// Back returns to the generator view and discards any in-flight generation.
func (s *Session) Back() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.returnTo = ViewGenerator
	s.state = SessionState{View: ViewGenerator, URL: s.state.URL, Settings: s.state.Settings}
}
