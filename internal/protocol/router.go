package protocol

import (
	"context"
	"errors"
	"fmt"
	"sync"

	domainErrors "github.com/thomas-vilte/prbuddy/internal/errors"
	"github.com/thomas-vilte/prbuddy/internal/logger"
	"github.com/thomas-vilte/prbuddy/internal/models"
)

// HandlerFunc answers one request. A returned error becomes a failure response.
type HandlerFunc func(ctx context.Context, req Request) (Response, error)

var ErrHandlerExists = errors.New("handler already registered")

// Router dispatches requests to the handler registered for their action.
type Router struct {
	mu       sync.RWMutex
	handlers map[Action]HandlerFunc
}

func NewRouter() *Router {
	return &Router{handlers: make(map[Action]HandlerFunc)}
}

func (r *Router) Register(action Action, h HandlerFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[action]; exists {
		return fmt.Errorf("%w: %s", ErrHandlerExists, action)
	}
	r.handlers[action] = h
	return nil
}

// Handles reports whether action has a handler.
func (r *Router) Handles(action Action) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[action]
	return ok
}

// Dispatch always answers: unknown actions and handler errors come back as
// failure responses.
func (r *Router) Dispatch(ctx context.Context, req Request) Response {
	r.mu.RLock()
	h, ok := r.handlers[req.Action]
	r.mu.RUnlock()
	if !ok {
		logger.Warn(ctx, "no handler for action", "action", req.Action)
		return Fail(domainErrors.ErrUnknownAction.WithContext("detail", string(req.Action)))
	}

	resp, err := h(ctx, req)
	if err != nil {
		logger.Debug(ctx, "action failed", "action", req.Action, "error", err)
		return Fail(err)
	}
	resp.Success = true
	resp.Error = ""
	return resp
}

// Generator is the background work behind the two background actions.
type Generator interface {
	GenerateDescription(ctx context.Context, rawURL string, gs models.GeneratorSettings) (models.GenerationResult, error)
	UpdatePRDescription(ctx context.Context, rawURL, description, title string) error
}

// NewBackgroundRouter answers GENERATE_DESCRIPTION and UPDATE_PR_DESCRIPTION.
func NewBackgroundRouter(gen Generator) *Router {
	r := NewRouter()
	_ = r.Register(ActionGenerateDescription, func(ctx context.Context, req Request) (Response, error) {
		var gs models.GeneratorSettings
		if req.Settings != nil {
			gs = *req.Settings
		}
		res, err := gen.GenerateDescription(ctx, req.URL, gs)
		if err != nil {
			return Response{}, err
		}
		return Generated(res), nil
	})
	_ = r.Register(ActionUpdatePRDescription, func(ctx context.Context, req Request) (Response, error) {
		if err := gen.UpdatePRDescription(ctx, req.URL, req.Description, req.Title); err != nil {
			return Response{}, err
		}
		return OK(), nil
	})
	return r
}
