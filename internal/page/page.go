// Package page writes a generated description into the PR edit form.
package page

import (
	"context"

	domainErrors "github.com/thomas-vilte/prbuddy/internal/errors"
	"github.com/thomas-vilte/prbuddy/internal/logger"
	"github.com/thomas-vilte/prbuddy/internal/protocol"
)

// DescriptionFieldID is the id of GitHub's PR body textarea.
const DescriptionFieldID = "pull_request_body"

const (
	EventInput  = "input"
	EventChange = "change"
)

// Event is a DOM event as seen by listeners.
type Event struct {
	Type     string
	Bubbles  bool
	TargetID string
}

type Element interface {
	SetValue(value string)
	DispatchEvent(ev Event)
}

type Document interface {
	GetElementByID(id string) (Element, bool)
}

// Insert puts text into the description field and fires bubbling input and
// change events so the page's own scripts pick up the new value. Without the
// field (the PR is not in edit mode) it returns ErrEditModeRequired.
func Insert(ctx context.Context, doc Document, text string) error {
	el, ok := doc.GetElementByID(DescriptionFieldID)
	if !ok {
		logger.Warn(ctx, "description field not found", "id", DescriptionFieldID)
		return domainErrors.ErrEditModeRequired
	}

	el.SetValue(text)
	el.DispatchEvent(Event{Type: EventInput, Bubbles: true, TargetID: DescriptionFieldID})
	el.DispatchEvent(Event{Type: EventChange, Bubbles: true, TargetID: DescriptionFieldID})
	logger.Debug(ctx, "description inserted", "chars", len(text))
	return nil
}

// NewRouter answers UPDATE_DESCRIPTION against doc.
func NewRouter(doc Document) *protocol.Router {
	r := protocol.NewRouter()
	_ = r.Register(protocol.ActionUpdateDescription, func(ctx context.Context, req protocol.Request) (protocol.Response, error) {
		if err := Insert(ctx, doc, req.Description); err != nil {
			return protocol.Response{}, err
		}
		return protocol.OK(), nil
	})
	return r
}
