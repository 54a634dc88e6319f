// Package protocol carries the messages exchanged between the popup, the
// background service and the page.
package protocol

import (
	"encoding/json"
	"fmt"
	"io"

	domainErrors "github.com/thomas-vilte/prbuddy/internal/errors"
	"github.com/thomas-vilte/prbuddy/internal/models"
)

// Action names a request kind.
type Action string

const (
	ActionGenerateDescription Action = "GENERATE_DESCRIPTION"
	ActionUpdatePRDescription Action = "UPDATE_PR_DESCRIPTION"
	ActionUpdateDescription   Action = "UPDATE_DESCRIPTION"
)

// Request is a message sent to the background service or to the page.
// Which fields are read depends on Action.
type Request struct {
	Action      Action                    `json:"action"`
	URL         string                    `json:"url,omitempty"`
	Settings    *models.GeneratorSettings `json:"settings,omitempty"`
	Description string                    `json:"description,omitempty"`
	Title       string                    `json:"title,omitempty"`
}

// Response is either a success carrying the action's payload or a failure
// carrying a single error message, never both.
type Response struct {
	Success     bool              `json:"success"`
	Error       string            `json:"error,omitempty"`
	Description string            `json:"description,omitempty"`
	Title       string            `json:"title,omitempty"`
	PRDetails   *models.PRDetails `json:"prDetails,omitempty"`
}

// OK is a success without payload.
func OK() Response {
	return Response{Success: true}
}

// Generated is the success response of GENERATE_DESCRIPTION.
func Generated(res models.GenerationResult) Response {
	pr := res.PRDetails
	return Response{
		Success:     true,
		Description: res.Description,
		Title:       res.Title,
		PRDetails:   &pr,
	}
}

// Fail turns err into a failure response with its user-facing message.
func Fail(err error) Response {
	msg := domainErrors.UserMessage(err)
	if msg == "" {
		msg = "Unknown error"
	}
	return Response{Success: false, Error: msg}
}

// Err returns the failure as an error, or nil for a success.
func (r Response) Err() error {
	if r.Success {
		return nil
	}
	return fmt.Errorf("%s", r.Error)
}

// DecodeRequest reads one JSON request from r.
func DecodeRequest(r io.Reader) (Request, error) {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return Request{}, domainErrors.NewAppError(domainErrors.TypeInput, "Malformed message", err)
	}
	return req, nil
}
