package protocol

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	domainErrors "github.com/thomas-vilte/prbuddy/internal/errors"
	"github.com/thomas-vilte/prbuddy/internal/models"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) GenerateDescription(ctx context.Context, rawURL string, gs models.GeneratorSettings) (models.GenerationResult, error) {
	args := m.Called(ctx, rawURL, gs)
	return args.Get(0).(models.GenerationResult), args.Error(1)
}

func (m *mockGenerator) UpdatePRDescription(ctx context.Context, rawURL, description, title string) error {
	args := m.Called(ctx, rawURL, description, title)
	return args.Error(0)
}

const prURL = "https://github.com/acme/widgets/pull/42"

func TestResponse_JSON(t *testing.T) {
	t.Run("success carries the payload without error", func(t *testing.T) {
		resp := Generated(models.GenerationResult{
			Description: "desc",
			PRDetails:   models.PRDetails{Owner: "acme", Repo: "widgets", Number: "42"},
		})

		raw, err := json.Marshal(resp)

		require.NoError(t, err)
		assert.JSONEq(t, `{"success":true,"description":"desc","prDetails":{"owner":"acme","repo":"widgets","number":"42"}}`, string(raw))
	})

	t.Run("failure carries only the error", func(t *testing.T) {
		raw, err := json.Marshal(Fail(domainErrors.ErrCredentialsMissing))

		require.NoError(t, err)
		assert.JSONEq(t, `{"success":false,"error":"Missing API Keys. Please configure them in Settings."}`, string(raw))
	})
}

func TestDecodeRequest(t *testing.T) {
	t.Run("should decode a generate request", func(t *testing.T) {
		body := `{"action":"GENERATE_DESCRIPTION","url":"` + prURL + `","settings":{"templateId":"bug","tone":"casual","context":"","includeTickets":true}}`

		req, err := DecodeRequest(strings.NewReader(body))

		require.NoError(t, err)
		assert.Equal(t, ActionGenerateDescription, req.Action)
		require.NotNil(t, req.Settings)
		assert.Equal(t, "bug", req.Settings.TemplateID)
		assert.True(t, req.Settings.IncludeTickets)
	})

	t.Run("should reject malformed json", func(t *testing.T) {
		_, err := DecodeRequest(strings.NewReader("{"))

		assert.Error(t, err)
	})
}

func TestRouter(t *testing.T) {
	ctx := context.Background()

	t.Run("should refuse duplicate handlers", func(t *testing.T) {
		r := NewRouter()
		h := func(context.Context, Request) (Response, error) { return OK(), nil }

		require.NoError(t, r.Register(ActionUpdateDescription, h))
		err := r.Register(ActionUpdateDescription, h)

		assert.True(t, errors.Is(err, ErrHandlerExists))
	})

	t.Run("should answer unknown actions with a failure", func(t *testing.T) {
		r := NewRouter()

		resp := r.Dispatch(ctx, Request{Action: "DELETE_REPO"})

		assert.False(t, resp.Success)
		assert.Equal(t, "Unknown message action: DELETE_REPO", resp.Error)
	})

	t.Run("should turn handler errors into failures", func(t *testing.T) {
		r := NewRouter()
		_ = r.Register(ActionUpdateDescription, func(context.Context, Request) (Response, error) {
			return Response{Description: "ignored"}, domainErrors.ErrEditModeRequired
		})

		resp := r.Dispatch(ctx, Request{Action: ActionUpdateDescription})

		assert.Equal(t, Response{Success: false, Error: domainErrors.ErrEditModeRequired.Message}, resp)
		assert.Error(t, resp.Err())
	})
}

func TestBackgroundRouter(t *testing.T) {
	ctx := context.Background()

	t.Run("should generate", func(t *testing.T) {
		gen := new(mockGenerator)
		gs := models.GeneratorSettings{TemplateID: "default", GenerateTitle: true}
		gen.On("GenerateDescription", mock.Anything, prURL, gs).Return(models.GenerationResult{
			Description: "desc",
			Title:       "",
			PRDetails:   models.PRDetails{Owner: "acme", Repo: "widgets", Number: "42"},
		}, nil)
		r := NewBackgroundRouter(gen)

		resp := r.Dispatch(ctx, Request{Action: ActionGenerateDescription, URL: prURL, Settings: &gs})

		assert.True(t, resp.Success)
		assert.Equal(t, "desc", resp.Description)
		assert.Empty(t, resp.Title)
		assert.Empty(t, resp.Error)
		assert.NoError(t, resp.Err())
	})

	t.Run("should report generation failures", func(t *testing.T) {
		gen := new(mockGenerator)
		gen.On("GenerateDescription", mock.Anything, "bad", models.GeneratorSettings{}).
			Return(models.GenerationResult{}, domainErrors.ErrInvalidPRURL)
		r := NewBackgroundRouter(gen)

		resp := r.Dispatch(ctx, Request{Action: ActionGenerateDescription, URL: "bad"})

		assert.False(t, resp.Success)
		assert.Equal(t, domainErrors.ErrInvalidPRURL.Message, resp.Error)
		assert.Empty(t, resp.Description)
	})

	t.Run("should update the PR", func(t *testing.T) {
		gen := new(mockGenerator)
		gen.On("UpdatePRDescription", mock.Anything, prURL, "body", "Title").Return(nil)
		r := NewBackgroundRouter(gen)

		resp := r.Dispatch(ctx, Request{Action: ActionUpdatePRDescription, URL: prURL, Description: "body", Title: "Title"})

		assert.Equal(t, OK(), resp)
		gen.AssertExpectations(t)
	})

	t.Run("should not handle page actions", func(t *testing.T) {
		r := NewBackgroundRouter(new(mockGenerator))

		assert.False(t, r.Handles(ActionUpdateDescription))
		assert.False(t, r.Dispatch(ctx, Request{Action: ActionUpdateDescription}).Success)
	})
}
