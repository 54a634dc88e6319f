package services

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/thomas-vilte/prbuddy/internal/ai"
	"github.com/thomas-vilte/prbuddy/internal/models"
	"github.com/thomas-vilte/prbuddy/internal/settings"
)

type (
	MockSettings struct {
		mock.Mock
	}

	MockPRClient struct {
		mock.Mock
	}

	MockCompleter struct {
		mock.Mock
	}

	MockGenerator struct {
		mock.Mock
	}
)

func (m *MockSettings) Snapshot(ctx context.Context) (settings.Snapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(settings.Snapshot), args.Error(1)
}

func (m *MockPRClient) FetchPR(ctx context.Context, pr models.PRDetails) (models.PRData, error) {
	args := m.Called(ctx, pr)
	return args.Get(0).(models.PRData), args.Error(1)
}

func (m *MockPRClient) UpdatePR(ctx context.Context, pr models.PRDetails, body, title string) error {
	args := m.Called(ctx, pr, body, title)
	return args.Error(0)
}

func (m *MockPRClient) FindOpenPR(ctx context.Context, owner, repo, branch string) (models.PRDetails, error) {
	args := m.Called(ctx, owner, repo, branch)
	return args.Get(0).(models.PRDetails), args.Error(1)
}

func (m *MockCompleter) Complete(ctx context.Context, modelID string, prompt ai.Prompt) (string, error) {
	args := m.Called(ctx, modelID, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockCompleter) GetProviderName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockGenerator) GenerateDescription(ctx context.Context, rawURL string, gs models.GeneratorSettings) (models.GenerationResult, error) {
	args := m.Called(ctx, rawURL, gs)
	return args.Get(0).(models.GenerationResult), args.Error(1)
}

func (m *MockGenerator) UpdatePRDescription(ctx context.Context, rawURL, description, title string) error {
	args := m.Called(ctx, rawURL, description, title)
	return args.Error(0)
}
