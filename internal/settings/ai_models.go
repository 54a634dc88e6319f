package settings

import (
	"context"
	"strings"

	"github.com/google/uuid"
	domainErrors "github.com/thomas-vilte/prbuddy/internal/errors"
	"github.com/thomas-vilte/prbuddy/internal/models"
	"github.com/thomas-vilte/prbuddy/internal/store"
)

func (m *Manager) ListModels(ctx context.Context) ([]models.AIModel, error) {
	var list []models.AIModel
	found, err := m.getJSON(ctx, store.KeyAIModels, &list)
	if err != nil {
		return nil, err
	}
	if !found || len(list) == 0 {
		return DefaultModels(), nil
	}
	return list, nil
}

// ActiveModel returns the model generations run against.
func (m *Manager) ActiveModel(ctx context.Context) (models.AIModel, error) {
	list, err := m.ListModels(ctx)
	if err != nil {
		return models.AIModel{}, err
	}
	return activeModel(list), nil
}

// AddModel stores a new model. It becomes active when no other model is.
func (m *Manager) AddModel(ctx context.Context, name, modelID string, provider models.Provider) (models.AIModel, error) {
	if err := validateModel(name, modelID, provider); err != nil {
		return models.AIModel{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	list, err := m.ListModels(ctx)
	if err != nil {
		return models.AIModel{}, err
	}
	mdl := models.AIModel{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(name),
		ModelID:  strings.TrimSpace(modelID),
		Provider: provider,
		IsActive: !hasActive(list),
	}
	list = append(list, mdl)
	if err := m.setJSON(ctx, store.KeyAIModels, list); err != nil {
		return models.AIModel{}, err
	}
	return mdl, nil
}

// UpdateModel changes name, model ID and provider. Activation goes through
// SetActiveModel.
func (m *Manager) UpdateModel(ctx context.Context, mdl models.AIModel) error {
	if err := validateModel(mdl.Name, mdl.ModelID, mdl.Provider); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	list, err := m.ListModels(ctx)
	if err != nil {
		return err
	}
	for i := range list {
		if list[i].ID == mdl.ID {
			list[i].Name = strings.TrimSpace(mdl.Name)
			list[i].ModelID = strings.TrimSpace(mdl.ModelID)
			list[i].Provider = mdl.Provider
			return m.setJSON(ctx, store.KeyAIModels, list)
		}
	}
	return domainErrors.ErrModelNotFound.WithContext("id", mdl.ID)
}

// DeleteModel removes a model. The last model cannot be deleted; deleting the
// active one activates the first remaining model.
func (m *Manager) DeleteModel(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	list, err := m.ListModels(ctx)
	if err != nil {
		return err
	}
	idx := -1
	for i, mdl := range list {
		if mdl.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domainErrors.ErrModelNotFound.WithContext("id", id)
	}
	if len(list) == 1 {
		return domainErrors.ErrLastModel.WithContext("id", id)
	}

	wasActive := list[idx].IsActive
	list = append(list[:idx], list[idx+1:]...)
	if wasActive || !hasActive(list) {
		for i := range list {
			list[i].IsActive = i == 0
		}
	}
	return m.setJSON(ctx, store.KeyAIModels, list)
}

// SetActiveModel leaves exactly one model active.
func (m *Manager) SetActiveModel(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	list, err := m.ListModels(ctx)
	if err != nil {
		return err
	}
	found := false
	for i := range list {
		list[i].IsActive = list[i].ID == id
		found = found || list[i].IsActive
	}
	if !found {
		return domainErrors.ErrModelNotFound.WithContext("id", id)
	}
	return m.setJSON(ctx, store.KeyAIModels, list)
}

func hasActive(list []models.AIModel) bool {
	for _, mdl := range list {
		if mdl.IsActive {
			return true
		}
	}
	return false
}

func validateModel(name, modelID string, provider models.Provider) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(modelID) == "" {
		return domainErrors.NewAppError(domainErrors.TypeInput, "Model name and model ID are required", nil)
	}
	switch provider {
	case "", models.ProviderOpenRouter, models.ProviderGemini:
		return nil
	default:
		return domainErrors.ErrUnknownProvider.WithContext("provider", string(provider))
	}
}
