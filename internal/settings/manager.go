package settings

import (
	"context"
	"encoding/json"
	"sync"

	domainErrors "github.com/thomas-vilte/prbuddy/internal/errors"
	"github.com/thomas-vilte/prbuddy/internal/models"
	"github.com/thomas-vilte/prbuddy/internal/store"
)

// Manager is the settings aggregate over a key/value store. Absent keys read
// as their defaults.
type Manager struct {
	store store.Store
	// serializes read-modify-write of list keys within this process
	mu sync.Mutex
}

func NewManager(s store.Store) *Manager {
	return &Manager{store: s}
}

// Snapshot is everything one generation call reads, taken once at its start.
type Snapshot struct {
	Credentials models.Credentials
	Templates   []models.PRTemplate
	Models      []models.AIModel
}

// Snapshot reads credentials, templates and models in one go.
func (m *Manager) Snapshot(ctx context.Context) (Snapshot, error) {
	creds, err := m.Credentials(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	templates, err := m.ListTemplates(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	aiModels, err := m.ListModels(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Credentials: creds, Templates: templates, Models: aiModels}, nil
}

// Template returns the template with id, or the first one when id is unknown.
func (s Snapshot) Template(id string) models.PRTemplate {
	for _, t := range s.Templates {
		if t.ID == id {
			return t
		}
	}
	if len(s.Templates) > 0 {
		return s.Templates[0]
	}
	return DefaultTemplates()[0]
}

// ActiveModel returns the active model, or the first one when none is active.
func (s Snapshot) ActiveModel() models.AIModel {
	return activeModel(s.Models)
}

func activeModel(list []models.AIModel) models.AIModel {
	for _, mdl := range list {
		if mdl.IsActive {
			return mdl
		}
	}
	if len(list) > 0 {
		return list[0]
	}
	return DefaultModels()[0]
}

func (m *Manager) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok, err := m.store.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, domainErrors.ErrStorage.
			WithError(err).
			WithContext("key", key)
	}
	return true, nil
}

func (m *Manager) setJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return domainErrors.ErrStorage.WithError(err).WithContext("key", key)
	}
	return m.store.Set(ctx, key, raw)
}
