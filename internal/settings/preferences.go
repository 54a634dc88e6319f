package settings

import (
	"context"

	domainErrors "github.com/thomas-vilte/prbuddy/internal/errors"
	"github.com/thomas-vilte/prbuddy/internal/models"
	"github.com/thomas-vilte/prbuddy/internal/store"
	"github.com/thomas-vilte/prbuddy/internal/vcs"
)

// Preferences reads the remembered generator choices, key by key.
func (m *Manager) Preferences(ctx context.Context) (models.Preferences, error) {
	p := DefaultPreferences()

	fields := []struct {
		key string
		dst any
	}{
		{store.KeyPRTemplate, &p.TemplateID},
		{store.KeyTone, &p.Tone},
		{store.KeyCustomContext, &p.Context},
		{store.KeyIncludeTickets, &p.IncludeTickets},
		{store.KeyGenerateTitle, &p.GenerateTitle},
		{store.KeyTitleContext, &p.TitleContext},
	}
	for _, f := range fields {
		if _, err := m.getJSON(ctx, f.key, f.dst); err != nil {
			return models.Preferences{}, err
		}
	}
	return p, nil
}

func (m *Manager) SavePreferences(ctx context.Context, p models.Preferences) error {
	values := map[string]any{
		store.KeyPRTemplate:     p.TemplateID,
		store.KeyTone:           p.Tone,
		store.KeyCustomContext:  p.Context,
		store.KeyIncludeTickets: p.IncludeTickets,
		store.KeyGenerateTitle:  p.GenerateTitle,
		store.KeyTitleContext:   p.TitleContext,
	}
	for key, v := range values {
		if err := m.setJSON(ctx, key, v); err != nil {
			return err
		}
	}
	return nil
}

// DevMode reports whether the dev PR URL should be used when none is given.
func (m *Manager) DevMode(ctx context.Context) (bool, string, error) {
	var enabled bool
	var url string
	if _, err := m.getJSON(ctx, store.KeyDevMode, &enabled); err != nil {
		return false, "", err
	}
	if _, err := m.getJSON(ctx, store.KeyDevPRURL, &url); err != nil {
		return false, "", err
	}
	return enabled, url, nil
}

// SetDevMode stores the dev mode flag and URL. Enabling requires a valid PR URL.
func (m *Manager) SetDevMode(ctx context.Context, enabled bool, url string) error {
	if enabled {
		if _, err := vcs.ParsePRURL(url); err != nil {
			return err
		}
	}
	if err := m.setJSON(ctx, store.KeyDevMode, enabled); err != nil {
		return err
	}
	if url == "" {
		return m.store.Delete(ctx, store.KeyDevPRURL)
	}
	if err := m.setJSON(ctx, store.KeyDevPRURL, url); err != nil {
		return domainErrors.ErrStorage.WithError(err)
	}
	return nil
}
