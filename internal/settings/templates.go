package settings

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"
	domainErrors "github.com/thomas-vilte/prbuddy/internal/errors"
	"github.com/thomas-vilte/prbuddy/internal/models"
	"github.com/thomas-vilte/prbuddy/internal/store"
	"gopkg.in/yaml.v3"
)

// templateFile is the YAML document used for export and import.
type templateFile struct {
	Templates []models.PRTemplate `yaml:"templates"`
}

func (m *Manager) ListTemplates(ctx context.Context) ([]models.PRTemplate, error) {
	var list []models.PRTemplate
	found, err := m.getJSON(ctx, store.KeyTemplates, &list)
	if err != nil {
		return nil, err
	}
	if !found || len(list) == 0 {
		return DefaultTemplates(), nil
	}
	return list, nil
}

func (m *Manager) AddTemplate(ctx context.Context, title, structure string) (models.PRTemplate, error) {
	if err := validateTemplate(title, structure); err != nil {
		return models.PRTemplate{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	list, err := m.ListTemplates(ctx)
	if err != nil {
		return models.PRTemplate{}, err
	}
	t := models.PRTemplate{ID: uuid.NewString(), Title: strings.TrimSpace(title), Structure: structure}
	list = append(list, t)
	if err := m.setJSON(ctx, store.KeyTemplates, list); err != nil {
		return models.PRTemplate{}, err
	}
	return t, nil
}

func (m *Manager) UpdateTemplate(ctx context.Context, t models.PRTemplate) error {
	if err := validateTemplate(t.Title, t.Structure); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	list, err := m.ListTemplates(ctx)
	if err != nil {
		return err
	}
	for i := range list {
		if list[i].ID == t.ID {
			list[i].Title = strings.TrimSpace(t.Title)
			list[i].Structure = t.Structure
			return m.setJSON(ctx, store.KeyTemplates, list)
		}
	}
	return domainErrors.ErrTemplateNotFound.WithContext("id", t.ID)
}

// DeleteTemplate removes a template. The last template cannot be deleted.
func (m *Manager) DeleteTemplate(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	list, err := m.ListTemplates(ctx)
	if err != nil {
		return err
	}
	idx := -1
	for i, t := range list {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domainErrors.ErrTemplateNotFound.WithContext("id", id)
	}
	if len(list) == 1 {
		return domainErrors.ErrLastTemplate.WithContext("id", id)
	}

	list = append(list[:idx], list[idx+1:]...)
	return m.setJSON(ctx, store.KeyTemplates, list)
}

func (m *Manager) ExportTemplates(ctx context.Context, w io.Writer) error {
	list, err := m.ListTemplates(ctx)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(templateFile{Templates: list}); err != nil {
		return domainErrors.ErrStorage.WithError(err)
	}
	return enc.Close()
}

// ImportTemplates reads a YAML export. Templates with a known ID replace the
// stored one, the rest are appended (with a new ID when they have none).
// With replace set the stored list is swapped for the imported one.
func (m *Manager) ImportTemplates(ctx context.Context, r io.Reader, replace bool) (int, error) {
	var file templateFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && err != io.EOF {
		return 0, domainErrors.NewAppError(domainErrors.TypeInput, "Invalid templates file", err)
	}
	for _, t := range file.Templates {
		if err := validateTemplate(t.Title, t.Structure); err != nil {
			return 0, err
		}
	}
	if replace && len(file.Templates) == 0 {
		return 0, domainErrors.ErrLastTemplate
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var list []models.PRTemplate
	if !replace {
		var err error
		if list, err = m.ListTemplates(ctx); err != nil {
			return 0, err
		}
	}

	for _, t := range file.Templates {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		t.Title = strings.TrimSpace(t.Title)
		replaced := false
		for i := range list {
			if list[i].ID == t.ID {
				list[i] = t
				replaced = true
				break
			}
		}
		if !replaced {
			list = append(list, t)
		}
	}

	if err := m.setJSON(ctx, store.KeyTemplates, list); err != nil {
		return 0, err
	}
	return len(file.Templates), nil
}

func validateTemplate(title, structure string) error {
	if strings.TrimSpace(title) == "" {
		return domainErrors.NewAppError(domainErrors.TypeInput, "Template title is required", nil)
	}
	if strings.TrimSpace(structure) == "" {
		return domainErrors.NewAppError(domainErrors.TypeInput, "Template structure is required", nil)
	}
	return nil
}
