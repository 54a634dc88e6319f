package settings

import (
	"context"
	"encoding/base64"
	"fmt"

	domainErrors "github.com/thomas-vilte/prbuddy/internal/errors"
	"github.com/thomas-vilte/prbuddy/internal/logger"
	"github.com/thomas-vilte/prbuddy/internal/models"
	"github.com/thomas-vilte/prbuddy/internal/secrets"
	"github.com/thomas-vilte/prbuddy/internal/store"
)

// Credential names accepted by SetCredential.
const (
	CredentialGitHub     = "github"
	CredentialOpenRouter = "openrouter"
	CredentialGemini     = "gemini"
)

var credentialKeys = map[string]string{
	CredentialGitHub:     store.KeyGitHubToken,
	CredentialOpenRouter: store.KeyOpenRouterKey,
	CredentialGemini:     store.KeyGeminiKey,
}

// CredentialNames lists the names SetCredential accepts.
func CredentialNames() []string {
	return []string{CredentialGitHub, CredentialOpenRouter, CredentialGemini}
}

// SetCredential encrypts and stores a credential. An empty value removes it.
func (m *Manager) SetCredential(ctx context.Context, name, value string) error {
	key, ok := credentialKeys[name]
	if !ok {
		return domainErrors.ErrConfigInvalid.WithContext("detail", fmt.Sprintf("unknown credential %q", name))
	}
	if value == "" {
		return m.store.Delete(ctx, key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c, err := m.cipher(ctx, true)
	if err != nil {
		return err
	}
	sealed, err := secrets.Seal(c, value)
	if err != nil {
		return domainErrors.ErrStorage.WithError(err)
	}
	raw, err := sealed.Encode()
	if err != nil {
		return domainErrors.ErrStorage.WithError(err)
	}
	return m.store.Set(ctx, key, raw)
}

// Credentials decrypts every stored credential. Missing ones are empty.
func (m *Manager) Credentials(ctx context.Context) (models.Credentials, error) {
	c, err := m.cipher(ctx, false)
	if err != nil {
		return models.Credentials{}, err
	}

	read := func(key string) (string, error) {
		raw, ok, err := m.store.Get(ctx, key)
		if err != nil || !ok {
			return "", err
		}
		v, err := secrets.Decode(raw)
		if err != nil {
			return "", domainErrors.ErrDecryptCredential.WithError(err).WithContext("key", key)
		}
		plain, err := v.Reveal(c)
		if err != nil {
			return "", domainErrors.ErrDecryptCredential.WithError(err).WithContext("key", key)
		}
		return plain, nil
	}

	var creds models.Credentials
	if creds.GitHubToken, err = read(store.KeyGitHubToken); err != nil {
		return models.Credentials{}, err
	}
	if creds.OpenRouterKey, err = read(store.KeyOpenRouterKey); err != nil {
		return models.Credentials{}, err
	}
	if creds.GeminiKey, err = read(store.KeyGeminiKey); err != nil {
		return models.Credentials{}, err
	}
	return creds, nil
}

// cipher loads the install salt, creating it when create is set. Without a
// salt and without create it returns nil: only plaintext values can exist.
func (m *Manager) cipher(ctx context.Context, create bool) (*secrets.Cipher, error) {
	var encoded string
	found, err := m.getJSON(ctx, store.KeyEncryptionSalt, &encoded)
	if err != nil {
		return nil, err
	}

	var salt []byte
	if found {
		salt, err = base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, domainErrors.ErrDecryptCredential.WithError(err).WithContext("key", store.KeyEncryptionSalt)
		}
	} else {
		if !create {
			return nil, nil
		}
		salt, err = secrets.NewSalt()
		if err != nil {
			return nil, domainErrors.ErrStorage.WithError(err)
		}
		if err := m.setJSON(ctx, store.KeyEncryptionSalt, base64.StdEncoding.EncodeToString(salt)); err != nil {
			return nil, err
		}
		logger.Debug(ctx, "generated credential encryption salt")
	}

	c, err := secrets.NewCipher(salt)
	if err != nil {
		return nil, domainErrors.ErrDecryptCredential.WithError(err)
	}
	return c, nil
}
