package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// Passphrase is mixed with the per-install salt to derive the key. It keeps
	// keys unreadable in a copied store file, not from someone with the binary.
	Passphrase = "pr-buddy-secure-storage-v1"
	Iterations = 100000
	SaltSize   = 16
	IVSize     = 12
	KeySize    = 32
)

// Cipher encrypts credentials with AES-256-GCM.
type Cipher struct {
	aead cipher.AEAD
}

// NewSalt returns SaltSize random bytes.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("error generating salt: %w", err)
	}
	return salt, nil
}

// NewCipher derives the key from Passphrase and salt with PBKDF2-SHA256.
func NewCipher(salt []byte) (*Cipher, error) {
	if len(salt) == 0 {
		return nil, fmt.Errorf("salt cannot be empty")
	}

	key := pbkdf2.Key([]byte(Passphrase), salt, Iterations, KeySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("error creating block cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("error creating GCM: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt returns base64(iv || ciphertext) with a fresh random IV.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	iv := make([]byte, IVSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("error generating iv: %w", err)
	}

	sealed := c.aead.Seal(iv, iv, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *Cipher) Decrypt(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("error decoding ciphertext: %w", err)
	}
	if len(raw) < IVSize+c.aead.Overhead() {
		return "", fmt.Errorf("ciphertext too short")
	}

	plain, err := c.aead.Open(nil, raw[:IVSize], raw[IVSize:], nil)
	if err != nil {
		return "", fmt.Errorf("error decrypting: %w", err)
	}
	return string(plain), nil
}
