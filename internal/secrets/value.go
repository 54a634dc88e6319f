package secrets

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind tags how a stored credential is encoded.
type Kind string

const (
	KindPlaintext Kind = "plaintext"
	KindEncrypted Kind = "encrypted"
)

// Value is a stored credential. Encrypted data is base64(iv || ciphertext).
type Value struct {
	Kind Kind   `json:"v"`
	Data string `json:"data"`
}

// Seal encrypts plaintext into a tagged value.
func Seal(c *Cipher, plaintext string) (Value, error) {
	data, err := c.Encrypt(plaintext)
	if err != nil {
		return Value{}, err
	}
	return Value{Kind: KindEncrypted, Data: data}, nil
}

// Decode reads a stored credential. A bare JSON string, as written before
// values were tagged, reads as plaintext.
func Decode(raw []byte) (Value, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Value{}, fmt.Errorf("empty credential value")
	}

	if raw[0] == '"' {
		var legacy string
		if err := json.Unmarshal(raw, &legacy); err != nil {
			return Value{}, fmt.Errorf("error decoding legacy credential: %w", err)
		}
		return Value{Kind: KindPlaintext, Data: legacy}, nil
	}

	var v Value
	if err := json.Unmarshal(raw, &v); err != nil {
		return Value{}, fmt.Errorf("error decoding credential: %w", err)
	}
	switch v.Kind {
	case KindPlaintext, KindEncrypted:
		return v, nil
	default:
		return Value{}, fmt.Errorf("unknown credential kind %q", v.Kind)
	}
}

// Reveal returns the plaintext. c may be nil for plaintext values.
func (v Value) Reveal(c *Cipher) (string, error) {
	switch v.Kind {
	case KindPlaintext:
		return v.Data, nil
	case KindEncrypted:
		if c == nil {
			return "", fmt.Errorf("no cipher for encrypted credential")
		}
		return c.Decrypt(v.Data)
	default:
		return "", fmt.Errorf("unknown credential kind %q", v.Kind)
	}
}

func (v Value) Encode() ([]byte, error) {
	return json.Marshal(v)
}
