// Package secrets seals plugin credentials before they touch the database.
package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// Vault encrypts and decrypts small secret payloads with a symmetric
// master key. Ciphertext layout is nonce || box.
type Vault struct {
	key [32]byte
}

// NewVault derives the sealing key from the configured master key string.
func NewVault(masterKey string) (*Vault, error) {
	if masterKey == "" {
		return nil, fmt.Errorf("secrets: master key is empty")
	}
	v := &Vault{key: sha256.Sum256([]byte(masterKey))}
	return v, nil
}

func (v *Vault) Seal(plaintext []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("secrets: generate nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], plaintext, &nonce, &v.key), nil
}

func (v *Vault) Open(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("secrets: ciphertext too short")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], ciphertext[:nonceSize])
	plaintext, ok := secretbox.Open(nil, ciphertext[nonceSize:], &nonce, &v.key)
	if !ok {
		return nil, fmt.Errorf("secrets: decryption failed")
	}
	return plaintext, nil
}

// SealJSON marshals a value and seals it in one step.
func (v *Vault) SealJSON(value interface{}) ([]byte, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("secrets: marshal: %w", err)
	}
	return v.Seal(raw)
}

// OpenJSON opens a ciphertext and unmarshals it into out.
func (v *Vault) OpenJSON(ciphertext []byte, out interface{}) error {
	raw, err := v.Open(ciphertext)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
