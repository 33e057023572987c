package credential

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/99designs/keyring"

	"github.com/nhle/todocal/internal/model"
)

const serviceName = "todocal"

// SigningSecretKey is the keyring entry holding the JWT signing secret.
const SigningSecretKey = "jwt-signing-secret"

// Store reads and writes secrets in a keyring.
type Store struct {
	ring keyring.Keyring
}

// New wraps an already opened keyring.
func New(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

// Open returns a Store backed by the OS keyring.
func Open() (*Store, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/todocal/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("todocal-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return New(ring), nil
}

// Get retrieves a credential value by key.
func (s *Store) Get(key string) (string, error) {
	item, err := s.ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

// Set stores a credential value by key.
func (s *Store) Set(key, value string) error {
	err := s.ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: "todocal " + key,
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// Delete removes a credential by key.
func (s *Store) Delete(key string) error {
	if err := s.ring.Remove(key); err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}

// SigningSecret returns the stored JWT secret, generating and saving a new
// one on first use.
func (s *Store) SigningSecret() ([]byte, error) {
	secret, err := s.Get(SigningSecretKey)
	if err == nil && secret != "" {
		return []byte(secret), nil
	}
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return nil, err
	}

	secret, err = randomSecret()
	if err != nil {
		return nil, err
	}
	if err := s.Set(SigningSecretKey, secret); err != nil {
		return nil, err
	}
	return []byte(secret), nil
}

// Source says where a signing secret came from.
type Source string

const (
	SourceConfig    Source = "config"
	SourceKeyring   Source = "keyring"
	SourceEphemeral Source = "ephemeral"
)

// ResolveSigningSecret picks the JWT secret: the configured value first,
// then the keyring when enabled, and finally a random secret that only
// lives as long as the process. open is only called when the keyring is
// enabled.
func ResolveSigningSecret(cfg model.AuthConfig, open func() (*Store, error)) ([]byte, Source, error) {
	if cfg.JWTSecret != "" {
		return []byte(cfg.JWTSecret), SourceConfig, nil
	}

	if cfg.UseKeyring {
		store, err := open()
		if err != nil {
			return nil, "", err
		}
		secret, err := store.SigningSecret()
		if err != nil {
			return nil, "", err
		}
		return secret, SourceKeyring, nil
	}

	secret, err := randomSecret()
	if err != nil {
		return nil, "", err
	}
	return []byte(secret), SourceEphemeral, nil
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
