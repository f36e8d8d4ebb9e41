package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

var (
	// ErrCredentialsNotFound is returned when no stored API key exists
	ErrCredentialsNotFound = errors.New("credentials not found")

	// ErrInvalidCredentials is returned for empty or malformed credentials
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Credential holds the stored Steam web API key
type Credential struct {
	APIKey       string    `json:"api_key"`
	LastModified time.Time `json:"last_modified"`
}

// KeyStore is the interface for storing and retrieving the API key
type KeyStore interface {
	// Store saves the credential
	Store(cred *Credential) error

	// Retrieve gets the stored credential
	Retrieve() (*Credential, error)

	// Delete removes the stored credential
	Delete() error

	// Exists checks if a credential is stored
	Exists() bool
}

// Manager handles credential storage with fallback mechanisms
type Manager struct {
	stores []KeyStore
}

// NewManager creates a new credential manager with appropriate storage backends
func NewManager() (*Manager, error) {
	var stores []KeyStore

	// Try keyring first (system keychain)
	keyringStore, err := NewKeyringStore()
	if err == nil {
		stores = append(stores, keyringStore)
	}

	// Always add encrypted file store as fallback
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	// Add environment store as last resort
	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// Store saves the credential using the first available store
func (m *Manager) Store(cred *Credential) error {
	if cred == nil || cred.APIKey == "" {
		return ErrInvalidCredentials
	}
	cred.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		if err := store.Store(cred); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}
	return fmt.Errorf("all credential stores failed: %w", lastErr)
}

// Retrieve gets the credential from the first store that has one
func (m *Manager) Retrieve() (*Credential, error) {
	for _, store := range m.stores {
		cred, err := store.Retrieve()
		if err == nil && cred != nil {
			return cred, nil
		}
	}
	return nil, ErrCredentialsNotFound
}

// Delete removes the credential from every store that has one
func (m *Manager) Delete() error {
	deleted := false
	for _, store := range m.stores {
		if store.Exists() {
			if err := store.Delete(); err == nil {
				deleted = true
			}
		}
	}
	if !deleted {
		return ErrCredentialsNotFound
	}
	return nil
}

// Exists checks whether any store holds a credential
func (m *Manager) Exists() bool {
	for _, store := range m.stores {
		if store.Exists() {
			return true
		}
	}
	return false
}

// getConfigDir returns the per-user configuration directory
func getConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".config", "steamcollect")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}
