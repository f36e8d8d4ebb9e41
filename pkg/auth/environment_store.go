package auth

import "os"

// EnvironmentStore implements KeyStore using the STEAM_API_KEY environment
// variable. It is read-only: Store and Delete report failure so the
// manager falls through to a writable backend.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(cred *Credential) error {
	return ErrInvalidCredentials
}

// Retrieve reads the API key from the environment
func (e *EnvironmentStore) Retrieve() (*Credential, error) {
	apiKey := os.Getenv("STEAM_API_KEY")
	if apiKey == "" {
		return nil, ErrCredentialsNotFound
	}
	return &Credential{APIKey: apiKey}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete() error {
	return ErrCredentialsNotFound
}

// Exists checks if the environment variable is set
func (e *EnvironmentStore) Exists() bool {
	return os.Getenv("STEAM_API_KEY") != ""
}
