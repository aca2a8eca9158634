package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// DefaultServerURL is where the quiz server listens out of the box.
const DefaultServerURL = "http://localhost:443"

// Environment variables that override stored credentials.
const (
	EnvServerURL  = "BUZZER_SERVER_URL"
	EnvAdminToken = "BUZZER_ADMIN_TOKEN"
)

// Credentials holds the quiz server connection settings.
type Credentials struct {
	ServerURL string `json:"server_url"`
	Token     string `json:"token,omitempty"`
}

// CredentialStore manages credential storage.
type CredentialStore struct {
	configPath string
}

// NewCredentialStore creates a new credential store.
func NewCredentialStore(configPath string) *CredentialStore {
	return &CredentialStore{
		configPath: configPath,
	}
}

// GetDefaultConfigPath returns the default config path.
func GetDefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".buzzctl", "credentials.json"), nil
}

// Save saves credentials to the config file.
func (cs *CredentialStore) Save(creds Credentials) error {
	dir := filepath.Dir(cs.configPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	// Write with restricted permissions
	if err := os.WriteFile(cs.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}

	return nil
}

// Load loads credentials from the config file.
func (cs *CredentialStore) Load() (*Credentials, error) {
	data, err := os.ReadFile(cs.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("credentials file not found")
		}
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credentials: %w", err)
	}

	return &creds, nil
}

// Delete deletes the credentials file.
func (cs *CredentialStore) Delete() error {
	return os.Remove(cs.configPath)
}

// Exists checks if credentials file exists.
func (cs *CredentialStore) Exists() bool {
	_, err := os.Stat(cs.configPath)
	return err == nil
}

// Resolve builds the effective credentials: stored values when present,
// overridden by a .env file and process environment, falling back to the
// default server URL. Missing stored credentials are not an error.
func Resolve() (*Credentials, error) {
	creds := &Credentials{ServerURL: DefaultServerURL}

	path, err := GetDefaultConfigPath()
	if err == nil {
		store := NewCredentialStore(path)
		if store.Exists() {
			stored, err := store.Load()
			if err != nil {
				return nil, err
			}
			if stored.ServerURL != "" {
				creds.ServerURL = stored.ServerURL
			}
			creds.Token = stored.Token
		}
	}

	// .env is optional; absence is not an error.
	_ = godotenv.Load()

	if url := os.Getenv(EnvServerURL); url != "" {
		creds.ServerURL = url
	}
	if token := os.Getenv(EnvAdminToken); token != "" {
		creds.Token = token
	}

	return creds, nil
}
