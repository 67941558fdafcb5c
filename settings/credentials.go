// Package settings provides the locsync credential store.
//
// Credentials are stored in the XDG data directory:
//
//	$XDG_DATA_HOME/locsync/auth.json  (default: ~/.local/share/locsync/)
//
// The file is a JSON object keyed by service id:
//
//	{
//	  "azure":  {"config": "key,region"},
//	  "openai": {"key": "sk-...", "baseUrl": "https://api.groq.com/openai/v1", "model": "llama-3.3-70b"}
//	}
//
// File permissions are 0600 (owner read/write only).
//
// Lookup order for a service configuration:
//  1. --config / --api-key flags (highest priority)
//  2. LOCSYNC_SERVICE_CONFIG / LOCSYNC_API_KEY environment variables
//  3. This credential store
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	dataDirName = "locsync"
	fileName    = "auth.json"
)

// Environment variables consulted by Resolve.
const (
	EnvServiceConfig = "LOCSYNC_SERVICE_CONFIG"
	EnvAPIKey        = "LOCSYNC_API_KEY"
)

// ---------------------------------------------------------------------------
// Entry type
// ---------------------------------------------------------------------------

// Info is the entry stored per service in auth.json.
type Info struct {
	// Config is the service-specific configuration string (azure: "key,region").
	Config string `json:"config,omitempty"`
	// Key is an API key (openai, gemini).
	Key string `json:"key,omitempty"`
	// BaseURL is a custom endpoint.
	BaseURL string `json:"baseUrl,omitempty"`
	// Model is the default model of an LLM service.
	Model string `json:"model,omitempty"`
}

// Store holds all service credentials, keyed by service id.
type Store map[string]*Info

// ---------------------------------------------------------------------------
// File path
// ---------------------------------------------------------------------------

// dataDir returns the XDG data directory for locsync.
// Respects $XDG_DATA_HOME (falls back to ~/.local/share).
func dataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

func filePath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// FilePath returns the auth.json file path for display purposes.
func FilePath() string {
	p, err := filePath()
	if err != nil {
		return ""
	}
	return p
}

// ---------------------------------------------------------------------------
// Load / Save
// ---------------------------------------------------------------------------

// Load reads the credential store from disk.
// Returns an empty store if the file doesn't exist or is invalid.
func Load() Store {
	path, err := filePath()
	if err != nil {
		return make(Store)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return make(Store)
	}

	var store Store
	if err := json.Unmarshal(data, &store); err != nil || store == nil {
		return make(Store)
	}
	return store
}

// Save writes the credential store to disk with 0600 permissions.
func Save(store Store) error {
	path, err := filePath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing auth file: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Get / Set / Remove
// ---------------------------------------------------------------------------

// Get returns the entry for a service, or nil if not found.
func Get(serviceID string) *Info {
	return Load()[serviceID]
}

// Set stores an entry for a service (upsert).
func Set(serviceID string, info *Info) error {
	store := Load()
	store[serviceID] = info
	return Save(store)
}

// Remove deletes the credentials of a service.
func Remove(serviceID string) error {
	store := Load()
	if _, ok := store[serviceID]; !ok {
		return nil
	}
	delete(store, serviceID)
	return Save(store)
}

// RemoveAll removes all stored credentials.
func RemoveAll() error {
	path, err := filePath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing auth file: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Resolution
// ---------------------------------------------------------------------------

// Resolve merges flag values, environment variables and the stored entry
// for a service, in that order of priority. Empty fields fall through.
func Resolve(serviceID string, flags Info) Info {
	out := flags
	if out.Config == "" {
		out.Config = os.Getenv(EnvServiceConfig)
	}
	if out.Key == "" {
		out.Key = os.Getenv(EnvAPIKey)
	}
	if stored := Get(serviceID); stored != nil {
		if out.Config == "" {
			out.Config = stored.Config
		}
		if out.Key == "" {
			out.Key = stored.Key
		}
		if out.BaseURL == "" {
			out.BaseURL = stored.BaseURL
		}
		if out.Model == "" {
			out.Model = stored.Model
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Display helpers
// ---------------------------------------------------------------------------

// MaskKey returns a masked version of a key/token for display.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
