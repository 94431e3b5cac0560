package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrInvalidAppState reports a cookie jar that cannot authenticate a session.
var ErrInvalidAppState = errors.New("transport: invalid appstate")

// minAppStateCookies is the floor below which a Facebook session export is
// certainly truncated.
const minAppStateCookies = 10

// requiredAppStateKeys are the session cookies login cannot proceed without.
var requiredAppStateKeys = []string{"c_user", "xs", "datr", "sb"}

// Cookie mirrors one entry of a serialized browser cookie jar.
type Cookie struct {
	Key          string    `json:"key"`
	Value        string    `json:"value"`
	Domain       string    `json:"domain"`
	Path         string    `json:"path"`
	HostOnly     bool      `json:"hostOnly"`
	Creation     time.Time `json:"creation"`
	LastAccessed time.Time `json:"lastAccessed"`
}

// AppState is a serialized cookie jar used to authenticate without
// re-entering credentials.
type AppState []Cookie

// UserID returns the account ID carried by the c_user cookie, if present.
func (a AppState) UserID() string {
	for _, c := range a {
		if c.Key == "c_user" {
			return c.Value
		}
	}
	return ""
}

// Validate checks the appstate schema before any login is attempted.
func (a AppState) Validate() error {
	if len(a) < minAppStateCookies {
		return fmt.Errorf("%w: only %d cookies, need at least %d",
			ErrInvalidAppState, len(a), minAppStateCookies)
	}

	keys := make(map[string]bool, len(a))
	for _, c := range a {
		if c.Key == "" || c.Value == "" {
			return fmt.Errorf("%w: cookie with empty key or value", ErrInvalidAppState)
		}
		keys[c.Key] = true
	}

	for _, required := range requiredAppStateKeys {
		if !keys[required] {
			return fmt.Errorf("%w: missing required cookie %q", ErrInvalidAppState, required)
		}
	}
	return nil
}

// LoadAppState reads and validates an appstate file.
func LoadAppState(path string) (AppState, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read appstate: %w", err)
	}

	var state AppState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAppState, err)
	}
	if err := state.Validate(); err != nil {
		return nil, err
	}
	return state, nil
}

// SaveAppState validates and writes an appstate file, creating parent
// directories as needed.
func SaveAppState(path string, state AppState) error {
	if err := state.Validate(); err != nil {
		return err
	}

	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal appstate: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create appstate dir: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write appstate: %w", err)
	}
	return nil
}
