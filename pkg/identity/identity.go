package identity

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const (
	xdgAppName = "todosync"
	tagFile    = "device.json"
)

type state struct {
	DeviceTag string `json:"device_tag"`
}

// DefaultPath returns the location of the persisted device tag.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName, tagFile), nil
}

// LoadOrCreate returns the client instance tag sent as last_updated_by,
// generating and persisting one on first use. The tag is stable across runs so
// the remote side can tell which client wrote a record last.
func LoadOrCreate(path string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()

		var st state
		if err := json.NewDecoder(f).Decode(&st); err != nil {
			return "", fmt.Errorf("failed to decode device tag file %s: %w", path, err)
		}
		if st.DeviceTag != "" {
			return st.DeviceTag, nil
		}
	}

	tag := "go-app-" + uuid.NewString()[:8]

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(state{DeviceTag: tag}); err != nil {
		return "", err
	}
	return tag, nil
}
