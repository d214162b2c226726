// Package device manages the stable per-install device identifier sent as
// X-Device-ID on every backend request. The mobile apps use the platform
// vendor ID; on desktop a random UUID persisted next to the credentials
// serves the same purpose.
package device

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const filePerms = 0o600

const dirPerms = 0o700

// ID returns the persisted device identifier, generating and saving a new
// UUID on first use.
func ID(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		id := strings.TrimSpace(string(data))
		if _, parseErr := uuid.Parse(id); parseErr == nil {
			return id, nil
		}
		// Unparseable file: regenerate below rather than sending garbage.
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("device: reading %s: %w", path, err)
	}

	id := uuid.NewString()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerms); err != nil {
		return "", fmt.Errorf("device: creating directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(id+"\n"), filePerms); err != nil {
		return "", fmt.Errorf("device: writing %s: %w", path, err)
	}

	return id, nil
}
