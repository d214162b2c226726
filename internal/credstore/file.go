package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FilePerms restricts credential files to owner-only read/write.
const FilePerms = 0o600

// DirPerms is used when creating the credentials directory.
const DirPerms = 0o700

// FileStore keeps the token pair in a single JSON file. Writes are atomic
// (temp file + rename in the same directory) so a crash mid-write cannot
// leave a partial pair on disk.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore backed by the given path. The file and
// its parent directory are created on the first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path. The session watcher uses it to
// observe external credential rotation.
func (s *FileStore) Path() string {
	return s.path
}

// fileFormat is the on-disk JSON shape. Field names match the key names the
// mobile app uses in its secure storage.
type fileFormat struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Load reads the stored pair. Returns (nil, nil) when the file does not
// exist. A file holding only one token is reported as ErrPartialPair.
func (s *FileStore) Load(ctx context.Context) (*TokenPair, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil //nolint:nilnil // sentinel for "not logged in"
	}

	if err != nil {
		return nil, fmt.Errorf("credstore: reading %s: %w", s.path, err)
	}

	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("credstore: decoding %s: %w", s.path, err)
	}

	if f.AccessToken == "" && f.RefreshToken == "" {
		return nil, nil //nolint:nilnil // cleared file, same as absent
	}

	if f.AccessToken == "" || f.RefreshToken == "" {
		return nil, fmt.Errorf("credstore: %s: %w", s.path, ErrPartialPair)
	}

	return &TokenPair{AccessToken: f.AccessToken, RefreshToken: f.RefreshToken}, nil
}

// Save writes both tokens atomically with 0600 permissions.
// Never logs token values.
func (s *FileStore) Save(ctx context.Context, pair TokenPair) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return fmt.Errorf("credstore: refusing to save incomplete pair: %w", ErrPartialPair)
	}

	data, err := json.MarshalIndent(fileFormat(pair), "", "  ")
	if err != nil {
		return fmt.Errorf("credstore: encoding: %w", err)
	}

	dir := filepath.Dir(s.path)
	if mkErr := os.MkdirAll(dir, DirPerms); mkErr != nil {
		return fmt.Errorf("credstore: creating directory %s: %w", dir, mkErr)
	}

	// Atomic write: temp file in the same directory, then rename.
	// Same directory guarantees same filesystem for rename(2).
	tmp, err := os.CreateTemp(dir, ".credentials-*.tmp")
	if err != nil {
		return fmt.Errorf("credstore: creating temp file: %w", err)
	}

	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := os.Chmod(tmpPath, FilePerms); err != nil {
		tmp.Close()
		return fmt.Errorf("credstore: setting permissions: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("credstore: writing: %w", err)
	}

	// Flush before rename so a power loss cannot leave an empty or partial
	// credentials file at the final path.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("credstore: syncing: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("credstore: closing: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("credstore: renaming: %w", err)
	}

	success = true

	return nil
}

// Clear removes the credentials file. Already-absent is not an error, so
// logout stays idempotent.
func (s *FileStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("credstore: removing %s: %w", s.path, err)
	}

	return nil
}
