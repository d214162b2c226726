package credstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_LoadNotFound(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "credentials.json"))

	pair, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, pair)
}

func TestFileStore_RoundTrip(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "credentials.json"))
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, TokenPair{AccessToken: "A1", RefreshToken: "R1"}))

	pair, err := s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, pair)
	assert.Equal(t, "A1", pair.AccessToken)
	assert.Equal(t, "R1", pair.RefreshToken)
}

func TestFileStore_SaveOverwrites(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "credentials.json"))
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, TokenPair{AccessToken: "A1", RefreshToken: "R1"}))
	require.NoError(t, s.Save(ctx, TokenPair{AccessToken: "A2", RefreshToken: "R2"}))

	pair, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, TokenPair{AccessToken: "A2", RefreshToken: "R2"}, *pair)
}

func TestFileStore_SaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "dir", "credentials.json")
	s := NewFileStore(path)

	require.NoError(t, s.Save(context.Background(), TokenPair{AccessToken: "a", RefreshToken: "r"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(FilePerms), info.Mode().Perm())
}

func TestFileStore_FilePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	s := NewFileStore(path)

	require.NoError(t, s.Save(context.Background(), TokenPair{AccessToken: "a", RefreshToken: "r"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(FilePerms), info.Mode().Perm())
}

func TestFileStore_SaveRejectsPartialPair(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "credentials.json"))

	err := s.Save(context.Background(), TokenPair{AccessToken: "only-access"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPartialPair)
}

func TestFileStore_LoadPartialPair(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"accessToken":"A1"}`), 0o600))

	s := NewFileStore(path)
	pair, err := s.Load(context.Background())
	assert.Nil(t, pair)
	assert.ErrorIs(t, err, ErrPartialPair)
}

func TestFileStore_LoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json}`), 0o600))

	s := NewFileStore(path)
	pair, err := s.Load(context.Background())
	assert.Nil(t, pair)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding")
}

func TestFileStore_LoadEmptyObject(t *testing.T) {
	// A file with both fields empty reads as "not logged in", not corruption.
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))

	s := NewFileStore(path)
	pair, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, pair)
}

func TestFileStore_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	s := NewFileStore(path)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, TokenPair{AccessToken: "a", RefreshToken: "r"}))
	require.NoError(t, s.Clear(ctx))

	pair, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, pair)

	// Clearing again is a no-op, not an error.
	require.NoError(t, s.Clear(ctx))
}

func TestFileStore_ContextCanceled(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "credentials.json"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Save(ctx, TokenPair{AccessToken: "a", RefreshToken: "r"}), context.Canceled)
	assert.ErrorIs(t, s.Clear(ctx), context.Canceled)
}

func TestMemStore_RoundTrip(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	pair, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, pair)

	require.NoError(t, s.Save(ctx, TokenPair{AccessToken: "A1", RefreshToken: "R1"}))

	pair, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, TokenPair{AccessToken: "A1", RefreshToken: "R1"}, *pair)

	require.NoError(t, s.Clear(ctx))

	pair, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, pair)
}

func TestMemStore_LoadReturnsCopy(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, TokenPair{AccessToken: "A1", RefreshToken: "R1"}))

	pair, err := s.Load(ctx)
	require.NoError(t, err)

	// Mutating the returned pair must not affect the stored one.
	pair.AccessToken = "mutated"

	again, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A1", again.AccessToken)
}
