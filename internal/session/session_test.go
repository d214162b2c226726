package session

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a1rzayev/footbook-go/internal/credstore"
)

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestBootstrap_EmptyStore(t *testing.T) {
	m := NewManager(credstore.NewMemStore(), testLogger(t))

	state, err := m.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.False(t, state.Authenticated)
	assert.False(t, state.Loading)
}

func TestBootstrap_WithPair(t *testing.T) {
	store := credstore.NewMemStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, credstore.TokenPair{AccessToken: "A1", RefreshToken: "R1"}))

	m := NewManager(store, testLogger(t))

	state, err := m.Bootstrap(ctx)
	require.NoError(t, err)
	assert.True(t, state.Authenticated)
}

func TestBootstrap_PartialPairReadsAsLoggedOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"accessToken":"A1"}`), 0o600))

	m := NewManager(credstore.NewFileStore(path), testLogger(t))

	state, err := m.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.False(t, state.Authenticated)
}

// waitForState receives from ch until a state with the wanted Authenticated
// value arrives, or fails the test after a timeout.
func waitForState(t *testing.T, ch <-chan State, authenticated bool) {
	t.Helper()

	deadline := time.After(5 * time.Second)

	for {
		select {
		case state, ok := <-ch:
			require.True(t, ok, "watch channel closed early")

			if state.Authenticated == authenticated {
				return
			}

		case <-deadline:
			t.Fatalf("timed out waiting for authenticated=%v", authenticated)
		}
	}
}

func TestWatch_ObservesLoginAndLogout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.json")
	store := credstore.NewFileStore(path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager(store, testLogger(t))

	ch, err := m.Watch(ctx, path)
	require.NoError(t, err)

	// Another process logs in.
	require.NoError(t, store.Save(ctx, credstore.TokenPair{AccessToken: "A1", RefreshToken: "R1"}))
	waitForState(t, ch, true)

	// Another process logs out.
	require.NoError(t, store.Clear(ctx))
	waitForState(t, ch, false)
}

func TestWatch_ChannelClosesOnCancel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.json")

	ctx, cancel := context.WithCancel(context.Background())

	m := NewManager(credstore.NewFileStore(path), testLogger(t))

	ch, err := m.Watch(ctx, path)
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel should close after cancel")
	case <-time.After(5 * time.Second):
		t.Fatal("channel did not close after cancel")
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	m := NewManager(credstore.NewMemStore(), testLogger(t))

	_, err := m.Watch(context.Background(), "/nonexistent/dir/credentials.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watching")
}
