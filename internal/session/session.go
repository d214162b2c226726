// Package session derives authentication state from the credential store —
// the Go analog of the mobile app's auth context. Bootstrap answers "is a
// pair present" once; Watch keeps answering as other processes rotate or
// clear the credentials file (last writer wins, so the state can change
// under a running process at any time).
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/a1rzayev/footbook-go/internal/credstore"
)

// State is the session snapshot the UI layer consumes.
type State struct {
	Loading       bool
	Authenticated bool
}

// Manager reads session state out of a credential store.
type Manager struct {
	store  credstore.Store
	logger *slog.Logger
}

// NewManager creates a session manager over the given store.
func NewManager(store credstore.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{store: store, logger: logger}
}

// Bootstrap loads the stored pair and derives the authenticated flag.
// A corrupt (partial) pair reads as unauthenticated rather than an error:
// the user's remedy is the same either way — log in again.
func (m *Manager) Bootstrap(ctx context.Context) (State, error) {
	pair, err := m.store.Load(ctx)
	if errors.Is(err, credstore.ErrPartialPair) {
		m.logger.Warn("stored credentials corrupt, treating as logged out")

		return State{Authenticated: false}, nil
	}

	if err != nil {
		return State{}, fmt.Errorf("session: %w", err)
	}

	return State{Authenticated: pair != nil}, nil
}

// Watch emits a State whenever the credentials file at path changes —
// covering rotation, logout, or login performed by another process. The
// channel closes when ctx is canceled. Slow consumers drop intermediate
// states; the latest one always arrives.
func (m *Manager) Watch(ctx context.Context, path string) (<-chan State, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("session: creating watcher: %w", err)
	}

	// Watch the directory, not the file: atomic rename-over replaces the
	// inode, which silently detaches a file-level watch.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("session: watching %s: %w", dir, err)
	}

	out := make(chan State, 1)

	go m.watchLoop(ctx, watcher, path, out)

	return out, nil
}

func (m *Manager) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string, out chan State) {
	defer close(out)
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			if event.Name != path {
				continue
			}

			if !event.Has(fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename) {
				continue
			}

			state, err := m.Bootstrap(ctx)
			if err != nil {
				m.logger.Warn("re-reading session state failed",
					slog.String("error", err.Error()),
				)

				continue
			}

			m.logger.Debug("credentials changed on disk",
				slog.String("op", event.Op.String()),
				slog.Bool("authenticated", state.Authenticated),
			)

			// Keep only the latest state for slow consumers.
			select {
			case out <- state:
			default:
				select {
				case <-out:
				default:
				}

				out <- state
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}

			m.logger.Warn("credentials watcher error", slog.String("error", err.Error()))
		}
	}
}
