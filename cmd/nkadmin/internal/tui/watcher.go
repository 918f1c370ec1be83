// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Nostrkeep Authors

package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nostrkeep/nostrkeep/internal/util"
)

// StartIdentityWatcher starts a file system watcher on the data directory
// and reports identity file changes on the returned channel. Events are
// debounced so an editor's write-then-rename shows up as one notification.
//
// The channel is closed when ctx is cancelled.
func StartIdentityWatcher(ctx context.Context, dataDir, identityPath string) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory, not the file: the identity file is replaced
	// by rename on save and may not exist yet.
	if err := watcher.Add(dataDir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch data directory: %w", err)
	}

	events := make(chan struct{}, 1)

	go func() {
		defer func() { _ = watcher.Close() }()
		defer close(events)

		// Debounce timer to avoid rapid notifications. The timer
		// callback runs on its own goroutine and may fire after this
		// goroutine has returned and closed events, so it signals
		// through debounced (never closed, buffered) instead; only
		// this goroutine ever sends on events.
		var debounceTimer *time.Timer
		const debounceDelay = 500 * time.Millisecond
		debounced := make(chan struct{}, 1)

		defer func() {
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
		}()

		notify := func() {
			select {
			case debounced <- struct{}{}:
			default: // A notification is already pending
			}
		}

		for {
			select {
			case <-ctx.Done():
				return

			case <-debounced:
				select {
				case events <- struct{}{}:
				default: // A notification is already pending
				}

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				// Only react to the identity file itself
				if event.Name != identityPath {
					continue
				}

				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
					if debounceTimer != nil {
						debounceTimer.Stop()
					}
					debounceTimer = time.AfterFunc(debounceDelay, notify)
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				util.Debug("identity watcher error", "error", err)
			}
		}
	}()

	return events, nil
}
