// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Nostrkeep Authors

package tui

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStartIdentityWatcher_NotifiesOnWrite(t *testing.T) {
	dataDir := t.TempDir()
	identityPath := filepath.Join(dataDir, "identity.key")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := StartIdentityWatcher(ctx, dataDir, identityPath)
	if err != nil {
		t.Fatalf("StartIdentityWatcher failed: %v", err)
	}

	if err := os.WriteFile(identityPath, []byte("payload"), 0600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	select {
	case _, ok := <-events:
		if !ok {
			t.Fatal("events channel closed before delivering the notification")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no notification for identity file write")
	}
}

func TestStartIdentityWatcher_IgnoresOtherFiles(t *testing.T) {
	dataDir := t.TempDir()
	identityPath := filepath.Join(dataDir, "identity.key")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := StartIdentityWatcher(ctx, dataDir, identityPath)
	if err != nil {
		t.Fatalf("StartIdentityWatcher failed: %v", err)
	}

	otherPath := filepath.Join(dataDir, "config.yaml")
	if err := os.WriteFile(otherPath, []byte("mask_secret: true\n"), 0600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	select {
	case <-events:
		t.Error("unrelated file change produced a notification")
	case <-time.After(1 * time.Second):
	}
}

func TestStartIdentityWatcher_CancelDuringDebounce(t *testing.T) {
	dataDir := t.TempDir()
	identityPath := filepath.Join(dataDir, "identity.key")

	ctx, cancel := context.WithCancel(context.Background())

	events, err := StartIdentityWatcher(ctx, dataDir, identityPath)
	if err != nil {
		t.Fatalf("StartIdentityWatcher failed: %v", err)
	}

	// Trigger a change, then cancel while the debounce window is still
	// open. A pending timer firing after shutdown must not crash.
	if err := os.WriteFile(identityPath, []byte("payload"), 0600); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	time.Sleep(100 * time.Millisecond) // let the event reach the watcher
	cancel()

	deadline := time.After(3 * time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				// Outlive the debounce window so a stray timer send
				// would surface before the test ends.
				time.Sleep(600 * time.Millisecond)
				return
			}
		case <-deadline:
			t.Fatal("events channel not closed after cancel")
		}
	}
}
