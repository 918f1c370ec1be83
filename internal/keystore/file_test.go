// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Nostrkeep Authors

package keystore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const testIdentityFile = "identity.key"

var testPassphrase = []byte("test passphrase")

// newTestStore creates a FileIdentityStore rooted in a temp directory.
func newTestStore(t *testing.T) *FileIdentityStore {
	t.Helper()
	return NewFileIdentityStore(t.TempDir(), testIdentityFile)
}

func TestFileIdentityStore_SaveLoad_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ks := New()
	ks.Generate()
	npub := ks.Npub()
	nsec := ks.Nsec()

	if err := store.Save(ctx, ks, testPassphrase); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !store.Exists() {
		t.Fatal("Exists should be true after Save")
	}

	loaded, err := store.Load(ctx, testPassphrase)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !loaded.IsSecretKeySet() {
		t.Error("loaded keystore should hold the full pair")
	}
	if loaded.Npub() != npub {
		t.Errorf("loaded npub = %q, want %q", loaded.Npub(), npub)
	}
	if loaded.Nsec() != nsec {
		t.Errorf("loaded nsec = %q, want %q", loaded.Nsec(), nsec)
	}
}

func TestFileIdentityStore_SaveLoad_PublicOnly(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ks := New()
	if err := ks.ImportPublicKey(testNpub); err != nil {
		t.Fatalf("ImportPublicKey failed: %v", err)
	}

	if err := store.Save(ctx, ks, testPassphrase); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load(ctx, testPassphrase)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Level() != LevelPublicOnly {
		t.Errorf("loaded level = %v, want LevelPublicOnly", loaded.Level())
	}
	if loaded.Npub() != testNpub {
		t.Errorf("loaded npub = %q, want %q", loaded.Npub(), testNpub)
	}
	if loaded.IsSecretKeySet() {
		t.Error("public-only identity must not load a secret key")
	}
}

func TestFileIdentityStore_Save_NotSet(t *testing.T) {
	store := newTestStore(t)

	err := store.Save(context.Background(), New(), testPassphrase)
	if !errors.Is(err, ErrNotSet) {
		t.Errorf("Save(NotSet) error = %v, want ErrNotSet", err)
	}
	if store.Exists() {
		t.Error("nothing should be written for a NotSet keystore")
	}
}

func TestFileIdentityStore_Load_WrongPassphrase(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ks := New()
	ks.Generate()
	if err := store.Save(ctx, ks, testPassphrase); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	_, err := store.Load(ctx, []byte("wrong passphrase"))
	if !errors.Is(err, ErrInvalidPassphrase) {
		t.Errorf("Load error = %v, want ErrInvalidPassphrase", err)
	}
}

func TestFileIdentityStore_Load_NoIdentity(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load(context.Background(), testPassphrase)
	if !errors.Is(err, ErrNoIdentity) {
		t.Errorf("Load error = %v, want ErrNoIdentity", err)
	}
}

func TestFileIdentityStore_Load_PlaintextFile(t *testing.T) {
	dataDir := t.TempDir()
	store := NewFileIdentityStore(dataDir, testIdentityFile)

	// A file that is not an encryption envelope must be rejected
	path := filepath.Join(dataDir, testIdentityFile)
	if err := os.WriteFile(path, []byte(`{"public_key":"abc"}`), 0600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if _, err := store.Load(context.Background(), testPassphrase); err == nil {
		t.Error("Load should reject a non-envelope identity file")
	}
}

func TestFileIdentityStore_FilePermissions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ks := New()
	ks.Generate()
	if err := store.Save(ctx, ks, testPassphrase); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("identity file permissions = %o, want 0600", perm)
	}
}

func TestFileIdentityStore_Overwrite(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := New()
	first.Generate()
	if err := store.Save(ctx, first, testPassphrase); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	second := New()
	second.Generate()
	if err := store.Save(ctx, second, testPassphrase); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	loaded, err := store.Load(ctx, testPassphrase)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Npub() != second.Npub() {
		t.Error("Save should replace the stored identity")
	}
}

func TestFileIdentityStore_Delete(t *testing.T) {
	dataDir := t.TempDir()
	store := NewFileIdentityStore(dataDir, testIdentityFile)
	ctx := context.Background()

	ks := New()
	ks.Generate()
	if err := store.Save(ctx, ks, testPassphrase); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := store.Delete(ctx); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if store.Exists() {
		t.Error("identity file should be gone after Delete")
	}

	// The encrypted file is retained under deleted/
	entries, err := os.ReadDir(filepath.Join(dataDir, "deleted"))
	if err != nil {
		t.Fatalf("read deleted dir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("deleted dir holds %d files, want 1", len(entries))
	}

	// Deleting again reports no identity
	if err := store.Delete(ctx); !errors.Is(err, ErrNoIdentity) {
		t.Errorf("second Delete error = %v, want ErrNoIdentity", err)
	}
}

func TestFileIdentityStore_Metadata(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Metadata(); !errors.Is(err, ErrNoIdentity) {
		t.Errorf("Metadata error = %v, want ErrNoIdentity", err)
	}

	ks := New()
	ks.Generate()
	if err := store.Save(ctx, ks, testPassphrase); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	meta, err := store.Metadata()
	if err != nil {
		t.Fatalf("Metadata failed: %v", err)
	}
	if meta.StorageType != "file" {
		t.Errorf("StorageType = %q, want %q", meta.StorageType, "file")
	}
	if meta.FilePath != store.Path() {
		t.Errorf("FilePath = %q, want %q", meta.FilePath, store.Path())
	}
	if meta.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}
