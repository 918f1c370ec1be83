// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Nostrkeep Authors

package keystore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nostrkeep/nostrkeep/internal/crypto"
	"github.com/nostrkeep/nostrkeep/internal/fsutil"
	"github.com/nostrkeep/nostrkeep/internal/keys"
)

// keyType identifies the algorithm of stored identities.
const keyType = "secp256k1-schnorr"

// IdentityMetadata contains non-sensitive information about a stored identity
type IdentityMetadata struct {
	// FilePath is the path to the identity file
	FilePath string

	// CreatedAt is when the identity was stored (file modification time)
	CreatedAt time.Time

	// StorageType indicates the backend ("file")
	StorageType string
}

// IdentityStore abstracts identity persistence.
//
// Implementations must be safe for concurrent use.
type IdentityStore interface {
	// Exists reports whether a stored identity is present.
	// This does not require decryption.
	Exists() bool

	// Save persists the keystore's identity encrypted under passphrase.
	// Saving a NotSet keystore is refused with ErrNotSet.
	Save(ctx context.Context, ks *Keystore, passphrase []byte) error

	// Load reads and decrypts the stored identity into a fresh Keystore.
	// Returns ErrNoIdentity if nothing is stored and ErrInvalidPassphrase
	// if the passphrase does not decrypt the file.
	Load(ctx context.Context, passphrase []byte) (*Keystore, error)

	// Delete removes the stored identity.
	// Returns ErrNoIdentity if nothing is stored.
	Delete(ctx context.Context) error

	// Metadata returns metadata for the stored identity without decrypting it.
	Metadata() (*IdentityMetadata, error)

	// Type returns the storage backend type ("file")
	Type() string
}

// identityFile is the JSON payload stored inside the encryption envelope.
type identityFile struct {
	KeyType   string `json:"key_type"`
	PublicKey string `json:"public_key"`
	SecretKey string `json:"secret_key,omitempty"` // empty for public-only identities
	CreatedAt string `json:"created_at"`
}

// FileIdentityStore implements IdentityStore using an encrypted file on disk
type FileIdentityStore struct {
	dataDir  string
	fileName string
	lock     sync.Mutex
}

// NewFileIdentityStore creates a file-based identity store rooted at dataDir.
// fileName is the identity file name within dataDir (e.g. "identity.key").
func NewFileIdentityStore(dataDir, fileName string) *FileIdentityStore {
	return &FileIdentityStore{
		dataDir:  dataDir,
		fileName: fileName,
	}
}

// Path returns the full path of the identity file.
func (f *FileIdentityStore) Path() string {
	return filepath.Join(f.dataDir, f.fileName)
}

// Exists reports whether an identity file is present on disk
func (f *FileIdentityStore) Exists() bool {
	_, err := os.Stat(f.Path())
	return err == nil
}

// Save persists the keystore's identity encrypted under passphrase.
// The file is written with 0600 permissions via a temp-file rename so a
// crash mid-write never leaves a truncated identity behind.
func (f *FileIdentityStore) Save(ctx context.Context, ks *Keystore, passphrase []byte) error {
	_ = ctx

	if !ks.IsPublicKeySet() {
		return ErrNotSet
	}

	payload := identityFile{
		KeyType:   keyType,
		PublicKey: ks.keys.PublicKeyHex(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if ks.IsSecretKeySet() {
		sk, err := ks.keys.SecretKeyHex()
		if err != nil {
			return fmt.Errorf("failed to read secret key: %w", err)
		}
		payload.SecretKey = sk
	}

	plaintext, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal identity: %w", err)
	}
	defer crypto.ZeroBytes(plaintext)

	encrypted, err := crypto.Encrypt(plaintext, passphrase)
	if err != nil {
		return fmt.Errorf("failed to encrypt identity: %w", err)
	}

	f.lock.Lock()
	defer f.lock.Unlock()

	if err := fsutil.MkdirAll(f.dataDir); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if err := fsutil.WriteFileAtomic(f.Path(), encrypted); err != nil {
		return fmt.Errorf("failed to write identity file: %w", err)
	}

	return nil
}

// Load reads and decrypts the stored identity into a fresh Keystore
func (f *FileIdentityStore) Load(ctx context.Context, passphrase []byte) (*Keystore, error) {
	_ = ctx

	f.lock.Lock()
	data, err := os.ReadFile(f.Path())
	f.lock.Unlock()

	if os.IsNotExist(err) {
		return nil, ErrNoIdentity
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read identity file: %w", err)
	}

	if !crypto.IsEncrypted(data) {
		return nil, fmt.Errorf("identity file is not in encrypted envelope format")
	}

	plaintext, err := crypto.Decrypt(data, passphrase)
	if err != nil {
		if strings.Contains(err.Error(), "decrypt") {
			return nil, ErrInvalidPassphrase
		}
		return nil, fmt.Errorf("failed to decrypt identity file: %w", err)
	}
	defer crypto.ZeroBytes(plaintext)

	var payload identityFile
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse identity file: %w", err)
	}
	if payload.KeyType != keyType {
		return nil, fmt.Errorf("unsupported key type: %s", payload.KeyType)
	}

	k, err := keys.FromHex(payload.SecretKey, payload.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct keys: %w", err)
	}

	ks := New()
	ks.keys = k
	if payload.SecretKey != "" {
		ks.level = LevelSecretAndPublic
	} else {
		ks.level = LevelPublicOnly
	}
	return ks, nil
}

// Delete moves the identity file to a deleted/ subdirectory rather than
// destroying it, mirroring key deletion elsewhere in the tool.
func (f *FileIdentityStore) Delete(ctx context.Context) error {
	_ = ctx

	f.lock.Lock()
	defer f.lock.Unlock()

	if _, err := os.Stat(f.Path()); os.IsNotExist(err) {
		return ErrNoIdentity
	}

	deletedDir := filepath.Join(f.dataDir, "deleted")
	if err := fsutil.MkdirAll(deletedDir); err != nil {
		return fmt.Errorf("failed to create deleted directory: %w", err)
	}

	destName := fmt.Sprintf("%s.%s", f.fileName, time.Now().UTC().Format("20060102T150405Z"))
	destPath := filepath.Join(deletedDir, destName)
	if err := os.Rename(f.Path(), destPath); err != nil {
		return fmt.Errorf("failed to move identity file: %w", err)
	}

	return nil
}

// Metadata returns metadata for the stored identity without decrypting it
func (f *FileIdentityStore) Metadata() (*IdentityMetadata, error) {
	info, err := os.Stat(f.Path())
	if os.IsNotExist(err) {
		return nil, ErrNoIdentity
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat identity file: %w", err)
	}

	return &IdentityMetadata{
		FilePath:    f.Path(),
		CreatedAt:   info.ModTime(),
		StorageType: "file",
	}, nil
}

// Type returns the storage backend type
func (f *FileIdentityStore) Type() string {
	return "file"
}

// Compile-time interface check
var _ IdentityStore = (*FileIdentityStore)(nil)
