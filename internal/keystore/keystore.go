// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Nostrkeep Authors

// Package keystore tracks the lifecycle state of the application's single
// Nostr identity keypair.
//
// The Keystore holds exactly one keypair slot and an explicit level that
// records how much of the slot is meaningful: nothing, public key only, or
// the full secret+public pair. Every mutating operation resets the slot to
// a fresh placeholder before assigning, so a failed import can never leave
// stale key material behind.
//
// For encrypted at-rest persistence of the identity, see FileIdentityStore
// in this package.
package keystore

import (
	"errors"
	"fmt"

	"github.com/nostrkeep/nostrkeep/internal/keys"
)

// Common keystore errors
var (
	// ErrNotSet indicates no usable secret key is held
	ErrNotSet = errors.New("keys not set")

	// ErrNoIdentity indicates no identity file exists on disk
	ErrNoIdentity = errors.New("no identity found")

	// ErrInvalidPassphrase indicates the passphrase is incorrect
	ErrInvalidPassphrase = errors.New("invalid passphrase")
)

// Sentinel strings returned by the display accessors Npub and Nsec.
// These accessors feed UI output directly and report absence or encoding
// trouble in-band rather than through error values.
const (
	SentinelNotSet          = "(not set)"
	SentinelNoSecretKey     = "(no secret key)"
	SentinelConversionError = "(conversion error)"
)

// SetLevel records which components of the held keypair are meaningful.
type SetLevel int

const (
	// LevelNotSet means the slot holds only a placeholder pair
	LevelNotSet SetLevel = iota

	// LevelPublicOnly means the public key is usable, signing is not possible
	LevelPublicOnly

	// LevelSecretAndPublic means the full pair is usable
	LevelSecretAndPublic
)

// String returns a display name for the level.
func (l SetLevel) String() string {
	switch l {
	case LevelPublicOnly:
		return "public key only"
	case LevelSecretAndPublic:
		return "secret and public key"
	default:
		return "not set"
	}
}

// Keystore holds the application identity keypair and its set level.
//
// The keypair slot always holds some value: in the NotSet state it is a
// freshly generated throwaway pair, never absent. level is the single
// source of truth for whether the slot's contents are meaningful.
//
// A Keystore is exclusively owned by one caller; it carries no internal
// synchronization (see FileIdentityStore for the shared storage layer).
type Keystore struct {
	level SetLevel
	keys  keys.Keys
}

// New creates a Keystore in the NotSet state with a placeholder keypair.
func New() *Keystore {
	return &Keystore{
		level: LevelNotSet,
		keys:  keys.Generate(), // placeholder value initially
	}
}

// Clear resets the store to the NotSet state, replacing the keypair slot
// with a fresh placeholder. Calling Clear on an already-cleared store is a
// no-op apart from regenerating the placeholder.
func (s *Keystore) Clear() {
	s.keys = keys.Generate()
	s.level = LevelNotSet
}

// Generate replaces the identity with a new random keypair.
func (s *Keystore) Generate() {
	s.keys = keys.Generate()
	s.level = LevelSecretAndPublic
}

// ImportPublicKey imports a public key only, in bech32 "npub" or hex
// format. Signing will not be possible.
//
// The store is cleared before the assignment is attempted: on parse
// failure it is left in the NotSet state, not in its prior state.
func (s *Keystore) ImportPublicKey(publicKeyStr string) error {
	s.Clear()
	k, err := keys.ParsePublicKey(publicKeyStr)
	if err != nil {
		return fmt.Errorf("import public key: %w", err)
	}
	s.keys = k
	s.level = LevelPublicOnly
	return nil
}

// ImportSecretKey imports a secret key, in bech32 "nsec" or hex format.
// The public key is derived from it. Security-sensitive.
//
// Same reset-on-failure policy as ImportPublicKey: a failed import leaves
// the store in the NotSet state.
func (s *Keystore) ImportSecretKey(secretKeyStr string) error {
	s.Clear()
	k, err := keys.ParseSecretKey(secretKeyStr)
	if err != nil {
		return fmt.Errorf("import secret key: %w", err)
	}
	s.keys = k
	s.level = LevelSecretAndPublic
	return nil
}

// Level returns the current set level.
func (s *Keystore) Level() SetLevel {
	return s.level
}

// IsPublicKeySet reports whether a meaningful public key is held.
func (s *Keystore) IsPublicKeySet() bool {
	return s.level != LevelNotSet
}

// IsSecretKeySet reports whether a meaningful secret key is held.
func (s *Keystore) IsSecretKeySet() bool {
	return s.level == LevelSecretAndPublic
}

// Keys returns a copy of the full keypair for signing use.
// Returns ErrNotSet unless the full secret+public pair is held; callers
// needing signing capability must handle that first.
func (s *Keystore) Keys() (keys.Keys, error) {
	if !s.IsSecretKeySet() {
		return keys.Keys{}, ErrNotSet
	}
	return s.keys, nil
}

// Npub returns the bech32-encoded public key for display.
// Returns SentinelNotSet when no public key is held.
func (s *Keystore) Npub() string {
	if !s.IsPublicKeySet() {
		return SentinelNotSet
	}
	npub, err := s.keys.Npub()
	if err != nil {
		return SentinelConversionError
	}
	return npub
}

// Nsec returns the bech32-encoded secret key for display.
// Returns SentinelNotSet when no secret key is held. Security-sensitive.
func (s *Keystore) Nsec() string {
	if !s.IsSecretKeySet() {
		return SentinelNotSet
	}
	nsec, err := s.keys.Nsec()
	if err != nil {
		if errors.Is(err, keys.ErrNoSecretKey) {
			return SentinelNoSecretKey
		}
		return SentinelConversionError
	}
	return nsec
}
