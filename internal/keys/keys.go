// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Nostrkeep Authors

// Package keys wraps the Nostr key primitives used throughout nostrkeep.
//
// All elliptic-curve work (BIP-340 key generation, public key derivation)
// and bech32 encoding (NIP-19 npub/nsec) is delegated to go-nostr. This
// package only adapts between the accepted input formats (hex or bech32)
// and the Keys value type.
package keys

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip19"
)

// ErrNoSecretKey indicates the Keys value holds only a public key.
var ErrNoSecretKey = fmt.Errorf("no secret key")

// Keys holds a Nostr keypair as lowercase hex strings.
//
// The secret key may be empty (public-only keys, e.g. imported from an
// npub). Keys is a value type: assignment copies it, which gives callers
// the clone semantics they need when handing key material around.
type Keys struct {
	secretKey string // 64-char hex, empty for public-only keys
	publicKey string // 64-char hex, always present
}

// Generate creates a new random keypair from system entropy.
func Generate() Keys {
	sk := nostr.GeneratePrivateKey()
	// A freshly generated secret key always derives; the error path is
	// only reachable with malformed hex input.
	pk, err := nostr.GetPublicKey(sk)
	if err != nil {
		panic(fmt.Sprintf("derive public key from generated secret: %v", err))
	}
	return Keys{secretKey: sk, publicKey: pk}
}

// ParsePublicKey parses a public key from 64-char hex or bech32 "npub"
// format. The resulting Keys value has no secret key.
func ParsePublicKey(s string) (Keys, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Keys{}, fmt.Errorf("empty public key")
	}

	if isHexKey(s) {
		pk := strings.ToLower(s)
		if !nostr.IsValidPublicKey(pk) {
			return Keys{}, fmt.Errorf("invalid public key: not a point on the curve")
		}
		return Keys{publicKey: pk}, nil
	}

	prefix, value, err := nip19.Decode(s)
	if err != nil {
		return Keys{}, fmt.Errorf("invalid public key: %w", err)
	}
	if prefix != "npub" {
		return Keys{}, fmt.Errorf("invalid public key: expected npub, got %q", prefix)
	}
	return Keys{publicKey: value.(string)}, nil
}

// ParseSecretKey parses a secret key from 64-char hex or bech32 "nsec"
// format and derives the corresponding public key.
func ParseSecretKey(s string) (Keys, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Keys{}, fmt.Errorf("empty secret key")
	}

	var sk string
	if isHexKey(s) {
		sk = strings.ToLower(s)
	} else {
		prefix, value, err := nip19.Decode(s)
		if err != nil {
			return Keys{}, fmt.Errorf("invalid secret key: %w", err)
		}
		if prefix != "nsec" {
			return Keys{}, fmt.Errorf("invalid secret key: expected nsec, got %q", prefix)
		}
		sk = value.(string)
	}

	pk, err := nostr.GetPublicKey(sk)
	if err != nil {
		return Keys{}, fmt.Errorf("invalid secret key: %w", err)
	}
	return Keys{secretKey: sk, publicKey: pk}, nil
}

// FromHex reconstructs a Keys value from stored hex components.
// secretKeyHex may be empty for public-only identities.
func FromHex(secretKeyHex, publicKeyHex string) (Keys, error) {
	if !isHexKey(publicKeyHex) {
		return Keys{}, fmt.Errorf("invalid public key hex")
	}
	if secretKeyHex == "" {
		pk := strings.ToLower(publicKeyHex)
		if !nostr.IsValidPublicKey(pk) {
			return Keys{}, fmt.Errorf("invalid public key hex")
		}
		return Keys{publicKey: pk}, nil
	}
	k, err := ParseSecretKey(secretKeyHex)
	if err != nil {
		return Keys{}, err
	}
	if k.publicKey != strings.ToLower(publicKeyHex) {
		return Keys{}, fmt.Errorf("public key does not match secret key")
	}
	return k, nil
}

// HasSecretKey reports whether the keypair includes a secret key.
func (k Keys) HasSecretKey() bool {
	return k.secretKey != ""
}

// PublicKeyHex returns the public key as lowercase hex.
func (k Keys) PublicKeyHex() string {
	return k.publicKey
}

// SecretKeyHex returns the secret key as lowercase hex.
// Returns ErrNoSecretKey for public-only keys.
func (k Keys) SecretKeyHex() (string, error) {
	if k.secretKey == "" {
		return "", ErrNoSecretKey
	}
	return k.secretKey, nil
}

// Npub returns the bech32 "npub" encoding of the public key.
func (k Keys) Npub() (string, error) {
	return nip19.EncodePublicKey(k.publicKey)
}

// Nsec returns the bech32 "nsec" encoding of the secret key.
// Returns ErrNoSecretKey for public-only keys.
func (k Keys) Nsec() (string, error) {
	if k.secretKey == "" {
		return "", ErrNoSecretKey
	}
	return nip19.EncodePrivateKey(k.secretKey)
}

// isHexKey reports whether s looks like a 32-byte hex-encoded key.
func isHexKey(s string) bool {
	if len(s) != 64 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
