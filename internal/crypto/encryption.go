// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Nostrkeep Authors

// Package crypto provides the passphrase-based encryption envelope used for
// identity files at rest, plus secure-memory helpers for sensitive buffers.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	// Argon2id parameters (OWASP recommended)
	argon2Time    = 1         // iterations
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4         // parallelism
	argon2KeyLen  = 32        // AES-256

	saltLen = 32
)

// EncryptedData stores encrypted content with an embedded salt.
// Each file is self-contained: decryptable with only the file and the
// passphrase, no separate store metadata.
type EncryptedData struct {
	EnvelopeVersion int    `json:"envelope_version"` // Encryption envelope format version
	Salt            string `json:"salt"`             // Base64-encoded 32-byte random salt
	Nonce           string `json:"nonce"`            // Base64-encoded nonce for AES-GCM
	Ciphertext      string `json:"ciphertext"`       // Base64-encoded encrypted data
}

// IsEncrypted checks if data appears to be in encrypted envelope format
func IsEncrypted(data []byte) bool {
	var encrypted EncryptedData
	return json.Unmarshal(data, &encrypted) == nil && encrypted.EnvelopeVersion > 0
}

// DeriveKey derives an AES-256 key from passphrase and salt.
// Uses Argon2id (memory-hard, GPU-resistant).
// Caller is responsible for zeroing the returned key when done.
func DeriveKey(passphrase []byte, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
}

// Encrypt encrypts plaintext using a passphrase-derived key.
// Produces envelope_version 1 format with an embedded Argon2id salt.
func Encrypt(plaintext, passphrase []byte) ([]byte, error) {
	// Generate random salt
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	// Derive key from passphrase
	key := DeriveKey(passphrase, salt)
	defer ZeroBytes(key)

	// Create AES cipher
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	// Create GCM mode
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	// Generate random nonce
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Encrypt
	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	encrypted := EncryptedData{
		EnvelopeVersion: 1,
		Salt:            base64.StdEncoding.EncodeToString(salt),
		Nonce:           base64.StdEncoding.EncodeToString(nonce),
		Ciphertext:      base64.StdEncoding.EncodeToString(ciphertext),
	}

	return json.MarshalIndent(encrypted, "", "  ")
}

// Decrypt decrypts an envelope_version 1 file using a passphrase.
func Decrypt(encryptedJSON, passphrase []byte) ([]byte, error) {
	// Check envelope version first
	var versionCheck struct {
		EnvelopeVersion int `json:"envelope_version"`
	}
	if err := json.Unmarshal(encryptedJSON, &versionCheck); err != nil {
		return nil, fmt.Errorf("failed to parse encrypted data: %w", err)
	}

	if versionCheck.EnvelopeVersion != 1 {
		return nil, fmt.Errorf("envelope_version %d not supported (expected 1)", versionCheck.EnvelopeVersion)
	}

	var encrypted EncryptedData
	if err := json.Unmarshal(encryptedJSON, &encrypted); err != nil {
		return nil, fmt.Errorf("failed to parse encrypted data: %w", err)
	}

	salt, err := base64.StdEncoding.DecodeString(encrypted.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}

	nonce, err := base64.StdEncoding.DecodeString(encrypted.Nonce)
	if err != nil {
		return nil, fmt.Errorf("failed to decode nonce: %w", err)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encrypted.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	// Derive key from passphrase and embedded salt
	key := DeriveKey(passphrase, salt)
	defer ZeroBytes(key)

	// Create AES cipher
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	// Create GCM mode
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	// Decrypt
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt data: %w", err)
	}

	return plaintext, nil
}
