// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Nostrkeep Authors

package crypto

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	plaintext := []byte(`{"secret_key":"deadbeef"}`)
	passphrase := []byte("correct horse battery staple")

	encrypted, err := Encrypt(plaintext, passphrase)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	if !IsEncrypted(encrypted) {
		t.Error("IsEncrypted should be true for envelope output")
	}
	if bytes.Contains(encrypted, plaintext) {
		t.Error("envelope must not contain plaintext")
	}

	decrypted, err := Decrypt(encrypted, passphrase)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Errorf("decrypted = %q, want %q", decrypted, plaintext)
	}
}

func TestDecrypt_WrongPassphrase(t *testing.T) {
	encrypted, err := Encrypt([]byte("payload"), []byte("right"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	if _, err := Decrypt(encrypted, []byte("wrong")); err == nil {
		t.Error("Decrypt should fail with the wrong passphrase")
	}
}

func TestDecrypt_UnsupportedVersion(t *testing.T) {
	envelope, err := json.Marshal(EncryptedData{EnvelopeVersion: 99})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	if _, err := Decrypt(envelope, []byte("pass")); err == nil {
		t.Error("Decrypt should reject unknown envelope versions")
	}
}

func TestDecrypt_Garbage(t *testing.T) {
	if _, err := Decrypt([]byte("not json at all"), []byte("pass")); err == nil {
		t.Error("Decrypt should fail on non-envelope input")
	}
}

func TestIsEncrypted_PlainData(t *testing.T) {
	if IsEncrypted([]byte(`{"public_key":"abc"}`)) {
		t.Error("IsEncrypted should be false for plain JSON without envelope fields")
	}
	if IsEncrypted([]byte("plain text")) {
		t.Error("IsEncrypted should be false for non-JSON data")
	}
}

func TestEncrypt_UniqueSaltAndNonce(t *testing.T) {
	passphrase := []byte("pass")
	plaintext := []byte("same payload")

	first, err := Encrypt(plaintext, passphrase)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	second, err := Encrypt(plaintext, passphrase)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	var a, b EncryptedData
	if err := json.Unmarshal(first, &a); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if err := json.Unmarshal(second, &b); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if a.Salt == b.Salt {
		t.Error("two envelopes share a salt")
	}
	if a.Nonce == b.Nonce {
		t.Error("two envelopes share a nonce")
	}
}
