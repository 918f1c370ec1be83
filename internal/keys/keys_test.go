// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Nostrkeep Authors

package keys

import (
	"strings"
	"testing"
)

// Known vector: secret key and its derived public key in bech32 form.
const (
	testNsec = "nsec1ktekw0hr5evjs0n9nyyquz4sue568snypy2rwk5mpv6hl2hq3vtsk0kpae"
	testNpub = "npub1rfze4zn25ezp6jqt5ejlhrajrfx0az72ed7cwvq0spr22k9rlnjq93lmd4"
)

func TestGenerate(t *testing.T) {
	k := Generate()

	if !k.HasSecretKey() {
		t.Fatal("generated keys should have a secret key")
	}
	if len(k.PublicKeyHex()) != 64 {
		t.Errorf("public key hex length = %d, want 64", len(k.PublicKeyHex()))
	}

	npub, err := k.Npub()
	if err != nil {
		t.Fatalf("Npub failed: %v", err)
	}
	if !strings.HasPrefix(npub, "npub1") {
		t.Errorf("npub = %q, want npub1 prefix", npub)
	}

	nsec, err := k.Nsec()
	if err != nil {
		t.Fatalf("Nsec failed: %v", err)
	}
	if !strings.HasPrefix(nsec, "nsec1") {
		t.Errorf("nsec = %q, want nsec1 prefix", nsec)
	}

	// Two generations must not collide
	k2 := Generate()
	if k2.PublicKeyHex() == k.PublicKeyHex() {
		t.Error("two generated keypairs share a public key")
	}
}

func TestParseSecretKey_Bech32(t *testing.T) {
	k, err := ParseSecretKey(testNsec)
	if err != nil {
		t.Fatalf("ParseSecretKey failed: %v", err)
	}

	nsec, err := k.Nsec()
	if err != nil {
		t.Fatalf("Nsec failed: %v", err)
	}
	if nsec != testNsec {
		t.Errorf("nsec round-trip = %q, want %q", nsec, testNsec)
	}

	npub, err := k.Npub()
	if err != nil {
		t.Fatalf("Npub failed: %v", err)
	}
	if npub != testNpub {
		t.Errorf("derived npub = %q, want %q", npub, testNpub)
	}
}

func TestParseSecretKey_Hex(t *testing.T) {
	orig := Generate()
	skHex, err := orig.SecretKeyHex()
	if err != nil {
		t.Fatalf("SecretKeyHex failed: %v", err)
	}

	k, err := ParseSecretKey(skHex)
	if err != nil {
		t.Fatalf("ParseSecretKey(hex) failed: %v", err)
	}
	if k.PublicKeyHex() != orig.PublicKeyHex() {
		t.Errorf("derived public key = %q, want %q", k.PublicKeyHex(), orig.PublicKeyHex())
	}
}

func TestParseSecretKey_Invalid(t *testing.T) {
	cases := []string{
		"",
		"__NOT_A_VALID_KEY__",
		"nsec1invalidchecksum0000000000000000000000000000000000000000000",
		testNpub, // npub is not a secret key
	}

	for _, input := range cases {
		if _, err := ParseSecretKey(input); err == nil {
			t.Errorf("ParseSecretKey(%q) should fail", input)
		}
	}
}

func TestParsePublicKey_Bech32(t *testing.T) {
	k, err := ParsePublicKey(testNpub)
	if err != nil {
		t.Fatalf("ParsePublicKey failed: %v", err)
	}
	if k.HasSecretKey() {
		t.Error("public-only keys should not report a secret key")
	}
	if _, err := k.SecretKeyHex(); err == nil {
		t.Error("SecretKeyHex should fail for public-only keys")
	}
	if _, err := k.Nsec(); err == nil {
		t.Error("Nsec should fail for public-only keys")
	}

	npub, err := k.Npub()
	if err != nil {
		t.Fatalf("Npub failed: %v", err)
	}
	if npub != testNpub {
		t.Errorf("npub round-trip = %q, want %q", npub, testNpub)
	}
}

func TestParsePublicKey_Hex(t *testing.T) {
	orig := Generate()

	k, err := ParsePublicKey(orig.PublicKeyHex())
	if err != nil {
		t.Fatalf("ParsePublicKey(hex) failed: %v", err)
	}
	if k.PublicKeyHex() != orig.PublicKeyHex() {
		t.Errorf("public key = %q, want %q", k.PublicKeyHex(), orig.PublicKeyHex())
	}
	if k.HasSecretKey() {
		t.Error("hex public key import should not produce a secret key")
	}
}

func TestParsePublicKey_Invalid(t *testing.T) {
	cases := []string{
		"",
		"__NOT_A_VALID_KEY__",
		testNsec, // nsec is not a public key
		"zz" + strings.Repeat("0", 62),
	}

	for _, input := range cases {
		if _, err := ParsePublicKey(input); err == nil {
			t.Errorf("ParsePublicKey(%q) should fail", input)
		}
	}
}

func TestParsePublicKey_OffCurveHex(t *testing.T) {
	// Well-formed hex whose x-coordinate is not a point on the curve.
	offCurve := strings.Repeat("ff", 32)

	if _, err := ParsePublicKey(offCurve); err == nil {
		t.Error("ParsePublicKey should reject an off-curve x-coordinate")
	}
}

func TestFromHex(t *testing.T) {
	orig := Generate()
	skHex, _ := orig.SecretKeyHex()

	k, err := FromHex(skHex, orig.PublicKeyHex())
	if err != nil {
		t.Fatalf("FromHex failed: %v", err)
	}
	if k.PublicKeyHex() != orig.PublicKeyHex() {
		t.Error("FromHex did not preserve public key")
	}
	if !k.HasSecretKey() {
		t.Error("FromHex did not preserve secret key")
	}

	// Public-only reconstruction
	pubOnly, err := FromHex("", orig.PublicKeyHex())
	if err != nil {
		t.Fatalf("FromHex(public-only) failed: %v", err)
	}
	if pubOnly.HasSecretKey() {
		t.Error("public-only reconstruction should have no secret key")
	}

	// Mismatched public key must be rejected
	other := Generate()
	if _, err := FromHex(skHex, other.PublicKeyHex()); err == nil {
		t.Error("FromHex should reject a public key that does not match the secret")
	}

	// Off-curve public key must be rejected even without a secret
	if _, err := FromHex("", strings.Repeat("ff", 32)); err == nil {
		t.Error("FromHex should reject an off-curve public key")
	}
}
