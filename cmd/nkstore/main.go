// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Nostrkeep Authors

package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/nostrkeep/nostrkeep/internal/crypto"
	"github.com/nostrkeep/nostrkeep/internal/keystore"
	"github.com/nostrkeep/nostrkeep/internal/util"
	"github.com/nostrkeep/nostrkeep/internal/version"
)

// store is the identity store resolved from config, shared by all commands
var store *keystore.FileIdentityStore

// stdinReader is a shared reader for non-terminal stdin
var stdinReader *bufio.Reader

func main() {
	// Handle early-exit flags before any other processing
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" {
			fmt.Printf("nkstore %s\n", version.String())
			os.Exit(0)
		}
	}

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "nkstore - Nostr identity keystore management\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  nkstore [-d path] generate [--force]\n")
		fmt.Fprintf(os.Stderr, "  nkstore [-d path] import-pub <npub|hex> [--force]\n")
		fmt.Fprintf(os.Stderr, "  nkstore [-d path] import-sec [--force]\n")
		fmt.Fprintf(os.Stderr, "  nkstore [-d path] show\n")
		fmt.Fprintf(os.Stderr, "  nkstore [-d path] export\n")
		fmt.Fprintf(os.Stderr, "  nkstore [-d path] delete\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		fmt.Fprintf(os.Stderr, "  -d path    Data directory (or set NOSTRKEEP_DATA env var)\n")
		fmt.Fprintf(os.Stderr, "  --force    Overwrite an existing identity file\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  nkstore generate\n")
		fmt.Fprintf(os.Stderr, "  nkstore import-pub npub1rfze4zn25ezp6jqt5ejlhrajrfx0az72ed7cwvq0spr22k9rlnjq93lmd4\n")
		fmt.Fprintf(os.Stderr, "  nkstore import-sec\n")
		fmt.Fprintf(os.Stderr, "  nkstore show\n")
		fmt.Fprintf(os.Stderr, "  nkstore export\n")
	}

	dataDir := flag.String("d", "", "Data directory (required, or set NOSTRKEEP_DATA)")
	flag.Parse()

	// Resolve data directory from -d flag or NOSTRKEEP_DATA env var
	resolvedDataDir := util.RequireDataDir(*dataDir)

	util.InitLogger()

	config, err := util.LoadConfig(resolvedDataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	store = keystore.NewFileIdentityStore(resolvedDataDir, config.IdentityFile)

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	args := flag.Args()
	force := hasFlag(args[1:], "--force")

	switch args[0] {
	case "generate":
		err = cmdGenerate(force)
	case "import-pub":
		if len(positionalArgs(args[1:])) < 1 {
			err = fmt.Errorf("import-pub requires a public key argument (npub or hex)")
		} else {
			err = cmdImportPub(positionalArgs(args[1:])[0], force)
		}
	case "import-sec":
		err = cmdImportSec(force)
	case "show":
		err = cmdShow()
	case "export":
		err = cmdExport()
	case "delete":
		err = cmdDelete()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		flag.Usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// hasFlag reports whether args contains the given flag
func hasFlag(args []string, name string) bool {
	for _, a := range args {
		if a == name {
			return true
		}
	}
	return false
}

// positionalArgs filters out --flags from args
func positionalArgs(args []string) []string {
	var out []string
	for _, a := range args {
		if !strings.HasPrefix(a, "--") {
			out = append(out, a)
		}
	}
	return out
}

// cmdGenerate creates a new random identity and saves it
func cmdGenerate(force bool) error {
	if store.Exists() && !force {
		return fmt.Errorf("identity file already exists at %s (use --force to overwrite)", store.Path())
	}

	ks := keystore.New()
	ks.Generate()

	if err := saveWithNewPassphrase(ks); err != nil {
		return err
	}

	fmt.Println("New identity generated")
	fmt.Printf("  npub: %s\n", ks.Npub())
	fmt.Printf("  file: %s\n", store.Path())
	fmt.Println()
	fmt.Println("Run 'nkstore export' to back up the secret key.")
	return nil
}

// cmdImportPub imports a public-only identity (signing not possible)
func cmdImportPub(publicKeyStr string, force bool) error {
	if store.Exists() && !force {
		return fmt.Errorf("identity file already exists at %s (use --force to overwrite)", store.Path())
	}

	ks := keystore.New()
	if err := ks.ImportPublicKey(publicKeyStr); err != nil {
		return err
	}

	if err := saveWithNewPassphrase(ks); err != nil {
		return err
	}

	fmt.Println("Public key imported (signing will not be possible)")
	fmt.Printf("  npub: %s\n", ks.Npub())
	fmt.Printf("  file: %s\n", store.Path())
	return nil
}

// cmdImportSec imports a secret key read from a hidden prompt
func cmdImportSec(force bool) error {
	if store.Exists() && !force {
		return fmt.Errorf("identity file already exists at %s (use --force to overwrite)", store.Path())
	}

	fmt.Print("Secret key (nsec or hex): ")
	secretKeyStr, err := readPassword()
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read secret key: %w", err)
	}

	ks := keystore.New()
	if err := ks.ImportSecretKey(secretKeyStr); err != nil {
		return err
	}

	if err := saveWithNewPassphrase(ks); err != nil {
		return err
	}

	fmt.Println("Secret key imported")
	fmt.Printf("  npub: %s\n", ks.Npub())
	fmt.Printf("  file: %s\n", store.Path())
	return nil
}

// cmdShow prints the stored identity's public information
func cmdShow() error {
	ks, err := loadWithPassphrase()
	if err != nil {
		return err
	}

	meta, err := store.Metadata()
	if err != nil {
		return err
	}

	fmt.Printf("Status: %s\n", ks.Level())
	fmt.Printf("  npub: %s\n", ks.Npub())
	fmt.Printf("  file: %s\n", meta.FilePath)
	fmt.Printf("  saved: %s\n", meta.CreatedAt.Format("2006-01-02 15:04:05"))
	if ks.IsSecretKeySet() {
		fmt.Println("\nSecret key present; run 'nkstore export' to display it.")
	}
	return nil
}

// cmdExport prints the stored secret key in bech32 form
func cmdExport() error {
	ks, err := loadWithPassphrase()
	if err != nil {
		return err
	}

	if !ks.IsSecretKeySet() {
		return fmt.Errorf("stored identity has no secret key (%s)", ks.Level())
	}

	fmt.Println("WARNING: anyone with this secret key controls the identity.")
	fmt.Printf("  nsec: %s\n", ks.Nsec())
	return nil
}

// cmdDelete moves the identity file to the deleted/ directory
func cmdDelete() error {
	if !store.Exists() {
		return keystore.ErrNoIdentity
	}

	fmt.Printf("Delete identity file %s? [y/N]: ", store.Path())
	line, err := readLine()
	if err != nil {
		return err
	}
	if !strings.EqualFold(strings.TrimSpace(line), "y") {
		fmt.Println("Aborted.")
		return nil
	}

	if err := store.Delete(context.Background()); err != nil {
		return err
	}
	fmt.Println("Identity file moved to deleted/")
	return nil
}

// saveWithNewPassphrase prompts for a passphrase (twice) and saves ks.
func saveWithNewPassphrase(ks *keystore.Keystore) error {
	fmt.Print("Passphrase for identity file: ")
	first, err := readPassword()
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read passphrase: %w", err)
	}
	if first == "" {
		return fmt.Errorf("passphrase must not be empty")
	}

	fmt.Print("Repeat passphrase: ")
	second, err := readPassword()
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read passphrase: %w", err)
	}
	if first != second {
		return fmt.Errorf("passphrases do not match")
	}

	passphrase := crypto.NewSecureStringFromBytes([]byte(first))
	defer passphrase.Destroy()

	return passphrase.WithBytes(func(b []byte) error {
		return store.Save(context.Background(), ks, b)
	})
}

// loadWithPassphrase prompts for the passphrase and loads the identity.
func loadWithPassphrase() (*keystore.Keystore, error) {
	if !store.Exists() {
		return nil, keystore.ErrNoIdentity
	}

	fmt.Print("Passphrase: ")
	pass, err := readPassword()
	fmt.Println()
	if err != nil {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}

	passphrase := crypto.NewSecureStringFromBytes([]byte(pass))
	defer passphrase.Destroy()

	var ks *keystore.Keystore
	err = passphrase.WithBytes(func(b []byte) error {
		var loadErr error
		ks, loadErr = store.Load(context.Background(), b)
		return loadErr
	})
	if errors.Is(err, keystore.ErrInvalidPassphrase) {
		return nil, fmt.Errorf("incorrect passphrase")
	}
	return ks, err
}

// readPassword safely reads a password from stdin, handling both terminal and non-terminal inputs.
func readPassword() (string, error) {
	fd := int(os.Stdin.Fd()) // #nosec G115 - file descriptors are small integers
	if term.IsTerminal(fd) {
		bytePassword, err := term.ReadPassword(fd)
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Not a terminal - read plaintext line using shared reader
	return readLine()
}

// readLine reads one line from stdin using the shared reader.
func readLine() (string, error) {
	if stdinReader == nil {
		stdinReader = bufio.NewReader(os.Stdin)
	}
	line, err := stdinReader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
