//go:build darwin

package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/99designs/keyring"
	"golang.org/x/term"
)

// Security framework status for "user interaction is not allowed", which is
// what writes to a locked login keychain fail with.
const errSecInteractionNotAllowed = "-25308"

var (
	errKeychainPathUnknown = errors.New("cannot determine login keychain path")
	errKeychainNoTTY       = errors.New("login keychain is locked and no TTY is available to unlock it")
	errKeychainUnlock      = errors.New("unlock login keychain: wrong password or keychain error")
)

// Replaced in tests.
var (
	runSecurity = func(ctx context.Context, stdin string, args ...string) error {
		cmd := exec.CommandContext(ctx, "security", args...) //nolint:gosec // fixed binary, path from os.UserHomeDir
		if stdin != "" {
			cmd.Stdin = strings.NewReader(stdin)
		}
		return cmd.Run()
	}
	stdinIsTerminal = func() bool { return term.IsTerminal(int(syscall.Stdin)) }
	readPassword    = func() ([]byte, error) { return term.ReadPassword(int(syscall.Stdin)) }
)

// IsKeychainLockedError reports whether errStr comes from a locked keychain.
func IsKeychainLockedError(errStr string) bool {
	return strings.Contains(errStr, errSecInteractionNotAllowed)
}

func loginKeychainPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "Library", "Keychains", "login.keychain-db")
}

// usesKeychain is false when the backend selection rules the keychain out,
// e.g. CREATE_SPREADSHEET_KEYRING_BACKEND=file.
func usesKeychain(backend string) bool {
	allowed, err := allowedBackends(backend)
	if err != nil {
		return false
	}
	return len(allowed) == 0 || slices.Contains(allowed, keyring.KeychainBackend)
}

// EnsureKeychainAccess unlocks the login keychain before the credentials
// entry is written, so `auth credentials` does not fail with -25308 over SSH
// or after a screen lock.
func EnsureKeychainAccess(ctx context.Context, backend string) error {
	if !usesKeychain(backend) {
		return nil
	}
	path := loginKeychainPath()
	if path == "" {
		return errKeychainPathUnknown
	}
	if runSecurity(ctx, "", "show-keychain-info", path) == nil {
		return nil
	}

	if !stdinIsTerminal() {
		return fmt.Errorf("%w\n\nUnlock it with:\n  security unlock-keychain %s\nor store the credentials in the file backend (CREATE_SPREADSHEET_KEYRING_BACKEND=file)", errKeychainNoTTY, path)
	}

	fmt.Fprint(os.Stderr, "Login keychain is locked. macOS login password: ")
	password, err := readPassword()
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	// stdin keeps the password out of the process list
	if err := runSecurity(ctx, string(password)+"\n", "unlock-keychain", path); err != nil {
		return errKeychainUnlock
	}
	return nil
}
