//go:build !darwin

package secrets

import "context"

// IsKeychainLockedError reports false outside macOS.
func IsKeychainLockedError(_ string) bool {
	return false
}

// EnsureKeychainAccess is a no-op outside macOS.
func EnsureKeychainAccess(context.Context, string) error {
	return nil
}
