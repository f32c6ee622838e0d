package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yosuke-furukawa/json5/encoding/json5"
)

const AppName = "create-spreadsheet"

// File is the on-disk config. Unknown keys are ignored.
type File struct {
	TitleTemplate      string `json:"title_template,omitempty"`
	Project            string `json:"project,omitempty"`
	KeyringBackend     string `json:"keyring_backend,omitempty"`
	KeyringCredentials bool   `json:"keyring_credentials,omitempty"`
}

// CredentialsMissingError is returned when a credentials file handed to
// `auth credentials` cannot be read.
type CredentialsMissingError struct {
	Path  string
	Cause error
}

func (e *CredentialsMissingError) Error() string {
	return fmt.Sprintf("credentials file %s: %v", e.Path, e.Cause)
}

func (e *CredentialsMissingError) Unwrap() error {
	return e.Cause
}

func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureKeyringDir creates the directory used by the file keyring backend.
func EnsureKeyringDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	keyringDir := filepath.Join(dir, "keyring")
	if err := os.MkdirAll(keyringDir, 0o700); err != nil {
		return "", fmt.Errorf("create keyring dir: %w", err)
	}
	return keyringDir, nil
}

// ReadConfig loads the JSON5 config file. A missing file yields an empty config.
func ReadConfig() (File, error) {
	path, err := ConfigPath()
	if err != nil {
		return File{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return File{}, nil
		}
		return File{}, fmt.Errorf("read config: %w", err)
	}

	var cfg File
	if err := json5.Unmarshal(data, &cfg); err != nil {
		return File{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
