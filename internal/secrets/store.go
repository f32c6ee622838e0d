package secrets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/99designs/keyring"
	"golang.org/x/term"

	"github.com/triggerator/create-spreadsheet/internal/config"
)

const (
	keyringPasswordEnv = "CREATE_SPREADSHEET_KEYRING_PASSWORD"
	keyringBackendEnv  = "CREATE_SPREADSHEET_KEYRING_BACKEND"

	credentialsKey = "credentials:default"
)

var (
	errInvalidKeyringBackend = errors.New("invalid keyring backend")
	errMissingCredentials    = errors.New("missing credentials JSON")
	errNoTTY                 = errors.New("no TTY available for keyring password prompt")
)

type Store interface {
	SetCredentials(c Credentials) error
	GetCredentials() (Credentials, error)
	DeleteCredentials() error
}

type KeyringStore struct {
	ring keyring.Keyring
}

// Credentials is a Google credentials JSON (service_account or
// authorized_user) plus the metadata extracted from it.
type Credentials struct {
	Type        string    `json:"type,omitempty"`
	ProjectID   string    `json:"project_id,omitempty"`
	ClientEmail string    `json:"client_email,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	JSON        []byte    `json:"-"`
}

type storedCredentials struct {
	JSON        json.RawMessage `json:"json"`
	Type        string          `json:"type,omitempty"`
	ProjectID   string          `json:"project_id,omitempty"`
	ClientEmail string          `json:"client_email,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func NewKeyringStore(ring keyring.Keyring) *KeyringStore {
	return &KeyringStore{ring: ring}
}

// OpenDefault opens the OS keyring. backend comes from the config file and is
// overridden by CREATE_SPREADSHEET_KEYRING_BACKEND.
func OpenDefault(backend string) (Store, error) {
	allowed, err := allowedBackends(backend)
	if err != nil {
		return nil, err
	}

	// The file backend needs both a directory and a password prompt; it is the
	// fallback on Linux/WSL/containers where no secret service is running.
	keyringDir, err := config.EnsureKeyringDir()
	if err != nil {
		return nil, err
	}

	ring, err := keyring.Open(keyring.Config{
		ServiceName:      config.AppName,
		AllowedBackends:  allowed,
		FileDir:          keyringDir,
		FilePasswordFunc: fileKeyringPasswordFunc(),
	})
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	return &KeyringStore{ring: ring}, nil
}

func (s *KeyringStore) SetCredentials(c Credentials) error {
	if len(strings.TrimSpace(string(c.JSON))) == 0 {
		return errMissingCredentials
	}

	var meta struct {
		Type        string `json:"type"`
		ProjectID   string `json:"project_id"`
		QuotaProjID string `json:"quota_project_id"`
		ClientEmail string `json:"client_email"`
	}
	if err := json.Unmarshal(c.JSON, &meta); err != nil {
		return fmt.Errorf("parse credentials JSON: %w", err)
	}
	if c.Type == "" {
		c.Type = meta.Type
	}
	if c.ProjectID == "" {
		c.ProjectID = meta.ProjectID
	}
	if c.ProjectID == "" {
		c.ProjectID = meta.QuotaProjID
	}
	if c.ClientEmail == "" {
		c.ClientEmail = meta.ClientEmail
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(storedCredentials{
		JSON:        json.RawMessage(c.JSON),
		Type:        c.Type,
		ProjectID:   c.ProjectID,
		ClientEmail: c.ClientEmail,
		CreatedAt:   c.CreatedAt,
	})
	if err != nil {
		return err
	}

	return s.ring.Set(keyring.Item{
		Key:         credentialsKey,
		Data:        payload,
		Label:       config.AppName + " credentials",
		Description: "Google credentials JSON",
	})
}

func (s *KeyringStore) GetCredentials() (Credentials, error) {
	it, err := s.ring.Get(credentialsKey)
	if err != nil {
		return Credentials{}, err
	}
	var st storedCredentials
	if err := json.Unmarshal(it.Data, &st); err != nil {
		return Credentials{}, fmt.Errorf("decode stored credentials: %w", err)
	}
	if len(st.JSON) == 0 {
		return Credentials{}, errMissingCredentials
	}
	return Credentials{
		Type:        st.Type,
		ProjectID:   st.ProjectID,
		ClientEmail: st.ClientEmail,
		CreatedAt:   st.CreatedAt,
		JSON:        []byte(st.JSON),
	}, nil
}

// DeleteCredentials returns keyring.ErrKeyNotFound when nothing is stored;
// backends disagree on what Remove reports for a missing key.
func (s *KeyringStore) DeleteCredentials() error {
	if _, err := s.ring.Get(credentialsKey); err != nil {
		return err
	}
	return s.ring.Remove(credentialsKey)
}

func allowedBackends(configured string) ([]keyring.BackendType, error) {
	if v := strings.TrimSpace(os.Getenv(keyringBackendEnv)); v != "" {
		return parseBackend(v)
	}
	return parseBackend(configured)
}

func parseBackend(v string) ([]keyring.BackendType, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "auto":
		return nil, nil
	case "keychain":
		return []keyring.BackendType{keyring.KeychainBackend}, nil
	case "file":
		return []keyring.BackendType{keyring.FileBackend}, nil
	case "secret-service":
		return []keyring.BackendType{keyring.SecretServiceBackend}, nil
	case "kwallet":
		return []keyring.BackendType{keyring.KWalletBackend}, nil
	case "wincred":
		return []keyring.BackendType{keyring.WinCredBackend}, nil
	case "pass":
		return []keyring.BackendType{keyring.PassBackend}, nil
	default:
		return nil, fmt.Errorf("%w: %q (expected auto|keychain|file|secret-service|kwallet|wincred|pass)", errInvalidKeyringBackend, v)
	}
}

func fileKeyringPasswordFunc() keyring.PromptFunc {
	return fileKeyringPasswordFuncFrom(os.Getenv(keyringPasswordEnv), term.IsTerminal(int(os.Stdin.Fd())))
}

func fileKeyringPasswordFuncFrom(password string, isTTY bool) keyring.PromptFunc {
	if password != "" {
		return keyring.FixedStringPrompt(password)
	}
	if isTTY {
		return keyring.TerminalPrompt
	}
	return func(string) (string, error) {
		return "", fmt.Errorf("%w; set %s", errNoTTY, keyringPasswordEnv)
	}
}
