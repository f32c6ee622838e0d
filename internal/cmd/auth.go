package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/99designs/keyring"
	"github.com/spf13/cobra"

	"github.com/triggerator/create-spreadsheet/internal/config"
	"github.com/triggerator/create-spreadsheet/internal/googleauth"
	"github.com/triggerator/create-spreadsheet/internal/outfmt"
	"github.com/triggerator/create-spreadsheet/internal/secrets"
	"github.com/triggerator/create-spreadsheet/internal/ui"
)

var (
	parseCredentialsJSON    = googleauth.ParseJSON
	ensureKeychainAccess    = secrets.EnsureKeychainAccess
	errEmptyCredentialsPath = errors.New("empty credentials path")
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Inspect credentials and manage the stored credentials fallback",
	}
	cmd.AddCommand(newAuthCredentialsCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthClearCmd())
	return cmd
}

func newAuthCredentialsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "credentials <credentials.json>",
		Short: "Store a service account or authorized_user JSON in the keyring",
		Long: strings.TrimSpace(fmt.Sprintf(`
Stores a Google credentials JSON in the OS keyring. It is used only when
application default credentials cannot be found and keyring_credentials is
enabled in the config file (or %s=1).`, keyringCredentialsEnv)),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			u := ui.FromContext(ctx)

			path := strings.TrimSpace(args[0])
			if path == "" {
				return &ExitError{Code: 2, Err: errEmptyCredentialsPath}
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return &config.CredentialsMissingError{Path: path, Cause: err}
			}
			if _, err := parseCredentialsJSON(ctx, data); err != nil {
				return fmt.Errorf("invalid credentials JSON %s: %w", path, err)
			}

			cfg, err := readConfig()
			if err != nil {
				return err
			}
			if err := ensureKeychainAccess(ctx, cfg.KeyringBackend); err != nil {
				return err
			}
			store, err := openStore(cfg.KeyringBackend)
			if err != nil {
				return err
			}
			if err := store.SetCredentials(secrets.Credentials{JSON: data}); err != nil {
				if secrets.IsKeychainLockedError(err.Error()) {
					return fmt.Errorf("keychain is locked (unlock it or set CREATE_SPREADSHEET_KEYRING_BACKEND=file): %w", err)
				}
				return err
			}
			stored, err := store.GetCredentials()
			if err != nil {
				return err
			}

			if outfmt.IsJSON(ctx) {
				return outfmt.WriteJSON(os.Stdout, map[string]any{
					"stored":      true,
					"credentials": stored,
				})
			}
			u.Err().Success("Stored credentials in keyring")
			u.Out().Printf("stored\ttrue")
			u.Out().Printf("type\t%s", stored.Type)
			if stored.ProjectID != "" {
				u.Out().Printf("project\t%s", stored.ProjectID)
			}
			if stored.ClientEmail != "" {
				u.Out().Printf("client_email\t%s", stored.ClientEmail)
			}
			if !cfg.KeyringCredentials && !envBool(keyringCredentialsEnv) {
				u.Err().Warn(fmt.Sprintf("Stored credentials are ignored until keyring_credentials is enabled in config (or %s=1)", keyringCredentialsEnv))
			}
			return nil
		},
	}
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which credentials a run would use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			u := ui.FromContext(ctx)

			cfg, err := readConfig()
			if err != nil {
				return err
			}
			resolved, err := resolveCredentials(ctx, credentialOptions(cfg))
			if err != nil {
				return err
			}
			scopes, err := googleauth.ScopesForServices(googleauth.AllServices())
			if err != nil {
				return err
			}

			if outfmt.IsJSON(ctx) {
				return outfmt.WriteJSON(os.Stdout, map[string]any{
					"source":  resolved.Source,
					"project": resolved.ProjectID(),
					"scopes":  scopes,
				})
			}
			u.Out().Printf("source\t%s", resolved.Source)
			u.Out().Printf("project\t%s", resolved.ProjectID())
			u.Out().Printf("scopes\t%s", strings.Join(scopes, ","))
			return nil
		},
	}
}

func newAuthClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "clear",
		Short:   "Remove the stored credentials from the keyring",
		Aliases: []string{"remove", "rm"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			u := ui.FromContext(ctx)

			cfg, err := readConfig()
			if err != nil {
				return err
			}
			store, err := openStore(cfg.KeyringBackend)
			if err != nil {
				return err
			}
			deleted := true
			if err := store.DeleteCredentials(); err != nil {
				if !errors.Is(err, keyring.ErrKeyNotFound) {
					return err
				}
				deleted = false
			}

			if outfmt.IsJSON(ctx) {
				return outfmt.WriteJSON(os.Stdout, map[string]any{"deleted": deleted})
			}
			if !deleted {
				u.Err().Println("No stored credentials")
				return nil
			}
			u.Out().Printf("deleted\ttrue")
			return nil
		},
	}
}
