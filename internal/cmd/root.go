package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/triggerator/create-spreadsheet/internal/config"
	"github.com/triggerator/create-spreadsheet/internal/errfmt"
	"github.com/triggerator/create-spreadsheet/internal/outfmt"
	"github.com/triggerator/create-spreadsheet/internal/ui"
)

const (
	colorEnv              = "CREATE_SPREADSHEET_COLOR"
	titleEnv              = "CREATE_SPREADSHEET_TITLE"
	keyringCredentialsEnv = "CREATE_SPREADSHEET_KEYRING_CREDENTIALS"
	projectEnv            = "GOOGLE_CLOUD_PROJECT"
)

type rootFlags struct {
	Color   string
	JSON    bool
	Verbose bool
}

func Execute(args []string) error {
	if err := loadDotEnv(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, errfmt.Format(err))
		return err
	}

	flags := rootFlags{
		Color: envOr(colorEnv, "auto"),
		JSON:  outfmt.FromEnv().JSON,
	}
	var pf provisionFlags

	// Avoid dangerous prefix-matching for commands (future-proofing).
	cobra.EnablePrefixMatching = false

	if hasExactArg(args, "--version") {
		fmt.Fprintln(os.Stdout, VersionString())
		return nil
	}

	root := &cobra.Command{
		Use:           config.AppName + " --user <email>",
		Short:         "Create a Google Sheets spreadsheet and share it with a user",
		Long:          rootLong(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Example: strings.TrimSpace(`
  # Application default credentials
  gcloud auth application-default login
  create-spreadsheet --user you@example.com

  # Service account key
  GOOGLE_APPLICATION_CREDENTIALS=key.json create-spreadsheet -u you@example.com

  # Static title, machine-readable output
  create-spreadsheet -u you@example.com --title "Master doc" --json | jq -r .spreadsheetId
`),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logLevel := slog.LevelWarn
			if flags.Verbose {
				logLevel = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: logLevel,
			})))

			cmd.SetContext(outfmt.WithMode(cmd.Context(), outfmt.Mode{JSON: flags.JSON}))

			u, err := ui.New(ui.Options{
				Stdout: os.Stdout,
				Stderr: os.Stderr,
				Color: func() string {
					if flags.JSON {
						return "never"
					}
					return flags.Color
				}(),
			})
			if err != nil {
				return err
			}
			cmd.SetContext(ui.WithUI(cmd.Context(), u))
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProvision(cmd, pf)
		},
	}

	root.SetArgs(args)
	root.PersistentFlags().StringVar(&flags.Color, "color", flags.Color, "Color output: auto|always|never")
	root.PersistentFlags().BoolVar(&flags.JSON, "json", flags.JSON, "Output JSON to stdout (best for scripting)")
	root.PersistentFlags().BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	addProvisionFlags(root, &pf)

	root.AddCommand(newAuthCmd())
	root.AddCommand(newVersionCmd())

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		// pflag already includes helpful context ("unknown flag", "invalid argument", ...).
		return newUsageError(err)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}

	if ExitCode(err) == 1 && isUsageError(err) {
		err = &ExitError{Code: 2, Err: err}
	}

	if u := ui.FromContext(root.Context()); u != nil {
		u.Err().Error(errfmt.Format(err))
		return err
	}
	_, _ = fmt.Fprintln(os.Stderr, errfmt.Format(err))
	return err
}

func rootLong() string {
	path, err := config.ConfigPath()
	if err != nil {
		path = "(unknown: " + err.Error() + ")"
	}
	return strings.TrimSpace(fmt.Sprintf(`
Creates a new spreadsheet with a single sheet named "Main" and grants the
given user writer access without sending a notification email. The new
spreadsheet id is printed to stdout.

Credentials come from Google application default credentials
(GOOGLE_APPLICATION_CREDENTIALS, gcloud ADC, metadata server). A .env file in
the working directory is loaded first.

Config file: %s (JSON5; title_template, project, keyring_backend, keyring_credentials)
Stored credentials fallback uses the OS keyring; keyring backend: %s`, path, envOr("CREATE_SPREADSHEET_KEYRING_BACKEND", "auto")))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func hasExactArg(args []string, target string) bool {
	for _, a := range args {
		if a == target {
			return true
		}
	}
	return false
}

func isUsageError(err error) bool {
	var uiErr *ui.ParseError
	if errors.As(err, &uiErr) {
		return true
	}
	msg := strings.TrimSpace(err.Error())
	switch {
	case strings.HasPrefix(msg, "accepts "),
		strings.HasPrefix(msg, "requires "),
		strings.HasPrefix(msg, "required flag"),
		strings.HasPrefix(msg, "unknown command"),
		strings.HasPrefix(msg, "invalid argument"),
		strings.HasPrefix(msg, "unknown flag"),
		strings.HasPrefix(msg, "unknown shorthand flag"):
		return true
	default:
		return false
	}
}
