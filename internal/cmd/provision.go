package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/triggerator/create-spreadsheet/internal/config"
	"github.com/triggerator/create-spreadsheet/internal/googleapi"
	"github.com/triggerator/create-spreadsheet/internal/googleauth"
	"github.com/triggerator/create-spreadsheet/internal/outfmt"
	"github.com/triggerator/create-spreadsheet/internal/provision"
	"github.com/triggerator/create-spreadsheet/internal/secrets"
	"github.com/triggerator/create-spreadsheet/internal/ui"
)

var (
	readConfig         = config.ReadConfig
	resolveCredentials = googleauth.Resolve
	newSheetsService   = googleapi.NewSheets
	newDriveService    = googleapi.NewDrive
	openStore          = secrets.OpenDefault
	openBrowser        = browser.OpenURL
)

type provisionFlags struct {
	User    string
	Title   string
	Open    bool
	Timeout time.Duration
}

func addProvisionFlags(cmd *cobra.Command, pf *provisionFlags) {
	cmd.Flags().StringVarP(&pf.User, "user", "u", "", "Google user account (email) to share the created spreadsheet with")
	cmd.Flags().StringVar(&pf.Title, "title", "", fmt.Sprintf("Spreadsheet title; {project} expands to the project id (default %q)", provision.DefaultTitleTemplate))
	cmd.Flags().BoolVar(&pf.Open, "open", false, "Open the spreadsheet in a browser after sharing")
	cmd.Flags().DurationVar(&pf.Timeout, "timeout", 0, "Abort the run after this long (0 = no limit)")
	_ = cmd.MarkFlagRequired("user")
}

func runProvision(cmd *cobra.Command, pf provisionFlags) error {
	ctx := cmd.Context()
	u := ui.FromContext(ctx)

	email := strings.TrimSpace(pf.User)
	if email == "" {
		return usage("empty --user")
	}

	if pf.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, pf.Timeout)
		defer cancel()
	}

	cfg, err := readConfig()
	if err != nil {
		return err
	}

	resolved, err := resolveCredentials(ctx, credentialOptions(cfg))
	if err != nil {
		return err
	}

	sheetsSvc, err := newSheetsService(ctx, resolved.Credentials)
	if err != nil {
		return err
	}
	driveSvc, err := newDriveService(ctx, resolved.Credentials)
	if err != nil {
		return err
	}

	p := provision.New(googleapi.NewWorkspace(sheetsSvc, driveSvc),
		provision.WithTitleTemplate(firstNonEmpty(pf.Title, os.Getenv(titleEnv), cfg.TitleTemplate)),
		provision.WithProjectID(resolved.ProjectID()),
	)
	res, err := p.Provision(ctx, email)
	if err != nil {
		return err
	}

	if outfmt.IsJSON(ctx) {
		if err := outfmt.WriteJSON(os.Stdout, res); err != nil {
			return err
		}
	} else {
		u.Out().Println(res.SpreadsheetID)
	}

	if pf.Open {
		openSpreadsheet(u, res)
	}
	return nil
}

func credentialOptions(cfg config.File) googleauth.Options {
	opts := googleauth.Options{
		Project: firstNonEmpty(os.Getenv(projectEnv), cfg.Project),
	}
	if cfg.KeyringCredentials || envBool(keyringCredentialsEnv) {
		backend := cfg.KeyringBackend
		opts.Stored = func() ([]byte, error) {
			store, err := openStore(backend)
			if err != nil {
				return nil, err
			}
			creds, err := store.GetCredentials()
			if err != nil {
				return nil, err
			}
			return creds.JSON, nil
		}
	}
	return opts
}

func spreadsheetURL(res provision.Result) string {
	if res.SpreadsheetURL != "" {
		return res.SpreadsheetURL
	}
	return "https://docs.google.com/spreadsheets/d/" + res.SpreadsheetID + "/edit"
}

// openSpreadsheet only warns on failure; the spreadsheet is already shared.
func openSpreadsheet(u *ui.UI, res provision.Result) {
	// keep stdout to the id alone
	browser.Stdout = os.Stderr

	if err := openBrowser(spreadsheetURL(res)); err != nil {
		u.Err().Warn(fmt.Sprintf("Could not open browser: %v", err))
	}
}
