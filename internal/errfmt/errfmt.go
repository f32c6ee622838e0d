package errfmt

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/99designs/keyring"
	ggoogleapi "google.golang.org/api/googleapi"

	"github.com/triggerator/create-spreadsheet/internal/config"
	"github.com/triggerator/create-spreadsheet/internal/provision"
)

func Format(err error) string {
	if err == nil {
		return ""
	}

	var authErr *provision.AuthenticationError
	if errors.As(err, &authErr) {
		return fmt.Sprintf("No usable Google credentials: %s\nRun: gcloud auth application-default login (or set GOOGLE_APPLICATION_CREDENTIALS), or store a key with: %s auth credentials <file.json>", cause(authErr.Err), config.AppName)
	}

	var grantErr *provision.PermissionGrantError
	if errors.As(err, &grantErr) {
		return fmt.Sprintf("Sharing with %s failed: %s\nSpreadsheet %s was created but not shared; share or delete it manually.", grantErr.EmailAddress, cause(grantErr.Err), grantErr.SpreadsheetID)
	}

	var provErr *provision.ProvisioningError
	if errors.As(err, &provErr) {
		return "Creating spreadsheet failed: " + cause(provErr.Err)
	}

	var credErr *config.CredentialsMissingError
	if errors.As(err, &credErr) {
		return fmt.Sprintf("Cannot read credentials file %s: %v", credErr.Path, credErr.Cause)
	}

	if errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Sprintf("No credentials stored in keyring. Run: %s auth credentials <file.json>", config.AppName)
	}

	if errors.Is(err, os.ErrNotExist) {
		return err.Error()
	}

	return cause(err)
}

func cause(err error) string {
	var gerr *ggoogleapi.Error
	if errors.As(err, &gerr) {
		reason := ""
		if len(gerr.Errors) > 0 && gerr.Errors[0].Reason != "" {
			reason = gerr.Errors[0].Reason
		}
		msg := strings.TrimSpace(gerr.Message)

		if reason != "" {
			return fmt.Sprintf("Google API error (%d %s): %s", gerr.Code, reason, msg)
		}
		return fmt.Sprintf("Google API error (%d): %s", gerr.Code, msg)
	}
	return err.Error()
}
