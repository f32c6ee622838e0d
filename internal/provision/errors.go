package provision

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyEmail      = errors.New("empty target email")
	errNoSpreadsheetID = errors.New("response has no spreadsheetId")
	errProjectUnknown  = errors.New("title template references {project} but no project id is known (set GOOGLE_CLOUD_PROJECT or use a static --title)")
)

// AuthenticationError means no usable credentials could be resolved.
type AuthenticationError struct {
	Source string
	Err    error
}

func (e *AuthenticationError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("resolve credentials (%s): %v", e.Source, e.Err)
	}
	return fmt.Sprintf("resolve credentials: %v", e.Err)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// ProvisioningError means the spreadsheet was not created, or the create
// response was unusable. No permission call has been made.
type ProvisioningError struct {
	Title string
	Err   error
}

func (e *ProvisioningError) Error() string {
	if e.Title == "" {
		return fmt.Sprintf("create spreadsheet: %v", e.Err)
	}
	return fmt.Sprintf("create spreadsheet %q: %v", e.Title, e.Err)
}

func (e *ProvisioningError) Unwrap() error {
	return e.Err
}

// PermissionGrantError means the spreadsheet exists but could not be shared.
// It is not rolled back; SpreadsheetID names the orphan.
type PermissionGrantError struct {
	SpreadsheetID string
	EmailAddress  string
	Err           error
}

func (e *PermissionGrantError) Error() string {
	return fmt.Sprintf("grant writer access on %s to %s: %v", e.SpreadsheetID, e.EmailAddress, e.Err)
}

func (e *PermissionGrantError) Unwrap() error {
	return e.Err
}
