package googleauth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/oauth2/google"

	"github.com/triggerator/create-spreadsheet/internal/provision"
)

type Source string

const (
	SourceADC     Source = "adc"
	SourceKeyring Source = "keyring"
)

type Options struct {
	// Scopes defaults to the sheets + drive scopes.
	Scopes []string
	// Project is used when the credentials carry no project id.
	Project string
	// Stored returns a credentials JSON from the local credential cache.
	// Nil disables the fallback.
	Stored func() ([]byte, error)
}

type Resolved struct {
	Credentials *google.Credentials
	Source      Source
}

// ProjectID is empty when neither the credentials (project_id or
// quota_project_id) nor Options.Project name one.
func (r *Resolved) ProjectID() string {
	if r == nil || r.Credentials == nil {
		return ""
	}
	return r.Credentials.ProjectID
}

var (
	findDefaultCredentials = google.FindDefaultCredentials
	credentialsFromJSON    = google.CredentialsFromJSON
)

// Resolve finds credentials for the fixed provisioning scopes: application
// default credentials first, then the stored credentials JSON if enabled.
func Resolve(ctx context.Context, opts Options) (*Resolved, error) {
	scopes, err := scopesOrDefault(opts.Scopes)
	if err != nil {
		return nil, err
	}

	creds, adcErr := findDefaultCredentials(ctx, scopes...)
	if adcErr == nil {
		slog.Debug("using application default credentials", "project", creds.ProjectID)
		return finish(creds, SourceADC, creds.JSON, opts.Project), nil
	}
	if opts.Stored == nil {
		return nil, &provision.AuthenticationError{Source: string(SourceADC), Err: adcErr}
	}
	slog.Debug("application default credentials unavailable", "err", adcErr)

	data, err := opts.Stored()
	if err != nil {
		return nil, &provision.AuthenticationError{Err: errors.Join(adcErr, err)}
	}
	creds, err = credentialsFromJSON(ctx, data, scopes...)
	if err != nil {
		return nil, &provision.AuthenticationError{Source: string(SourceKeyring), Err: err}
	}
	slog.Debug("using stored credentials", "project", creds.ProjectID)
	return finish(creds, SourceKeyring, data, opts.Project), nil
}

// ParseJSON validates a credentials JSON before it is stored.
func ParseJSON(ctx context.Context, data []byte) (*google.Credentials, error) {
	scopes, err := scopesOrDefault(nil)
	if err != nil {
		return nil, err
	}
	return credentialsFromJSON(ctx, data, scopes...)
}

func scopesOrDefault(scopes []string) ([]string, error) {
	if len(scopes) > 0 {
		return scopes, nil
	}
	return ScopesForServices(AllServices())
}

// finish fills in the project id when the credentials carry none. User
// credentials from `gcloud auth application-default login` have no
// project_id, only the quota_project_id gcloud was configured with.
func finish(creds *google.Credentials, source Source, raw []byte, project string) *Resolved {
	if strings.TrimSpace(creds.ProjectID) == "" {
		creds.ProjectID = firstNonEmpty(quotaProject(raw), project)
	}
	return &Resolved{Credentials: creds, Source: source}
}

func quotaProject(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	var f struct {
		QuotaProjectID string `json:"quota_project_id"`
	}
	if err := json.Unmarshal(raw, &f); err != nil {
		return ""
	}
	return f.QuotaProjectID
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
