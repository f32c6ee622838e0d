package googleapi

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

func NewDrive(ctx context.Context, creds *google.Credentials) (*drive.Service, error) {
	slog.Debug("creating drive service", "project", creds.ProjectID)

	svc, err := drive.NewService(ctx, option.WithTokenSource(creds.TokenSource))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return svc, nil
}
