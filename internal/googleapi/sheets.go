package googleapi

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

func NewSheets(ctx context.Context, creds *google.Credentials) (*sheets.Service, error) {
	slog.Debug("creating sheets service", "project", creds.ProjectID)

	svc, err := sheets.NewService(ctx, option.WithTokenSource(creds.TokenSource))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}
