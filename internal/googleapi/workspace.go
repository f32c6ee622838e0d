package googleapi

import (
	"context"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/sheets/v4"

	"github.com/triggerator/create-spreadsheet/internal/provision"
)

var _ provision.Backend = (*Workspace)(nil)

// Workspace creates spreadsheets through Sheets and shares them through Drive.
type Workspace struct {
	sheets *sheets.Service
	drive  *drive.Service
}

func NewWorkspace(sheetsSvc *sheets.Service, driveSvc *drive.Service) *Workspace {
	return &Workspace{sheets: sheetsSvc, drive: driveSvc}
}

func (w *Workspace) CreateDocument(ctx context.Context, doc provision.Document) (provision.Created, error) {
	req := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: doc.Title},
	}
	for _, title := range doc.Sheets {
		req.Sheets = append(req.Sheets, &sheets.Sheet{
			Properties: &sheets.SheetProperties{Title: title},
		})
	}

	resp, err := w.sheets.Spreadsheets.Create(req).
		Fields("spreadsheetId", "spreadsheetUrl").
		Context(ctx).
		Do()
	if err != nil {
		return provision.Created{}, err
	}
	return provision.Created{ID: resp.SpreadsheetId, URL: resp.SpreadsheetUrl}, nil
}

func (w *Workspace) GrantPermission(ctx context.Context, grant provision.Grant) (string, error) {
	perm, err := w.drive.Permissions.Create(grant.DocumentID, &drive.Permission{
		Type:         grant.Type,
		Role:         grant.Role,
		EmailAddress: grant.EmailAddress,
	}).
		SendNotificationEmail(grant.SendNotificationEmail).
		SupportsAllDrives(true).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	return perm.Id, nil
}
