//go:build integration

package integration

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/triggerator/create-spreadsheet/internal/googleapi"
	"github.com/triggerator/create-spreadsheet/internal/googleauth"
	"github.com/triggerator/create-spreadsheet/internal/provision"
)

func integrationCredentials(ctx context.Context, t *testing.T) *googleauth.Resolved {
	t.Helper()

	resolved, err := googleauth.Resolve(ctx, googleauth.Options{
		Project: os.Getenv("GOOGLE_CLOUD_PROJECT"),
	})
	if err != nil {
		t.Skipf("application default credentials unavailable (run `gcloud auth application-default login`): %v", err)
	}
	return resolved
}

func TestCredentialsSmoke(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	resolved := integrationCredentials(ctx, t)
	tok, err := resolved.Credentials.TokenSource.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if !tok.Valid() {
		t.Fatalf("expected a valid access token")
	}
}

func TestDriveSmoke(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	resolved := integrationCredentials(ctx, t)
	svc, err := googleapi.NewDrive(ctx, resolved.Credentials)
	if err != nil {
		t.Fatalf("NewDrive: %v", err)
	}
	_, err = svc.Files.List().
		Q("trashed = false").
		PageSize(1).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Fields("files(id)").
		Context(ctx).
		Do()
	if err != nil {
		t.Fatalf("Drive list: %v", err)
	}
}

// TestProvisionLive creates a real spreadsheet; it only runs when
// CREATE_SPREADSHEET_IT_USER names the account to share it with.
func TestProvisionLive(t *testing.T) {
	user := strings.TrimSpace(os.Getenv("CREATE_SPREADSHEET_IT_USER"))
	if user == "" {
		t.Skip("set CREATE_SPREADSHEET_IT_USER to run a live provisioning")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	resolved := integrationCredentials(ctx, t)
	sheetsSvc, err := googleapi.NewSheets(ctx, resolved.Credentials)
	if err != nil {
		t.Fatalf("NewSheets: %v", err)
	}
	driveSvc, err := googleapi.NewDrive(ctx, resolved.Credentials)
	if err != nil {
		t.Fatalf("NewDrive: %v", err)
	}

	p := provision.New(googleapi.NewWorkspace(sheetsSvc, driveSvc),
		provision.WithTitleTemplate("[it] create-spreadsheet "+time.Now().UTC().Format(time.RFC3339)),
	)
	res, err := p.Provision(ctx, user)
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if res.SpreadsheetID == "" || res.PermissionID == "" {
		t.Fatalf("unexpected result: %#v", res)
	}
	t.Cleanup(func() {
		if err := driveSvc.Files.Delete(res.SpreadsheetID).SupportsAllDrives(true).Do(); err != nil {
			t.Logf("cleanup %s: %v", res.SpreadsheetID, err)
		}
	})

	got, err := sheetsSvc.Spreadsheets.Get(res.SpreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		t.Fatalf("Spreadsheets.Get: %v", err)
	}
	if len(got.Sheets) != 1 || got.Sheets[0].Properties.Title != provision.MainSheet {
		t.Fatalf("unexpected sheets: %#v", got.Sheets)
	}
}
