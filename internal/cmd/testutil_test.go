package cmd

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/triggerator/create-spreadsheet/internal/config"
	"github.com/triggerator/create-spreadsheet/internal/googleauth"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	return capture(t, &os.Stdout, fn)
}

func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	return capture(t, &os.Stderr, fn)
}

func capture(t *testing.T, target **os.File, fn func()) string {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	orig := *target
	*target = w
	defer func() { *target = orig }()

	done := make(chan string)
	go func() {
		b, _ := io.ReadAll(r)
		done <- string(b)
	}()

	fn()
	_ = w.Close()
	return <-done
}

// fakeGoogle serves the Sheets create and Drive permission endpoints and
// records what it was sent.
type fakeGoogle struct {
	mu sync.Mutex

	createStatus int
	createID     string
	grantStatus  int

	creates     int
	grants      int
	createBody  map[string]any
	grantBody   map[string]any
	grantQuery  url.Values
	grantFileID string
}

func (f *fakeGoogle) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/drive/v3")
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/v4/spreadsheets":
		f.creates++
		_ = json.NewDecoder(r.Body).Decode(&f.createBody)
		if f.createStatus != 0 {
			writeAPIError(w, f.createStatus, "rateLimitExceeded", "Quota exceeded")
			return
		}
		id := f.createID
		if id == "" {
			id = "SHEET123"
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"spreadsheetId":  id,
			"spreadsheetUrl": "https://docs.google.com/spreadsheets/d/" + id + "/edit",
		})
	case r.Method == http.MethodPost && strings.HasPrefix(path, "/files/") && strings.HasSuffix(path, "/permissions"):
		f.grants++
		f.grantFileID = strings.TrimSuffix(strings.TrimPrefix(path, "/files/"), "/permissions")
		f.grantQuery = r.URL.Query()
		_ = json.NewDecoder(r.Body).Decode(&f.grantBody)
		if f.grantStatus != 0 {
			writeAPIError(w, f.grantStatus, "invalidSharingRequest", "Bad Request")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "perm1"})
	default:
		http.NotFound(w, r)
	}
}

func writeAPIError(w http.ResponseWriter, code int, reason, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": msg,
			"errors":  []map[string]any{{"reason": reason, "message": msg}},
		},
	})
}

// stubGoogle points the service seams at fake and resolves credentials for
// project "proj" without touching the environment.
func stubGoogle(t *testing.T, fake *fakeGoogle) {
	t.Helper()

	origRead := readConfig
	origResolve := resolveCredentials
	origSheets := newSheetsService
	origDrive := newDriveService
	t.Cleanup(func() {
		readConfig = origRead
		resolveCredentials = origResolve
		newSheetsService = origSheets
		newDriveService = origDrive
	})
	t.Setenv(titleEnv, "")
	t.Setenv(projectEnv, "")

	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	sheetsSvc, err := sheets.NewService(context.Background(),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	if err != nil {
		t.Fatalf("sheets.NewService: %v", err)
	}
	driveSvc, err := drive.NewService(context.Background(),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	if err != nil {
		t.Fatalf("drive.NewService: %v", err)
	}

	readConfig = func() (config.File, error) { return config.File{}, nil }
	resolveCredentials = func(context.Context, googleauth.Options) (*googleauth.Resolved, error) {
		return &googleauth.Resolved{
			Credentials: &google.Credentials{ProjectID: "proj"},
			Source:      googleauth.SourceADC,
		}, nil
	}
	newSheetsService = func(context.Context, *google.Credentials) (*sheets.Service, error) { return sheetsSvc, nil }
	newDriveService = func(context.Context, *google.Credentials) (*drive.Service, error) { return driveSvc, nil }
}
