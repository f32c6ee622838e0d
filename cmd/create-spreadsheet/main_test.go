package main

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"testing"
)

func TestMainHelpDoesNotExit(t *testing.T) {
	origArgs := os.Args
	defer func() { os.Args = origArgs }()

	os.Args = []string{"create-spreadsheet", "--help"}
	main()
}

func TestMainExitOnError(t *testing.T) {
	if os.Getenv("CREATE_SPREADSHEET_TEST_CHILD") == "1" {
		os.Args = []string{"create-spreadsheet", "nope-nope-nope"}
		main()
		return
	}

	cmd := exec.CommandContext(context.Background(), os.Args[0], "-test.run", "^TestMainExitOnError$")
	cmd.Env = append(os.Environ(), "CREATE_SPREADSHEET_TEST_CHILD=1")
	err := cmd.Run()
	if err == nil {
		t.Fatalf("expected exit error")
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		if ee.ExitCode() != 2 {
			t.Fatalf("exit=%d", ee.ExitCode())
		}
		return
	}
	t.Fatalf("unexpected err: %v", err)
}

func TestMainMissingUserExitsUsage(t *testing.T) {
	if os.Getenv("CREATE_SPREADSHEET_TEST_CHILD") == "1" {
		os.Args = []string{"create-spreadsheet"}
		main()
		return
	}

	cmd := exec.CommandContext(context.Background(), os.Args[0], "-test.run", "^TestMainMissingUserExitsUsage$")
	cmd.Env = append(os.Environ(), "CREATE_SPREADSHEET_TEST_CHILD=1")
	out, err := cmd.Output()
	var ee *exec.ExitError
	if !errors.As(err, &ee) || ee.ExitCode() != 2 {
		t.Fatalf("expected exit 2, got %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("stdout must stay empty on failure, got %q", out)
	}
}
