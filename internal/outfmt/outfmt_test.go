package outfmt

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestFromEnv(t *testing.T) {
	for _, tt := range []struct {
		val  string
		want bool
	}{
		{"", false},
		{"1", true},
		{"true", true},
		{"YES", true},
		{"0", false},
		{"nope", false},
	} {
		t.Setenv(jsonEnv, tt.val)
		if got := FromEnv().JSON; got != tt.want {
			t.Fatalf("%q: got %v, want %v", tt.val, got, tt.want)
		}
	}
}

func TestContextMode(t *testing.T) {
	if IsJSON(context.Background()) {
		t.Fatalf("expected text mode by default")
	}
	ctx := WithMode(context.Background(), Mode{JSON: true})
	if !IsJSON(ctx) {
		t.Fatalf("expected json mode")
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, map[string]any{"url": "https://x/?a=1&b=2"}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "a=1&b=2") {
		t.Fatalf("expected unescaped ampersand: %q", out)
	}
	if !strings.HasSuffix(out, "}\n") {
		t.Fatalf("expected trailing newline: %q", out)
	}
}
