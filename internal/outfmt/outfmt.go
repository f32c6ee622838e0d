package outfmt

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strconv"
	"strings"
)

const jsonEnv = "CREATE_SPREADSHEET_JSON"

type Mode struct {
	JSON bool
}

type ctxKey struct{}

// FromEnv reads CREATE_SPREADSHEET_JSON (1/true/yes).
func FromEnv() Mode {
	v := strings.TrimSpace(os.Getenv(jsonEnv))
	if strings.EqualFold(v, "yes") {
		return Mode{JSON: true}
	}
	b, _ := strconv.ParseBool(v)
	return Mode{JSON: b}
}

func WithMode(ctx context.Context, mode Mode) context.Context {
	return context.WithValue(ctx, ctxKey{}, mode)
}

func FromContext(ctx context.Context) Mode {
	if ctx == nil {
		return Mode{}
	}
	if m, ok := ctx.Value(ctxKey{}).(Mode); ok {
		return m
	}
	return Mode{}
}

func IsJSON(ctx context.Context) bool {
	return FromContext(ctx).JSON
}

func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
