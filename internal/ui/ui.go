package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
)

type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	// Color is auto, always or never.
	Color string
}

type ParseError struct {
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid --color %q (expected auto|always|never)", e.Value)
}

type UI struct {
	out *Printer
	err *Printer
}

// Printer writes whole lines, colored according to its profile.
type Printer struct {
	o *termenv.Output
}

func New(opts Options) (*UI, error) {
	color := strings.ToLower(strings.TrimSpace(opts.Color))
	if color == "" {
		color = "auto"
	}
	switch color {
	case "auto", "always", "never":
	default:
		return nil, &ParseError{Value: opts.Color}
	}

	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	return &UI{
		out: newPrinter(stdout, color),
		err: newPrinter(stderr, color),
	}, nil
}

func newPrinter(w io.Writer, color string) *Printer {
	switch color {
	case "never":
		return &Printer{o: termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))}
	case "always":
		return &Printer{o: termenv.NewOutput(w, termenv.WithProfile(termenv.ANSI))}
	default:
		if os.Getenv("NO_COLOR") != "" {
			return &Printer{o: termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))}
		}
		return &Printer{o: termenv.NewOutput(w)}
	}
}

func (u *UI) Out() *Printer { return u.out }
func (u *UI) Err() *Printer { return u.err }

func (p *Printer) Println(msg string) {
	_, _ = fmt.Fprintln(p.o, msg)
}

func (p *Printer) Printf(format string, args ...any) {
	p.Println(fmt.Sprintf(format, args...))
}

func (p *Printer) Error(msg string) {
	p.Println(p.o.String(msg).Foreground(p.o.Color("1")).String())
}

func (p *Printer) Warn(msg string) {
	p.Println(p.o.String(msg).Foreground(p.o.Color("3")).String())
}

func (p *Printer) Success(msg string) {
	p.Println(p.o.String(msg).Foreground(p.o.Color("2")).String())
}

type ctxKey struct{}

func WithUI(ctx context.Context, u *UI) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

func FromContext(ctx context.Context) *UI {
	if ctx == nil {
		return nil
	}
	u, _ := ctx.Value(ctxKey{}).(*UI)
	return u
}
