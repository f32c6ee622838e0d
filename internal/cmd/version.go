package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/triggerator/create-spreadsheet/internal/outfmt"
)

// Set via -ldflags at release time.
var (
	version = "dev"
	commit  = ""
	date    = ""
)

func VersionString() string {
	v := strings.TrimSpace(version)
	if v == "" {
		v = "dev"
	}
	var extra []string
	if c := strings.TrimSpace(commit); c != "" {
		extra = append(extra, c)
	}
	if d := strings.TrimSpace(date); d != "" {
		extra = append(extra, d)
	}
	if len(extra) == 0 {
		return v
	}
	return fmt.Sprintf("%s (%s)", v, strings.Join(extra, " "))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if outfmt.IsJSON(cmd.Context()) {
				return outfmt.WriteJSON(os.Stdout, map[string]any{
					"version": strings.TrimSpace(version),
					"commit":  strings.TrimSpace(commit),
					"date":    strings.TrimSpace(date),
				})
			}
			fmt.Fprintln(os.Stdout, VersionString())
			return nil
		},
	}
}
