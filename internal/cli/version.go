package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chartkit/pkg/buildinfo"
	"github.com/matzehuels/chartkit/pkg/layout"
	"github.com/matzehuels/chartkit/pkg/render"
)

// SetVersion overrides the stamped build information shown by --version and
// the version command. Empty values keep the current ones.
func SetVersion(v, c, d string) {
	if v != "" {
		buildinfo.Version = v
	}
	if c != "" {
		buildinfo.Commit = c
	}
	if d != "" {
		buildinfo.Date = d
	}
}

// versionCommand prints the build and what this build can draw.
func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information and supported chart kinds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := buildinfo.Get()
			kinds := make([]string, len(layout.Kinds))
			for i, k := range layout.Kinds {
				kinds[i] = string(k)
			}
			formats := make([]string, len(render.Formats))
			for i, f := range render.Formats {
				formats[i] = string(f)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, appName+" "+info.Version)
			for _, kv := range [][2]string{
				{"commit", info.ShortCommit()},
				{"built", info.Date},
				{"go", info.GoVersion},
				{"kinds", strings.Join(kinds, ", ")},
				{"formats", strings.Join(formats, ", ")},
			} {
				fmt.Fprintf(w, "%-9s%s\n", kv[0]+":", kv[1])
			}
			return nil
		},
	}
}
