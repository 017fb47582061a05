package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chartkit/pkg/render"
)

// Chart specs and data series are read from these extensions.
var (
	specExts = []string{"json", "toml"}
	dataExts = []string{"json", "toml", "csv"}
)

// completionCommand writes a shell completion script to stdout.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script that also completes chart spec and data
files by extension and the values of --format.

  $ source <(chartkit completion bash)
  $ chartkit completion zsh > "${fpath[1]}/_chartkit"
  $ chartkit completion fish | source`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(w, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}
			return fmt.Errorf("unknown shell %q", args[0])
		},
	}
}

// completeFiles completes the first positional argument as a chart spec and
// any later ones as data series.
func completeFiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return specExts, cobra.ShellCompDirectiveFilterFileExt
	}
	if cmd.Args != nil && cmd.Args(cmd, append(args[:len(args):len(args)], toComplete)) != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return dataExts, cobra.ShellCompDirectiveFilterFileExt
}

// completeFormats completes a comma-separated --format value, offering only
// formats not already listed.
func completeFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	prefix := ""
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix = toComplete[:i+1]
	}
	chosen := make(map[string]bool)
	for _, f := range strings.Split(prefix, ",") {
		chosen[strings.TrimSpace(f)] = true
	}
	var out []string
	for _, f := range render.Formats {
		if !chosen[string(f)] {
			out = append(out, prefix+string(f))
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}
