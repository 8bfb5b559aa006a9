package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/planboard/internal/config"
	"github.com/matzehuels/planboard/pkg/pipeline"
	"github.com/matzehuels/planboard/pkg/render/sink"
	"github.com/matzehuels/planboard/pkg/timeline"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for planboard.

Besides commands and item files, the scripts complete granularities,
themes, tie-break modes, output formats (comma-separated for render) and
the serve cache and source kinds.

  $ source <(planboard completion bash)
  $ planboard completion zsh > "${fpath[1]}/_planboard"
  $ planboard completion fish > ~/.config/fish/completions/planboard.fish
  PS> planboard completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// =============================================================================
// Flag Value Completion
// =============================================================================

// renderFormatOrder is the order formats are offered in.
var renderFormatOrder = []string{pipeline.FormatSVG, pipeline.FormatPNG, pipeline.FormatPDF, pipeline.FormatJSON}

// flagValues maps flag names to their fixed set of values.
func flagValues() map[string][]string {
	granularities := make([]string, len(timeline.Granularities))
	for i, g := range timeline.Granularities {
		granularities[i] = string(g)
	}
	themes := make([]string, len(sink.Themes))
	for i, t := range sink.Themes {
		themes[i] = t.Name
	}
	return map[string][]string{
		"granularity": granularities,
		"tie-break":   {string(timeline.TieBreakTitle), string(timeline.TieBreakInput)},
		"theme":       themes,
		"cache":       {config.CacheMemory, config.CacheRedis, config.CacheFile, config.CacheNone},
		"source":      {config.SourceFile, config.SourceMongo},
	}
}

// registerCompletions attaches value completions to the flags of every
// subcommand of root.
func registerCompletions(root *cobra.Command) {
	values := flagValues()
	for _, cmd := range root.Commands() {
		for name, vals := range values {
			if cmd.Flags().Lookup(name) != nil {
				_ = cmd.RegisterFlagCompletionFunc(name, completeOneOf(vals))
			}
		}
		if cmd.Flags().Lookup("format") == nil {
			continue
		}
		if cmd.Name() == "conflicts" {
			_ = cmd.RegisterFlagCompletionFunc("format", completeOneOf([]string{"dot", pipeline.FormatSVG}))
		} else {
			_ = cmd.RegisterFlagCompletionFunc("format", completeList(renderFormatOrder))
		}
	}
}

func completeOneOf(values []string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

// completeList completes the last element of a comma-separated list,
// skipping values already listed: "svg,p" offers "svg,png" and "svg,pdf".
func completeList(values []string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var prefix string
		chosen := make(map[string]bool)
		if i := strings.LastIndex(toComplete, ","); i >= 0 {
			prefix = toComplete[:i+1]
			for _, v := range strings.Split(toComplete[:i], ",") {
				chosen[strings.TrimSpace(v)] = true
			}
		}
		var out []string
		for _, v := range values {
			if !chosen[v] {
				out = append(out, prefix+v)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
	}
}
