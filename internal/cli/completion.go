package cli

import (
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lanegraph/pkg/layout"
	"github.com/matzehuels/lanegraph/pkg/pipeline"
)

// flagValues lists the completions offered for enum-valued flags.
var flagValues = map[string]func() []string{
	"format":    func() []string { return slices.Sorted(maps.Keys(pipeline.ValidFormats)) },
	"style":     func() []string { return slices.Sorted(maps.Keys(pipeline.ValidStyles)) },
	"dep-order": func() []string { return slices.Sorted(maps.Keys(layout.Policies)) },
}

// registerFlagCompletions attaches value completion to every command in the
// tree that defines one of the enum-valued flags. --format accepts a
// comma-separated list, so completion continues after the last comma.
func registerFlagCompletions(cmd *cobra.Command) {
	for name, values := range flagValues {
		if cmd.Flags().Lookup(name) == nil {
			continue
		}
		list := name == "format"
		_ = cmd.RegisterFlagCompletionFunc(name, func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			prefix := ""
			if i := strings.LastIndex(toComplete, ","); list && i >= 0 {
				prefix = toComplete[:i+1]
			}
			var out []string
			for _, v := range values() {
				out = append(out, prefix+v)
			}
			return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
		})
	}
	for _, sub := range cmd.Commands() {
		registerFlagCompletions(sub)
	}
}

// completionCommand creates the completion command for generating shell
// completions. Flag values for --format, --style and --dep-order complete
// too.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for lanegraph.

To load completions:

Bash:
  $ source <(lanegraph completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ lanegraph completion bash > /etc/bash_completion.d/lanegraph
  # macOS:
  $ lanegraph completion bash > $(brew --prefix)/etc/bash_completion.d/lanegraph

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ lanegraph completion zsh > "${fpath[1]}/_lanegraph"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ lanegraph completion fish | source

  # To load completions for each session, execute once:
  $ lanegraph completion fish > ~/.config/fish/completions/lanegraph.fish

PowerShell:
  PS> lanegraph completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> lanegraph completion powershell > lanegraph.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}
