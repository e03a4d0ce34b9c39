package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// viewCommand opens the interactive lane browser.
func (c *CLI) viewCommand() *cobra.Command {
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "view [dataset]",
		Short: "Browse the lane graph of a dataset interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, _, err := c.layoutFile(cmd.Context(), args[0], &flags)
			if err != nil {
				return err
			}
			p := tea.NewProgram(NewViewerModel(v), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}

	flags.register(cmd)
	return cmd
}
