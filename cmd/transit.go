package cmd

import (
	"github.com/spf13/cobra"
)

var transitCmd = &cobra.Command{
	Use:   "transit <workspace>",
	Short: "Slide to another workspace",
	Long: `Switch to another window of the current session, sliding the strip from
the active window to the destination.

The argument is a workspace number as printed by "horza list", or +N / -N
relative to the active one. When the destination is not a window of this
session the switch happens directly without the slide.`,
	Example: `  horza transit 3
  horza transit +1
  horza transit -- -1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOverview(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(transitCmd)
}
