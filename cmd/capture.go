package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var flagKeepTrailing bool

var captureCmd = &cobra.Command{
	Use:   "capture <workspace>",
	Short: "Print the composed content of a workspace",
	Long: `Capture every pane of a workspace and print them composed into one
screen, the way the overview thumbnails them.

The workspace is a number as printed by "horza list" or a tmux window ID
such as "@3". Escape sequences are stripped and wide characters occupy two
columns.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry(cmd.Context(), zap.NewNop())
		if err != nil {
			return err
		}
		ws, err := resolveWorkspace(reg, args[0])
		if err != nil {
			return err
		}

		grid, err := reg.CaptureWorkspace(cmd.Context(), ws)
		if err != nil {
			return fmt.Errorf("failed to capture workspace %s: %w", args[0], err)
		}

		out := cmd.OutOrStdout()
		for y := 0; y < grid.Height; y++ {
			line := grid.Line(y)
			if !flagKeepTrailing {
				line = strings.TrimRight(line, " ")
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

func init() {
	captureCmd.Flags().BoolVar(&flagKeepTrailing, "keep-trailing", false, "keep trailing blanks so every line is the window width")
	rootCmd.AddCommand(captureCmd)
}
