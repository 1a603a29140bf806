package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/timvw/horza/internal/host"
	"github.com/timvw/horza/internal/mux"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the workspaces of the current session",
	Long: `List every window of the current tmux session as a workspace.

Columns: workspace number, tmux window index, window ID, pane count and name.
The active window is marked with "*". Workspace numbers are what "transit"
and "capture" accept.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry(cmd.Context(), zap.NewNop())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, ws := range reg.Workspaces(mux.MonitorID) {
			w, ok := reg.WindowFor(ws.ID)
			if !ok {
				continue
			}
			marker := " "
			if w.Active {
				marker = "*"
			}
			fmt.Fprintf(out, "%s%-3d %3d  %-5s %2d  %s\n", marker, ws.ID, w.Index, w.ID, w.Panes, w.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

// resolveWorkspace accepts a workspace number or a tmux window ID ("@3").
func resolveWorkspace(reg *mux.Registry, arg string) (host.WorkspaceID, error) {
	if strings.HasPrefix(arg, "@") {
		if ws, ok := reg.WorkspaceOf(arg); ok {
			return ws, nil
		}
		return 0, fmt.Errorf("no window %s in session %s", arg, reg.Snapshot().Session)
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid workspace %q: want a number or a window ID", arg)
	}
	ws := host.WorkspaceID(n)
	if _, ok := reg.WindowFor(ws); !ok {
		return 0, fmt.Errorf("no workspace %d in session %s", n, reg.Snapshot().Session)
	}
	return ws, nil
}
