package events

import (
	"fmt"
	"os"
	"path/filepath"
)

func DefaultSocketPath() string {
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir != "" {
		return filepath.Join(runtimeDir, "horza", "events.sock")
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("horza-%d", os.Getuid()), "events.sock")
}
