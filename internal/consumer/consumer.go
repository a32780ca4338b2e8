// Package consumer locates the workspace root a directory belongs to.
package consumer

import (
	"os"
	"path/filepath"

	"github.com/devopsascode/bit/internal/legacy"
	"github.com/devopsascode/bit/internal/workspace"
)

// FindRoot walks up from start to the nearest directory holding a workspace
// config, modern or legacy. Returns ("", false) when the filesystem root is
// reached without a hit.
func FindRoot(start string) (string, bool) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}
	for {
		if hasConfig(dir) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func hasConfig(dir string) bool {
	if workspace.PathHasBitJSONC(dir) {
		return true
	}
	info, err := os.Stat(filepath.Join(dir, legacy.ConfigFileName))
	return err == nil && !info.IsDir()
}
