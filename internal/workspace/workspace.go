// Package workspace resolves a workspace configuration from one of two
// mutually exclusive on-disk formats: the current bit.jsonc document or the
// legacy bit.json handled by the legacy bridge. Downstream code consumes the
// resolved Config without caring which format backed it.
package workspace

import (
	_ "embed"
	"os"
	"path/filepath"
)

// WorkspaceConfigFileName is the fixed name of the modern config file.
const WorkspaceConfigFileName = "bit.jsonc"

// Schema constants stamped into newly created configs.
const (
	SchemaURL     = "https://static.bit.dev/bit-schemas/workspace.json"
	SchemaVersion = "1.0.0"
)

// Top-level document fields.
const (
	workspaceField  = "workspace"
	componentsField = "components"
)

//go:embed workspace-template.jsonc
var defaultTemplate []byte

// DefaultTemplate returns a copy of the embedded scaffold template.
func DefaultTemplate() []byte {
	return append([]byte(nil), defaultTemplate...)
}

// DefaultConfigPath returns the path the modern config file occupies inside dir.
func DefaultConfigPath(dir string) string {
	return filepath.Join(dir, WorkspaceConfigFileName)
}

// PathHasBitJSONC reports whether the modern config file exists directly
// under dir. No recursive search.
func PathHasBitJSONC(dir string) bool {
	info, err := os.Stat(DefaultConfigPath(dir))
	return err == nil && !info.IsDir()
}
