package workspace

import (
	"github.com/devopsascode/bit/internal/legacy"
)

// Well-known settings keys.
const (
	defaultScopeKey     = "defaultScope"
	defaultDirectoryKey = "componentsDefaultDirectory"
	langKey             = "lang"
	packageManagerKey   = "packageManager"
)

// coreWorkspaceFields is the closed list of settings extracted into the
// "workspace" namespace by CoreExtensionsConfig. Changing it changes what
// every extension sees, so additions are a compatibility decision.
var coreWorkspaceFields = []string{defaultScopeKey, defaultDirectoryKey}

// Settings is the flattened, format-agnostic view of workspace-level
// configuration. Immutable once constructed.
type Settings struct {
	fields map[string]any
}

// SettingsFromObject builds settings from the modern document's workspace
// section. The input is copied; nil degrades to empty settings.
func SettingsFromObject(raw map[string]any) *Settings {
	fields := make(map[string]any, len(raw))
	for k, v := range raw {
		fields[k] = v
	}
	return &Settings{fields: fields}
}

// SettingsFromLegacy adapts a legacy config's root-level fields into the
// modern settings shape.
func SettingsFromLegacy(lc *legacy.Config) *Settings {
	fields := make(map[string]any)
	if v := lc.ComponentsDefaultDirectory(); v != "" {
		fields[defaultDirectoryKey] = v
	}
	if v := lc.Lang(); v != "" {
		fields[langKey] = v
	}
	if v := lc.PackageManager(); v != "" {
		fields[packageManagerKey] = v
	}
	return &Settings{fields: fields}
}

func (s *Settings) str(key string) string {
	v, _ := s.fields[key].(string)
	return v
}

// DefaultScope returns the scope new components are exported to, "" if unset.
func (s *Settings) DefaultScope() string { return s.str(defaultScopeKey) }

// ComponentsDefaultDirectory returns the directory new components are placed
// in, "" if unset.
func (s *Settings) ComponentsDefaultDirectory() string { return s.str(defaultDirectoryKey) }

// Lang returns the workspace implementation language, "" if unset.
func (s *Settings) Lang() string { return s.str(langKey) }

// PackageManager returns the configured package manager, "" if unset.
func (s *Settings) PackageManager() string { return s.str(packageManagerKey) }

// Fields returns a copy of every settings key.
func (s *Settings) Fields() map[string]any {
	out := make(map[string]any, len(s.fields))
	for k, v := range s.fields {
		out[k] = v
	}
	return out
}

// CoreExtensionsConfig partitions the settings into per-extension config:
// the core workspace fields are grouped under the "workspace" key and every
// remaining field is returned top-level under its own namespace. Total over
// any settings value; never fails on missing fields.
func (s *Settings) CoreExtensionsConfig() map[string]any {
	core := make(map[string]any)
	for _, key := range coreWorkspaceFields {
		if v, ok := s.fields[key]; ok {
			core[key] = v
		}
	}
	out := map[string]any{workspaceField: core}
	for k, v := range s.fields {
		if isCoreWorkspaceField(k) {
			continue
		}
		out[k] = v
	}
	return out
}

func isCoreWorkspaceField(key string) bool {
	for _, f := range coreWorkspaceFields {
		if f == key {
			return true
		}
	}
	return false
}
