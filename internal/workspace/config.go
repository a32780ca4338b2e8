package workspace

import (
	"context"
	"fmt"
	"sort"

	"github.com/devopsascode/bit/internal/jsoncdoc"
	"github.com/devopsascode/bit/internal/legacy"
	"github.com/devopsascode/bit/internal/vfile"
)

// Kind tags which on-disk format backs a Config.
type Kind int

const (
	// KindWorkspaceJSONC is the modern bit.jsonc document.
	KindWorkspaceJSONC Kind = iota + 1
	// KindLegacy is a wrapped legacy bit.json.
	KindLegacy
)

func (k Kind) String() string {
	switch k {
	case KindWorkspaceJSONC:
		return "workspace-jsonc"
	case KindLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// Config is the resolved, format-agnostic workspace configuration. Exactly
// one payload backs it, selected by Kind.
type Config struct {
	kind     Kind
	doc      *jsoncdoc.Document // KindWorkspaceJSONC only
	legacy   *legacy.Config     // KindLegacy only
	settings *Settings
	path     string
}

// FromObject builds a modern config from an already-decoded payload. Keys
// are laid out in canonical order ($schema, $schemaVersion, workspace,
// components, then the rest sorted) since a plain map carries no order.
func FromObject(data map[string]any) (*Config, error) {
	doc := jsoncdoc.New()
	canonical := []string{"$schema", "$schemaVersion", workspaceField, componentsField}
	seen := make(map[string]bool, len(canonical))
	for _, k := range canonical {
		if v, ok := data[k]; ok {
			if err := doc.Set(k, v); err != nil {
				return nil, err
			}
			seen[k] = true
		}
	}
	rest := make([]string, 0, len(data))
	for k := range data {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		if err := doc.Set(k, data[k]); err != nil {
			return nil, err
		}
	}
	return fromDocument(doc)
}

// fromDocument wraps a parsed modern document.
func fromDocument(doc *jsoncdoc.Document) (*Config, error) {
	section, _ := doc.Get(workspaceField)
	raw, ok := section.(map[string]any)
	if section != nil && !ok {
		return nil, fmt.Errorf("workspace section must be an object")
	}
	return &Config{
		kind:     KindWorkspaceJSONC,
		doc:      doc,
		settings: SettingsFromObject(raw),
	}, nil
}

// FromLegacy wraps a loaded legacy config. The bridge stays owned by the
// returned Config and is consulted for settings, overrides, and env fallback.
func FromLegacy(lc *legacy.Config) *Config {
	return &Config{
		kind:     KindLegacy,
		legacy:   lc,
		settings: SettingsFromLegacy(lc),
	}
}

// Kind returns the backing format tag.
func (c *Config) Kind() Kind { return c.kind }

// Settings returns the resolved workspace settings.
func (c *Config) Settings() *Settings { return c.settings }

// Legacy returns the wrapped legacy config, nil for modern configs.
func (c *Config) Legacy() *legacy.Config { return c.legacy }

// Path returns the config's destination path: an explicitly set path first,
// then the wrapped legacy config's path, then "". Empty string means "no
// path assigned yet", not an error.
func (c *Config) Path() string {
	if c.path != "" {
		return c.path
	}
	if c.legacy != nil {
		return c.legacy.Path()
	}
	return ""
}

// SetPath assigns the destination path. A config may be created before its
// destination is known.
func (c *Config) SetPath(path string) { c.path = path }

// Overrides derives the override table from whichever payload is present.
// Derived fresh per call; inputs are small and reads are infrequent.
func (c *Config) Overrides() *ConsumerOverrides {
	switch c.kind {
	case KindLegacy:
		return LoadOverrides(c.legacy.RawOverrides())
	default:
		raw, _ := c.doc.Raw(componentsField)
		return LoadOverrides(raw)
	}
}

// ComponentConfig resolves the effective configuration of one component id:
// the merged override record, plus — for legacy-backed configs only — the
// root-level compiler and tester as fallback for the two env fields the
// table left unset. No other field falls back to legacy data.
func (c *Config) ComponentConfig(componentID string) *ComponentOverrides {
	rec := c.Overrides().ForComponent(componentID)
	if c.kind != KindLegacy {
		return rec
	}
	plain := c.legacy.ToPlainObject()
	env, _ := plain["env"].(map[string]any)
	if rec.Env.Compiler == "" {
		rec.Env.Compiler = envNameFromSnapshot(env, "compiler")
	}
	if rec.Env.Tester == "" {
		rec.Env.Tester = envNameFromSnapshot(env, "tester")
	}
	return rec
}

// envNameFromSnapshot mirrors the legacy bridge's descriptor reading over a
// plain-object snapshot: a descriptor is a string id or an object keyed by id.
func envNameFromSnapshot(env map[string]any, field string) string {
	switch v := env[field].(type) {
	case string:
		return v
	case map[string]any:
		if len(v) == 1 {
			for name := range v {
				return name
			}
		}
	}
	return ""
}

// ExtensionsConfig partitions the resolved settings per extension namespace.
func (c *Config) ExtensionsConfig() map[string]any {
	return c.settings.CoreExtensionsConfig()
}

// Document returns the underlying modern document, nil for legacy configs.
func (c *Config) Document() *jsoncdoc.Document { return c.doc }

// ToVirtualFile serializes the config into its single pending write.
func (c *Config) ToVirtualFile() (vfile.File, error) {
	if c.kind == KindLegacy {
		return c.legacy.ToVirtualFile()
	}
	path := c.Path()
	if path == "" {
		return vfile.File{}, fmt.Errorf("workspace config has no destination path")
	}
	contents, err := c.doc.MarshalIndent()
	if err != nil {
		return vfile.File{}, fmt.Errorf("failed to serialize workspace config: %w", err)
	}
	return vfile.File{Path: path, Contents: contents}, nil
}

// Write persists the config through w: modern configs produce exactly one
// file at the computed path, legacy-backed configs delegate to the bridge.
func (c *Config) Write(ctx context.Context, w vfile.Writer) error {
	if c.kind == KindLegacy {
		return c.legacy.Write(ctx, w)
	}
	f, err := c.ToVirtualFile()
	if err != nil {
		return err
	}
	return w.Write(ctx, f)
}
