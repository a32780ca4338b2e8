// Package legacy bridges the pre-harmony bit.json configuration format.
// A loaded Config is a read-only view over the original document: writes
// re-emit the bytes that were read, so a legacy workspace is never upgraded
// or reformatted behind the user's back.
package legacy

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"

	"github.com/devopsascode/bit/internal/logging"
	"github.com/devopsascode/bit/internal/vfile"
)

// ConfigFileName is the fixed name of the legacy config file.
const ConfigFileName = "bit.json"

// Config is a loaded legacy bit.json.
type Config struct {
	data []byte         // original file contents, written back verbatim
	raw  map[string]any // decoded document
	path string
}

// LoadIfExist probes dir for a legacy config. A missing file is not an
// error: the result is (nil, nil).
func LoadIfExist(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	cfg, err := FromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.path = path
	log := logging.Component("legacy")
	log.Debug().Str("path", path).Msg("loaded legacy config")
	return cfg, nil
}

// FromBytes parses a legacy config document.
func FromBytes(data []byte) (*Config, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return &Config{data: append([]byte(nil), data...), raw: raw}, nil
}

// Path returns the file the config was loaded from, or "" if it was built
// from bytes.
func (c *Config) Path() string { return c.path }

// Compiler returns the root-level compiler id, "" if none is declared.
func (c *Config) Compiler() string { return c.envName("compiler") }

// Tester returns the root-level tester id, "" if none is declared.
func (c *Config) Tester() string { return c.envName("tester") }

// envName extracts an env descriptor name. Legacy documents declare
// descriptors either as a plain string or as an object keyed by the
// descriptor id.
func (c *Config) envName(field string) string {
	env, ok := c.raw["env"].(map[string]any)
	if !ok {
		return ""
	}
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

// Lang returns the declared implementation language, "" if none.
func (c *Config) Lang() string {
	s, _ := c.raw["lang"].(string)
	return s
}

// ComponentsDefaultDirectory returns the declared component directory, "" if none.
func (c *Config) ComponentsDefaultDirectory() string {
	s, _ := c.raw["componentsDefaultDirectory"].(string)
	return s
}

// PackageManager returns the declared package manager, "" if none.
func (c *Config) PackageManager() string {
	s, _ := c.raw["packageManager"].(string)
	return s
}

// RawOverrides returns the overrides section as raw JSON in declaration
// order, or nil when the section is absent.
func (c *Config) RawOverrides() []byte {
	res := gjson.GetBytes(c.data, "overrides")
	if !res.IsObject() {
		return nil
	}
	return []byte(res.Raw)
}

// ToPlainObject returns a deep copy of the whole document. Mutating the
// result never affects the config.
func (c *Config) ToPlainObject() map[string]any {
	var snapshot map[string]any
	// raw came out of json.Unmarshal, so a marshal round trip cannot fail
	b, _ := json.Marshal(c.raw)
	_ = json.Unmarshal(b, &snapshot)
	return snapshot
}

// ToVirtualFile returns the single pending write for this config: the bytes
// originally read, at the path originally read from.
func (c *Config) ToVirtualFile() (vfile.File, error) {
	if c.path == "" {
		return vfile.File{}, fmt.Errorf("legacy config has no destination path")
	}
	return vfile.File{Path: c.path, Contents: append([]byte(nil), c.data...)}, nil
}

// Write persists the config through w.
func (c *Config) Write(ctx context.Context, w vfile.Writer) error {
	f, err := c.ToVirtualFile()
	if err != nil {
		return err
	}
	return w.Write(ctx, f)
}
