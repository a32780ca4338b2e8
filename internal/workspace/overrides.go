package workspace

import (
	"encoding/json"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-viper/mapstructure/v2"
	"github.com/tidwall/gjson"
)

// MatchPolicy selects which declaration wins when several patterns match a
// component id and set the same field. The legacy system's behavior is
// last-declared-wins; FirstMatchWins is kept as the alternative reading so
// it can be validated against legacy fixtures.
type MatchPolicy int

const (
	LastMatchWins MatchPolicy = iota
	FirstMatchWins
)

// OverrideEntry is one declared (pattern, record) pair.
type OverrideEntry struct {
	Pattern string
	Fields  map[string]any
}

// ConsumerOverrides is the ordered table of per-component override
// declarations. Order is declaration order in the source document.
type ConsumerOverrides struct {
	entries []OverrideEntry
	policy  MatchPolicy
}

// EnvConfig names the environments applied to a component.
type EnvConfig struct {
	Compiler string `json:"compiler,omitempty" mapstructure:"compiler"`
	Tester   string `json:"tester,omitempty" mapstructure:"tester"`
}

// ComponentOverrides is the resolved override record for one concrete
// component id. Config carries every non-env field.
type ComponentOverrides struct {
	Env    EnvConfig      `json:"-" mapstructure:"env"`
	Config map[string]any `json:"-" mapstructure:",remain"`
}

// IsEmpty reports whether the record carries no fields at all.
func (c *ComponentOverrides) IsEmpty() bool {
	return c.Env == (EnvConfig{}) && len(c.Config) == 0
}

// MarshalJSON renders the record the way it appears in the source document:
// config fields at the top level next to the env block.
func (c *ComponentOverrides) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Config)+1)
	for k, v := range c.Config {
		out[k] = v
	}
	if c.Env != (EnvConfig{}) {
		out["env"] = c.Env
	}
	return json.Marshal(out)
}

// LoadOverrides builds the table from the raw JSON of an overrides section.
// It never fails: nil input, a non-object section, or malformed entries all
// degrade to an empty (or partial) table.
func LoadOverrides(section []byte) *ConsumerOverrides {
	table := &ConsumerOverrides{}
	if len(section) == 0 {
		return table
	}
	res := gjson.ParseBytes(section)
	if !res.IsObject() {
		return table
	}
	res.ForEach(func(key, value gjson.Result) bool {
		if !value.IsObject() {
			return true // malformed entry, skip
		}
		var fields map[string]any
		if err := json.Unmarshal([]byte(value.Raw), &fields); err != nil {
			return true
		}
		table.entries = append(table.entries, OverrideEntry{Pattern: key.String(), Fields: fields})
		return true
	})
	return table
}

// SetMatchPolicy switches the precedence rule for overlapping matches.
func (o *ConsumerOverrides) SetMatchPolicy(p MatchPolicy) { o.policy = p }

// Entries returns the declarations in table order.
func (o *ConsumerOverrides) Entries() []OverrideEntry {
	return append([]OverrideEntry(nil), o.entries...)
}

// ForComponent resolves the override record for a concrete component id.
// Every matching entry is merged field by field in table order: under
// LastMatchWins a later declaration overrides earlier ones for overlapping
// fields, env sub-fields included, while non-overlapping fields accumulate.
// The result is a fresh record; an id matching nothing yields an empty,
// non-nil record.
func (o *ConsumerOverrides) ForComponent(componentID string) *ComponentOverrides {
	merged := make(map[string]any)
	entries := o.entries
	if o.policy == FirstMatchWins {
		entries = reversed(entries)
	}
	for _, e := range entries {
		if matchPattern(e.Pattern, componentID) {
			mergeFields(merged, e.Fields)
		}
	}
	out := &ComponentOverrides{Config: make(map[string]any)}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{Result: out})
	if err == nil {
		_ = dec.Decode(merged) // malformed shapes degrade, never error out
	}
	if out.Config == nil {
		out.Config = make(map[string]any)
	}
	return out
}

func reversed(entries []OverrideEntry) []OverrideEntry {
	out := make([]OverrideEntry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out
}

// mergeFields merges src into dst field by field. The env field merges its
// sub-fields individually so a later entry setting only env.tester does not
// wipe an earlier env.compiler; every other field is replaced wholesale.
// Values are deep-copied on the way in: the resolved record must not alias
// the table's declarations.
func mergeFields(dst, src map[string]any) {
	for k, v := range src {
		if k == "env" {
			srcEnv, srcOK := v.(map[string]any)
			dstEnv, dstOK := dst[k].(map[string]any)
			if srcOK && dstOK {
				for ek, ev := range srcEnv {
					dstEnv[ek] = cloneValue(ev)
				}
				continue
			}
			if srcOK {
				env := make(map[string]any, len(srcEnv))
				for ek, ev := range srcEnv {
					env[ek] = cloneValue(ev)
				}
				dst[k] = env
				continue
			}
		}
		dst[k] = cloneValue(v)
	}
}

// cloneValue deep-copies a decoded JSON value.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// matchPattern checks a component id against an override pattern. Exact ids,
// trailing/leading single wildcards, and full glob patterns are supported.
func matchPattern(pattern, id string) bool {
	if pattern == "*" {
		return true
	}
	if strings.Contains(pattern, "**") {
		matched, _ := doublestar.Match(pattern, id)
		return matched
	}
	if strings.HasSuffix(pattern, "*") && !strings.HasPrefix(pattern, "*") && strings.Count(pattern, "*") == 1 {
		return strings.HasPrefix(id, strings.TrimSuffix(pattern, "*"))
	}
	if strings.HasPrefix(pattern, "*") && !strings.HasSuffix(pattern, "*") && strings.Count(pattern, "*") == 1 {
		return strings.HasSuffix(id, strings.TrimPrefix(pattern, "*"))
	}
	if strings.Contains(pattern, "*") {
		matched, _ := doublestar.Match(pattern, id)
		return matched
	}
	return pattern == id
}
