package workspace

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devopsascode/bit/internal/legacy"
	"github.com/devopsascode/bit/internal/vfile"
)

func modernPayload() map[string]any {
	return map[string]any{
		"$schema":        SchemaURL,
		"$schemaVersion": SchemaVersion,
		"workspace": map[string]any{
			"defaultScope":               "my-org.base",
			"componentsDefaultDirectory": "components/{name}",
		},
		"components": map[string]any{
			"ui/*": map[string]any{"env": map[string]any{"compiler": "babel"}},
		},
	}
}

func legacyConfig(t *testing.T) *legacy.Config {
	t.Helper()
	lc, err := legacy.FromBytes([]byte(`{
		"env": {"compiler": "bit.envs/compilers/babel", "tester": "bit.envs/testers/jest"},
		"lang": "javascript",
		"overrides": {
			"utils/*": {"env": {"compiler": "bit.envs/compilers/flow"}}
		}
	}`))
	require.NoError(t, err)
	return lc
}

func TestFromObjectSettingsConsistency(t *testing.T) {
	payload := modernPayload()
	cfg, err := FromObject(payload)
	require.NoError(t, err)

	want := SettingsFromObject(payload["workspace"].(map[string]any))
	assert.Equal(t, want.Fields(), cfg.Settings().Fields())
	assert.Equal(t, KindWorkspaceJSONC, cfg.Kind())
}

func TestFromObjectWithoutWorkspaceSection(t *testing.T) {
	cfg, err := FromObject(map[string]any{"$schemaVersion": SchemaVersion})
	require.NoError(t, err)
	assert.Empty(t, cfg.Settings().Fields())
}

func TestFromObjectRejectsNonObjectWorkspace(t *testing.T) {
	_, err := FromObject(map[string]any{"workspace": "nope"})
	assert.Error(t, err)
}

func TestPathPrecedence(t *testing.T) {
	// modern config without a path
	cfg, err := FromObject(modernPayload())
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Path())

	// explicit path
	cfg.SetPath("/ws/bit.jsonc")
	assert.Equal(t, "/ws/bit.jsonc", cfg.Path())

	// legacy-wrapped config inherits the legacy path
	lcfg := FromLegacy(legacyConfig(t))
	assert.Equal(t, "", lcfg.Path()) // built from bytes, no path either

	// explicit path wins over inherited
	lcfg.SetPath("/ws/explicit")
	assert.Equal(t, "/ws/explicit", lcfg.Path())
}

func TestComponentConfigModernNoFallback(t *testing.T) {
	cfg, err := FromObject(modernPayload())
	require.NoError(t, err)

	rec := cfg.ComponentConfig("ui/button")
	assert.Equal(t, "babel", rec.Env.Compiler)
	assert.Empty(t, rec.Env.Tester)

	// unmatched ids get an empty, defined record
	none := cfg.ComponentConfig("pages/home")
	require.NotNil(t, none)
	assert.True(t, none.IsEmpty())
}

func TestComponentConfigLegacyEnvFallback(t *testing.T) {
	cfg := FromLegacy(legacyConfig(t))

	// override supplies the compiler: it wins over the legacy root
	withOverride := cfg.ComponentConfig("utils/sort")
	assert.Equal(t, "bit.envs/compilers/flow", withOverride.Env.Compiler)
	// tester was not supplied: filled from the legacy root
	assert.Equal(t, "bit.envs/testers/jest", withOverride.Env.Tester)

	// no override at all: both env fields fall back
	plain := cfg.ComponentConfig("ui/button")
	assert.Equal(t, "bit.envs/compilers/babel", plain.Env.Compiler)
	assert.Equal(t, "bit.envs/testers/jest", plain.Env.Tester)
	// nothing besides env is filled
	assert.Empty(t, plain.Config)
}

func TestOverridesFromLegacySection(t *testing.T) {
	cfg := FromLegacy(legacyConfig(t))
	entries := cfg.Overrides().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "utils/*", entries[0].Pattern)
}

func TestExtensionsConfig(t *testing.T) {
	cfg, err := FromObject(modernPayload())
	require.NoError(t, err)

	ext := cfg.ExtensionsConfig()
	ws := ext["workspace"].(map[string]any)
	assert.Equal(t, "my-org.base", ws["defaultScope"])
}

func TestWriteModernSingleFile(t *testing.T) {
	cfg, err := FromObject(modernPayload())
	require.NoError(t, err)
	cfg.SetPath("/ws/bit.jsonc")

	w := vfile.NewMemWriter()
	require.NoError(t, cfg.Write(context.Background(), w))
	require.Equal(t, []string{"/ws/bit.jsonc"}, w.Paths())

	contents, _ := w.Get("/ws/bit.jsonc")
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(contents, &decoded))
	assert.Equal(t, SchemaVersion, decoded["$schemaVersion"])
}

func TestWriteWithoutPathFails(t *testing.T) {
	cfg, err := FromObject(modernPayload())
	require.NoError(t, err)

	err = cfg.Write(context.Background(), vfile.NewMemWriter())
	assert.Error(t, err)
}

func TestComponentOverridesMarshalJSON(t *testing.T) {
	rec := &ComponentOverrides{
		Env:    EnvConfig{Compiler: "babel"},
		Config: map[string]any{"maxSize": 10},
	}
	b, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"env": {"compiler": "babel"}, "maxSize": 10}`, string(b))
}
