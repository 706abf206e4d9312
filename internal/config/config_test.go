package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	data := []byte(`
strict_java: true
trace: false
max_eval_depth: 64
catch_eval_errors: true
imports:
  - example.util
log_level: debug
color: never
`)
	cfg, err := Parse(data, "bsh.yaml")
	require.NoError(t, err)
	assert.True(t, cfg.StrictJava)
	assert.True(t, cfg.CatchEvalErrors)
	assert.Equal(t, 64, cfg.EvalDepth())
	assert.Equal(t, []string{"example.util"}, cfg.Imports)
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())
	assert.Equal(t, ColorNever, cfg.Color)
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultMaxEvalDepth, cfg.EvalDepth())
	assert.Equal(t, zerolog.Disabled, cfg.Level())
	assert.Equal(t, ColorAuto, cfg.Color)

	cfg.Trace = true
	assert.Equal(t, zerolog.TraceLevel, cfg.Level())
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"negative depth", "max_eval_depth: -1"},
		{"bad level", "log_level: loud"},
		{"bad color", "color: sometimes"},
		{"bad import", "imports: [\"java.util.\"]"},
		{"bad yaml", "strict_java: [1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input), "bsh.yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "bsh.yaml")
		})
	}
}

func TestLoadAndFindConfig(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, err := FindConfig(nested)
	require.NoError(t, err)
	if found != "" {
		// a bsh.yaml above the temp dir would shadow the test layout
		t.Skipf("unexpected config above temp dir: %s", found)
	}

	path := filepath.Join(root, "bsh.yml")
	require.NoError(t, os.WriteFile(path, []byte("strict_java: true\n"), 0o644))

	found, err = FindConfig(nested)
	require.NoError(t, err)
	assert.Equal(t, path, found)

	cfg, err := Load(found)
	require.NoError(t, err)
	assert.True(t, cfg.StrictJava)

	_, err = Load(filepath.Join(root, "missing.yaml"))
	assert.Error(t, err)
}
