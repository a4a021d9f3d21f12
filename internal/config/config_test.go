package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/formforge/internal/er"
	"github.com/matthewbaird/formforge/internal/fmb"
)

func noEnvFile(t *testing.T) Option {
	return WithEnvFile(filepath.Join(t.TempDir(), "absent.env"))
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "ZZ_", cfg.Naming.Prefix)
	assert.Equal(t, "主區域", cfg.Grouping.MainDetailLabel)
	assert.Equal(t, []string{"B1", "B2", "B3"}, cfg.FMB.IndexTokens)
	assert.Equal(t, "GRP_", cfg.FMB.GroupMarker)
	assert.Equal(t, fmb.DefaultSystemLabels, cfg.FMB.SystemLabels)
	assert.Equal(t, "formforge", cfg.Script.Author)
	assert.Equal(t, 5*time.Second, cfg.Layout.Timeout)
	assert.Equal(t, "sugiyama", cfg.Layout.Engine)
	assert.IsType(t, er.Sugiyama{}, cfg.Layouter())
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "formforge.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
port: 9000
log:
  level: debug
naming:
  prefix: CX_
fmb:
  indexTokens: [H1, D1]
`), 0o644))

	t.Setenv("FORMFORGE_LOG_LEVEL", "warn")
	t.Setenv("FORMFORGE_LAYOUT_TIMEOUT", "250ms")
	t.Setenv("FORMFORGE_SCRIPT_AUTHOR", "env-author")

	cfg, err := Load(file, noEnvFile(t), WithOverride("script.author", "flag-author"))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port, "file beats defaults")
	assert.Equal(t, "warn", cfg.Log.Level, "env beats file")
	assert.Equal(t, "CX_", cfg.Naming.Prefix)
	assert.Equal(t, []string{"H1", "D1"}, cfg.FMB.IndexTokens)
	assert.Equal(t, 250*time.Millisecond, cfg.Layout.Timeout)
	assert.Equal(t, "flag-author", cfg.Script.Author, "overrides beat env")
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FORMFORGE_NAMING_PREFIX=QA_\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("FORMFORGE_NAMING_PREFIX") })

	cfg, err := Load("", WithEnvFile(path))
	require.NoError(t, err)
	assert.Equal(t, "QA_", cfg.Naming.Prefix)
	assert.Equal(t, "QA_", cfg.PipelineOptions().Naming.Prefix)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), noEnvFile(t))
	assert.Error(t, err)

	_, err = Load("", noEnvFile(t), WithOverride("log.format", "xml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.format")

	_, err = Load("", noEnvFile(t), WithOverride("port", 70000), WithOverride("layout.timeout", "0s"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port 70000")
	assert.Contains(t, err.Error(), "layout.timeout")

	_, err = Load("", noEnvFile(t), WithOverride("layout.engine", "graphviz"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `layout.engine: unknown layout engine "graphviz"`)

	_, err = Load("", noEnvFile(t), WithOverride("fmb.systemLabelMatch", "fuzzy"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fmb.systemLabelMatch")

	cfg, err := Load("", noEnvFile(t), WithOverride("layout.engine", "layered"), WithOverride("fmb.systemLabelMatch", "Substring"))
	require.NoError(t, err)
	assert.IsType(t, er.Layered{}, cfg.Layouter())
	assert.Equal(t, fmb.MatchSubstring, cfg.FMBOptions().SystemLabelMatch)
}

func TestConfig_Options(t *testing.T) {
	cfg, err := Load("", noEnvFile(t), WithOverride("grouping.mainDetailLabel", "Primary"))
	require.NoError(t, err)

	fo := cfg.FMBOptions()
	assert.Equal(t, "GRP_", fo.GroupMarker)
	assert.Equal(t, fmb.MatchWord, fo.SystemLabelMatch)
	assert.True(t, fo.Ownership.Owns("B1_ORDER", "ORDER_NO"))

	po := cfg.PipelineOptions()
	assert.Equal(t, "Primary", po.Grouping.DefaultMainDetailLabel)
	assert.Equal(t, "formforge", po.Author)
	assert.Equal(t, "ZZ_", po.Naming.Prefix)
}
