package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/formforge/internal/field"
	"github.com/matthewbaird/formforge/internal/pipeline"
)

const workorder = `{
  "metadata": {"id": "ZZWO", "mainObject": "WORKORDER", "isStandardObject": true},
  "fields": [
    {"fieldName": "WONUM", "area": "header", "tabName": "Main"},
    {"fieldName": "RISK", "area": "header", "tabName": "Main", "maxType": "ALN", "length": "20"}
  ]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func opts() pipeline.Options {
	return pipeline.Options{Naming: field.DefaultNaming()}
}

func TestCheck_GeneratedScript(t *testing.T) {
	var out bytes.Buffer
	cov, err := check(&out, writeFile(t, "wo.json", workorder), "", opts())
	require.NoError(t, err)
	assert.True(t, cov.OK())
	assert.Contains(t, cov.Expected, "WORKORDER.ZZ_RISK")
	assert.Contains(t, out.String(), "Phase 2: Checking generated script coverage...")
	assert.Contains(t, out.String(), "custom attribute(s) covered.")
}

func TestCheck_Drift(t *testing.T) {
	var out bytes.Buffer
	script := writeFile(t, "wo.dbc", `<script author="me" scriptname="WO"><statements/></script>`)
	cov, err := check(&out, writeFile(t, "wo.json", workorder), script, opts())
	assert.ErrorIs(t, err, ErrDrift)
	assert.Equal(t, []string{"WORKORDER.ZZ_RISK"}, cov.Missing)
	assert.Contains(t, out.String(), "MISSING: WORKORDER.ZZ_RISK")
}

func TestCheck_Errors(t *testing.T) {
	var out bytes.Buffer
	_, err := check(&out, writeFile(t, "bad.json", `{"metadata": {"mainObject": "A"}, "fields": [{"fieldName": "X", "area": "detail"}]}`), "", opts())
	assert.ErrorIs(t, err, pipeline.ErrInvalidFields)

	_, err = check(&out, writeFile(t, "wo.json", workorder), filepath.Join(t.TempDir(), "none.dbc"), opts())
	assert.ErrorContains(t, err, "reading script")

	_, err = check(&out, writeFile(t, "wo.json", workorder), writeFile(t, "bad.dbc", "<script"), opts())
	assert.Error(t, err)
}

func TestCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newCmd(&out)
	cmd.SetArgs([]string{"-p", writeFile(t, "wo.json", workorder)})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "driftcheck: OK, no drift detected")

	cmd = newCmd(&out)
	cmd.SetArgs([]string{})
	assert.Error(t, cmd.Execute())
}
