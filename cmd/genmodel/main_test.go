package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfielding/kripke-atlk/mas"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGenmodel_YAMLLoads(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "-d", dir, "switch")
	require.NoError(t, err)

	path := filepath.Join(dir, "models", "switch.yaml")
	assert.Equal(t, path+"\n", out)

	def, err := mas.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "switch", def.Name)
	require.NoError(t, def.Validate())
	assert.Len(t, def.Specs, 2)
}

func TestGenmodel_Package(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "-d", dir, "--package", "lamp")
	require.NoError(t, err)

	src, err := os.ReadFile(filepath.Join(dir, "models", "lamp", "model.go"))
	require.NoError(t, err)
	assert.Contains(t, string(src), "package lamp")
	assert.Contains(t, string(src), `return "lamp"`)
	assert.NotContains(t, string(src), "__NAME__")
	assert.FileExists(t, filepath.Join(dir, "models", "lamp", "model_test.go"))
}

func TestGenmodel_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "-d", dir, "Bad-Name")
	assert.ErrorIs(t, err, errBadName)

	_, err = execute(t, "-d", dir, "twice")
	require.NoError(t, err)
	_, err = execute(t, "-d", dir, "twice")
	assert.ErrorIs(t, err, errExists)
	_, err = execute(t, "-d", dir, "--force", "twice")
	assert.NoError(t, err)
}
