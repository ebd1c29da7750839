package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tscal-dev/tscal/pkg/calibration"
)

func TestParseTransformArgs(t *testing.T) {
	tr, err := parseTransformArgs([]string{"0x10000", "0", "-12", "0", "65536", "0x7fffffff"})
	require.NoError(t, err)
	assert.Equal(t, calibration.TouchTransform{0x10000, 0, -12, 0, 0x10000, 0x7fffffff}, tr)

	_, err = parseTransformArgs([]string{"1", "2"})
	assert.Error(t, err)

	_, err = parseTransformArgs([]string{"1", "2", "3", "4", "5", "0x80000000"})
	assert.ErrorContains(t, err, "coefficient F")
}

func TestFormatCoefficient(t *testing.T) {
	assert.Equal(t, "65536 (1.00000)", formatCoefficient(0x10000))
	assert.Equal(t, "-32768 (-0.50000)", formatCoefficient(-0x8000))
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestImageCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flash.bin")

	_, err := runCommand(t, "image", "create", path, "--page-size", "64", "--page-count", "2")
	require.NoError(t, err)
	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.EqualValues(t, 128, fi.Size())

	out, err := runCommand(t, "image", "show", path, "--page-size", "64", "--page-count", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "No calibration stored.")

	_, err = runCommand(t, "image", "write", path, "1", "2", "3", "4", "5", "6", "--page-size", "64", "--page-count", "2")
	require.NoError(t, err)

	out, err = runCommand(t, "image", "show", path, "--page-size", "64", "--page-count", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "0xd72f91a3")

	_, err = runCommand(t, "image", "erase", path, "--page-size", "64", "--page-count", "2")
	require.NoError(t, err)

	out, err = runCommand(t, "image", "show", path, "--page-size", "64", "--page-count", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "No calibration stored.")
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tscal.json")

	_, err := runCommand(t, "--config", path, "config", "init")
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"backend": "image"`)
}

func TestImageShowMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.bin")

	_, err := runCommand(t, "image", "show", path)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = runCommand(t, "image", "erase", path)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "image must not be created")
}
