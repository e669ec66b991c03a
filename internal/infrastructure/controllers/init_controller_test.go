package controllers

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestInitController_Execute(t *testing.T) {
	t.Parallel()

	t.Run("should write a default monphare.yaml", func(t *testing.T) {
		chdir(t, t.TempDir())

		// given
		cmd := &cobra.Command{Use: "init"} //nolint:exhaustruct
		bindInitFlags(cmd)
		var out bytes.Buffer
		cmd.SetOut(&out)
		controller := NewInitController()

		// when
		err := controller.Execute(cmd, nil)

		// then
		require.NoError(t, err)
		data, readErr := os.ReadFile("monphare.yaml")
		require.NoError(t, readErr)
		assert.Contains(t, string(data), "scan:")
		assert.Contains(t, out.String(), "wrote monphare.yaml")
	})

	t.Run("should overwrite an existing file when --yes is set", func(t *testing.T) {
		dir := t.TempDir()
		chdir(t, dir)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "monphare.yaml"), []byte("stale: true\n"), 0o644))

		// given
		cmd := &cobra.Command{Use: "init"} //nolint:exhaustruct
		bindInitFlags(cmd)
		require.NoError(t, cmd.Flags().Set("yes", "true"))
		cmd.SetOut(&bytes.Buffer{})
		controller := NewInitController()

		// when
		err := controller.Execute(cmd, nil)

		// then
		require.NoError(t, err)
		data, readErr := os.ReadFile("monphare.yaml")
		require.NoError(t, readErr)
		assert.Contains(t, string(data), "scan:")
		assert.NotContains(t, string(data), "stale")
	})
}
