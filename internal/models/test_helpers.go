package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// FixturePath resolves name under the module's testdata directory. The module
// root is found by walking up from the working directory to go.mod, so the
// helper works from any package depth. The fixture must exist.
func FixturePath(t testing.TB, name string) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			break
		}
		parent := filepath.Dir(dir)
		require.NotEqual(t, dir, parent, "no go.mod above the test directory")
		dir = parent
	}

	path := filepath.Join(dir, "testdata", name)
	require.FileExists(t, path)
	return path
}
