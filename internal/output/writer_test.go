package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteFile(t *testing.T) {
	root := t.TempDir()

	full, err := WriteFile(root, "cars/honda-fit.html", []byte("<html></html>"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "cars", "honda-fit.html"), full)

	// #nosec G304 -- full is controlled by test.
	data, err := os.ReadFile(full)
	require.NoError(t, err)
	require.Equal(t, "<html></html>", string(data))

	info, err := os.Stat(full)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(FileMode), info.Mode().Perm())

	_, err = WriteFile(root, "cars/honda-fit.html", []byte("v2"))
	require.NoError(t, err)
	// #nosec G304 -- full is controlled by test.
	data, err = os.ReadFile(full)
	require.NoError(t, err)
	require.Equal(t, "v2", string(data))

	entries, err := os.ReadDir(filepath.Join(root, "cars"))
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files left behind")
}

func TestWriteFile_PathTraversal(t *testing.T) {
	root := t.TempDir()

	for _, rel := range []string{"../outside.html", "..", "a/../../outside.html", "/etc/passwd", ""} {
		_, err := WriteFile(root, rel, []byte("x"))
		require.Error(t, err, rel)
	}

	full, err := Resolve(root, "a/../b.html")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "b.html"), full)

	full, err = Resolve(root, "..hidden.html")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "..hidden.html"), full)
}
