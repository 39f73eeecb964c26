package profbuild

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeFile creates root/rel with content, making parent directories.
func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// newAgentTree lays out a minimal profiler agent checkout.
func newAgentTree(t *testing.T, version string) string {
	t.Helper()

	root := t.TempDir()
	writeFile(t, root, "README.md", "# Cloud Profiler\n\nPython agent.\n")
	writeFile(t, root, DefaultVersionFile, "__version__ = '"+version+"'\n")
	writeFile(t, root, "googlecloudprofiler/src/profiler.cc", "// profiler\n")
	writeFile(t, root, "googlecloudprofiler/src/clock.cc", "// clock\n")
	writeFile(t, root, "googlecloudprofiler/src/clock.h", "// header\n")
	return root
}
