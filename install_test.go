package profbuild

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstallExtensionsKeepsModuleLayout(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "out/googlecloudprofiler/_profiler.so", "binary")

	config := &BuildConfig{
		Root:       root,
		OutputDir:  "out",
		InstallDir: "site-packages",
	}

	installed, err := installExtensions(config, []string{
		"out/googlecloudprofiler/_profiler.so",
		"out/googlecloudprofiler/_profiler.so",
		"out/googlecloudprofiler/_profiler.so.args",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"site-packages/googlecloudprofiler/_profiler.so"}, installed)

	dest := filepath.Join(root, "site-packages", "googlecloudprofiler", "_profiler.so")
	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "binary", string(content))
}

func TestInstallExtensionsOutsideOutputDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "elsewhere/_native.so", "binary")

	installed, err := installExtensions(&BuildConfig{Root: root, InstallDir: "dist"}, []string{"elsewhere/_native.so"})
	require.NoError(t, err)

	assert.Equal(t, []string{"dist/_native.so"}, installed)
}

func TestInstallExtensionsWithoutInstallDir(t *testing.T) {
	installed, err := installExtensions(&BuildConfig{Root: t.TempDir()}, []string{"build/x.so"})

	require.NoError(t, err)
	assert.Nil(t, installed)
}

func TestInstallExtensionsMissingSource(t *testing.T) {
	_, err := installExtensions(&BuildConfig{Root: t.TempDir(), InstallDir: "dist"}, []string{"build/x.so"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to install build/x.so")
}

func TestModuleSuffix(t *testing.T) {
	assert.Equal(t, ".so", ModuleSuffix(platformLinux))
	assert.Equal(t, ".so", ModuleSuffix(platformDarwin))
	assert.Equal(t, ".pyd", ModuleSuffix(platformWindows))
}
