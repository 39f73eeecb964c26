package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, path, err := Load(LoadOptions{Dir: t.TempDir()})
	require.NoError(t, err)

	assert.Empty(t, path)
	assert.Equal(t, DefaultConfig().VersionFile, cfg.VersionFile)
	assert.Equal(t, "README.md", cfg.DocumentationFile)
	assert.Equal(t, "googlecloudprofiler/src", cfg.SourceDir)
	assert.Equal(t, "googlecloudprofiler._profiler", cfg.ModuleName)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "build", cfg.Build.OutputDir)
	assert.Empty(t, cfg.Package.Dependencies)
}

func TestLoadProjectFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "profbuild.toml", `
platform = "linux-5.10"
format = "yaml"

[package]
name = "custom-profiler"
url = "https://example.com/agent"
dependencies = ["protobuf", "google-auth>=2.0.0"]

[build]
output_dir = "out"
install_dir = "site-packages"
python_config = "/opt/python3.12/bin/python3-config"
verbose = true
`)

	cfg, resolved, err := Load(LoadOptions{Dir: dir})
	require.NoError(t, err)

	assert.Equal(t, path, resolved)
	assert.Equal(t, "linux-5.10", cfg.Platform)
	assert.Equal(t, "yaml", cfg.Format)
	assert.Equal(t, "custom-profiler", cfg.Package.Name)
	assert.Equal(t, []string{"protobuf", "google-auth>=2.0.0"}, cfg.Package.Dependencies)
	assert.Equal(t, "out", cfg.Build.OutputDir)
	assert.Equal(t, "site-packages", cfg.Build.InstallDir)
	assert.Equal(t, "/opt/python3.12/bin/python3-config", cfg.Build.PythonConfig)
	assert.True(t, cfg.Build.Verbose)
	assert.Equal(t, "README.md", cfg.DocumentationFile)
}

func TestLoadExplicitFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "release.toml", `module_name = "agent._native"`)

	cfg, resolved, err := Load(LoadOptions{ConfigFile: path, Dir: t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, path, resolved)
	assert.Equal(t, "agent._native", cfg.ModuleName)
}

func TestLoadExplicitFileMissing(t *testing.T) {
	_, _, err := Load(LoadOptions{ConfigFile: filepath.Join(t.TempDir(), "nope.toml")})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "profbuild.toml", "format = [unterminated")

	_, _, err := Load(LoadOptions{Dir: dir})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("PROFBUILD_PLATFORM", "darwin-23.1.0")
	t.Setenv("PROFBUILD_BUILD_OUTPUT_DIR", "env-out")
	t.Setenv("PROFBUILD_BUILD_PYTHON_CONFIG", "python3.13-config")

	cfg, _, err := Load(LoadOptions{Dir: t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, "darwin-23.1.0", cfg.Platform)
	assert.Equal(t, "env-out", cfg.Build.OutputDir)
	assert.Equal(t, "python3.13-config", cfg.Build.PythonConfig)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"bad format", func(c *Config) { c.Format = "xml" }, "Config.Format"},
		{"empty version file", func(c *Config) { c.VersionFile = "" }, "Config.VersionFile"},
		{"bad url", func(c *Config) { c.Package.URL = "not a url" }, "Config.Package.URL"},
		{"empty dependency", func(c *Config) { c.Package.Dependencies = []string{"protobuf", ""} }, "Config.Package.Dependencies[1]"},
		{"empty output dir", func(c *Config) { c.Build.OutputDir = "" }, "Config.Build.OutputDir"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)

			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}

	require.NoError(t, Validate(DefaultConfig()))
}
