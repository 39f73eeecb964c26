package profbuild

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleLinuxEndToEnd(t *testing.T) {
	root := newAgentTree(t, "2.0.1")
	var diag bytes.Buffer

	desc, err := Assemble(AssembleOptions{
		Root:        root,
		Platform:    "Linux-5.10",
		Diagnostics: &diag,
	})
	require.NoError(t, err)

	assert.Equal(t, VersionString("2.0.1"), desc.Version)
	assert.Equal(t, "google-cloud-profiler", desc.Name)
	assert.Equal(t, "Google Cloud Profiler Python Agent", desc.Description)
	assert.Equal(t, "# Cloud Profiler\n\nPython agent.\n", desc.LongDescription)
	assert.Equal(t, "text/markdown", desc.LongDescriptionContentType)
	assert.Equal(t, []string{"wheel"}, desc.SetupRequires)
	assert.Equal(t, []string{"googlecloudprofiler"}, desc.Packages)
	assert.Empty(t, diag.String())

	require.Len(t, desc.ExtModules, 1)
	assert.Equal(t, DefaultModuleName, desc.ExtModules[0].Name)
	assert.Equal(t, []string{
		"googlecloudprofiler/src/clock.cc",
		"googlecloudprofiler/src/profiler.cc",
	}, desc.ExtModules[0].Sources)
}

func TestAssembleDependencyOrder(t *testing.T) {
	desc, err := Assemble(AssembleOptions{Root: newAgentTree(t, "1.0.0"), Platform: "linux"})
	require.NoError(t, err)

	var deps []string
	for _, dep := range desc.InstallRequires {
		deps = append(deps, dep.String())
	}
	assert.Equal(t, []string{
		"google-api-python-client",
		"google-auth>=1.0.0",
		"google-auth-httplib2",
		"protobuf",
		"requests",
	}, deps)
}

func TestAssembleWithoutExtension(t *testing.T) {
	testCases := []struct {
		platform PlatformIdentifier
		message  string
	}{
		{"darwin-23.1.0", "limited support for darwin-23.1.0"},
		{"windows", "windows is not a supported operating system"},
	}

	for _, tc := range testCases {
		t.Run(string(tc.platform), func(t *testing.T) {
			var diag bytes.Buffer

			desc, err := Assemble(AssembleOptions{
				Root:        newAgentTree(t, "1.4"),
				Platform:    tc.platform,
				Diagnostics: &diag,
			})
			require.NoError(t, err)

			assert.Empty(t, desc.ExtModules)
			assert.NotNil(t, desc.ExtModules)
			assert.Equal(t, VersionString("1.4"), desc.Version)
			assert.Contains(t, diag.String(), tc.message)
		})
	}
}

func TestAssembleMissingDocumentation(t *testing.T) {
	root := newAgentTree(t, "1.0.0")
	require.NoError(t, os.Remove(filepath.Join(root, "README.md")))

	desc, err := Assemble(AssembleOptions{Root: root, Platform: "linux"})

	require.Error(t, err)
	assert.Nil(t, desc)
	assert.ErrorIs(t, err, ErrMissingDocumentationFile)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestAssembleVersionFailures(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		root := newAgentTree(t, "1.0.0")
		require.NoError(t, os.Remove(filepath.Join(root, filepath.FromSlash(DefaultVersionFile))))

		desc, err := Assemble(AssembleOptions{Root: root, Platform: "linux"})
		require.Error(t, err)
		assert.Nil(t, desc)
		assert.ErrorIs(t, err, ErrMissingVersionFile)
	})

	t.Run("malformed", func(t *testing.T) {
		root := newAgentTree(t, "v1.0.0")

		desc, err := Assemble(AssembleOptions{Root: root, Platform: "linux"})
		require.Error(t, err)
		assert.Nil(t, desc)
		assert.ErrorIs(t, err, ErrVersionPatternMismatch)
	})
}

func TestAssembleDiagnosticPrecedesFatalError(t *testing.T) {
	root := newAgentTree(t, "1.0.0")
	require.NoError(t, os.Remove(filepath.Join(root, "README.md")))
	var diag bytes.Buffer

	_, err := Assemble(AssembleOptions{Root: root, Platform: "darwin", Diagnostics: &diag})

	require.Error(t, err)
	assert.Contains(t, diag.String(), "limited support")
}

func TestAssembleCustomPathsAndMetadata(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/LONG.md", "long")
	writeFile(t, root, "pkg/VERSION.py", "__version__ = '9.9.9'\n")
	writeFile(t, root, "native/a.cc", "")

	meta := DefaultMetadata()
	meta.Name = "custom-agent"

	var logs bytes.Buffer
	logger := log.NewWithOptions(&logs, log.Options{Level: log.DebugLevel})

	desc, err := Assemble(AssembleOptions{
		Root:              root,
		Platform:          "linux",
		VersionFile:       "pkg/VERSION.py",
		DocumentationFile: "docs/LONG.md",
		SourceDir:         "native",
		ModuleName:        "custom._native",
		Metadata:          meta,
		Logger:            logger,
	})
	require.NoError(t, err)

	assert.Equal(t, "custom-agent", desc.Name)
	assert.Equal(t, "long", desc.LongDescription)
	assert.Equal(t, VersionString("9.9.9"), desc.Version)
	require.Len(t, desc.ExtModules, 1)
	assert.Equal(t, "custom._native", desc.ExtModules[0].Name)
	assert.Equal(t, []string{"native/a.cc"}, desc.ExtModules[0].Sources)
	assert.Contains(t, logs.String(), "resolved version")
}

func TestParseDependency(t *testing.T) {
	testCases := []struct {
		input string
		want  Dependency
	}{
		{"protobuf", Dependency{Name: "protobuf"}},
		{"google-auth>=1.0.0", Dependency{Name: "google-auth", MinVersion: "1.0.0"}},
		{" requests >= 2.0 ", Dependency{Name: "requests", MinVersion: "2.0"}},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseDependency(tc.input))
		})
	}

	var dep Dependency
	require.Error(t, dep.UnmarshalText([]byte("  ")))
	require.NoError(t, dep.UnmarshalText([]byte("google-auth>=1.0.0")))
	assert.Equal(t, "google-auth>=1.0.0", dep.String())
}

func TestDefaultMetadataIsFreshCopy(t *testing.T) {
	first := DefaultMetadata()
	first.InstallRequires[0].Name = "mutated"
	first.Classifiers = nil

	second := DefaultMetadata()
	assert.Equal(t, "google-api-python-client", second.InstallRequires[0].Name)
	assert.Len(t, second.Classifiers, 10)
}
