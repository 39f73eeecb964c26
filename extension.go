package profbuild

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Defaults for the profiler's native module.
const (
	DefaultModuleName = "googlecloudprofiler._profiler"
	DefaultSourceDir  = "googlecloudprofiler/src"

	languageCxx = "c++"
	languageC   = "c"

	sourcePattern = "*.cc"
)

// Static linkage of the C++ runtime and libgcc. Alpine does not install
// libgcc_s.so.1 by default, so the module must not depend on it.
const (
	FlagStaticLibstdcxx = "-static-libstdc++"
	FlagStaticLibgcc    = "-static-libgcc"
)

// ExtensionSpec describes one native module compiled as part of packaging.
// It is built once per invocation and not modified afterwards.
type ExtensionSpec struct {
	// Name is the dotted module name (e.g. "googlecloudprofiler._profiler").
	Name string `json:"name" toml:"name" yaml:"name"`

	// Sources are slash-separated paths relative to the project root.
	Sources []string `json:"sources" toml:"sources" yaml:"sources"`

	IncludeDirs      []string `json:"include_dirs" toml:"include_dirs" yaml:"include_dirs"`
	Language         string   `json:"language" toml:"language" yaml:"language"`
	ExtraCompileArgs []string `json:"extra_compile_args" toml:"extra_compile_args" yaml:"extra_compile_args"`
	ExtraLinkArgs    []string `json:"extra_link_args" toml:"extra_link_args" yaml:"extra_link_args"`
}

// NewExtensionSpec builds the profiler extension spec.
//
// Sources are the `*.cc` files directly under sourceDir, resolved against
// root and sorted. An empty sourceDir or moduleName falls back to
// DefaultSourceDir and DefaultModuleName.
func NewExtensionSpec(root, sourceDir, moduleName string) (*ExtensionSpec, error) {
	if sourceDir == "" {
		sourceDir = DefaultSourceDir
	}
	if moduleName == "" {
		moduleName = DefaultModuleName
	}

	sources, err := globSources(root, sourceDir)
	if err != nil {
		return nil, err
	}

	return &ExtensionSpec{
		Name:             moduleName,
		Sources:          sources,
		IncludeDirs:      []string{filepath.ToSlash(sourceDir)},
		Language:         languageCxx,
		ExtraCompileArgs: []string{"-std=c++11"},
		ExtraLinkArgs:    []string{"-std=c++11", FlagStaticLibstdcxx, FlagStaticLibgcc},
	}, nil
}

func globSources(root, sourceDir string) ([]string, error) {
	pattern := filepath.Join(root, sourceDir, sourcePattern)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to glob pattern %s: %w", pattern, err)
	}

	sources := make([]string, 0, len(matches))
	for _, match := range matches {
		rel := match
		if root != "" {
			if r, relErr := filepath.Rel(root, match); relErr == nil {
				rel = r
			}
		}
		sources = append(sources, filepath.ToSlash(rel))
	}
	sort.Strings(sources)

	return sources, nil
}

// HasLinkArg reports whether flag is one of the link-time arguments.
func (e *ExtensionSpec) HasLinkArg(flag string) bool {
	for _, arg := range e.ExtraLinkArgs {
		if arg == flag {
			return true
		}
	}
	return false
}

// ModulePath converts the dotted module name into a relative path without
// suffix ("googlecloudprofiler._profiler" -> "googlecloudprofiler/_profiler").
func (e *ExtensionSpec) ModulePath() string {
	return strings.ReplaceAll(e.Name, ".", "/")
}
