package profbuild

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// DefaultDocumentationFile is read verbatim into the long description.
const DefaultDocumentationFile = "README.md"

// ErrMissingDocumentationFile is returned when the documentation file cannot
// be read. The underlying I/O error stays in the chain.
var ErrMissingDocumentationFile = errors.New("documentation file unreadable")

// Dependency is a runtime requirement, optionally with a minimum version.
// Its text form is "name" or "name>=min".
type Dependency struct {
	Name       string
	MinVersion string
}

// ParseDependency parses "name" or "name>=min".
func ParseDependency(s string) Dependency {
	name, minVersion, found := strings.Cut(strings.TrimSpace(s), ">=")
	if !found {
		return Dependency{Name: name}
	}
	return Dependency{
		Name:       strings.TrimSpace(name),
		MinVersion: strings.TrimSpace(minVersion),
	}
}

func (d Dependency) String() string {
	if d.MinVersion == "" {
		return d.Name
	}
	return d.Name + ">=" + d.MinVersion
}

// MarshalText encodes the dependency in its requirement form.
func (d Dependency) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes "name" or "name>=min".
func (d *Dependency) UnmarshalText(text []byte) error {
	parsed := ParseDependency(string(text))
	if parsed.Name == "" {
		return fmt.Errorf("empty dependency name in %q", text)
	}
	*d = parsed
	return nil
}

// Metadata is the static part of the descriptor.
type Metadata struct {
	Name                       string
	Description                string
	LongDescriptionContentType string
	URL                        string
	Author                     string
	License                    string
	Keywords                   string
	InstallRequires            []Dependency
	SetupRequires              []string
	Packages                   []string
	Classifiers                []string
}

// DefaultMetadata returns a fresh copy of the profiler agent's metadata.
func DefaultMetadata() Metadata {
	return Metadata{
		Name:                       "google-cloud-profiler",
		Description:                "Google Cloud Profiler Python Agent",
		LongDescriptionContentType: "text/markdown",
		URL:                        "https://github.com/GoogleCloudPlatform/cloud-profiler-python",
		Author:                     "Google LLC",
		License:                    "Apache License, Version 2.0",
		Keywords:                   "google cloud profiler",
		InstallRequires: []Dependency{
			{Name: "google-api-python-client"},
			{Name: "google-auth", MinVersion: "1.0.0"},
			{Name: "google-auth-httplib2"},
			{Name: "protobuf"},
			{Name: "requests"},
		},
		SetupRequires: []string{"wheel"},
		Packages:      []string{"googlecloudprofiler"},
		Classifiers: []string{
			"Development Status :: 5 - Production/Stable",
			"Intended Audience :: Developers",
			"License :: OSI Approved :: Apache Software License",
			"Programming Language :: Python :: 2.7",
			"Programming Language :: Python :: 3.2",
			"Programming Language :: Python :: 3.3",
			"Programming Language :: Python :: 3.4",
			"Programming Language :: Python :: 3.5",
			"Programming Language :: Python :: 3.6",
			"Programming Language :: Python :: 3.7",
		},
	}
}

// PackageDescriptor is the metadata handed to the packaging toolchain.
type PackageDescriptor struct {
	Name                       string           `json:"name" toml:"name" yaml:"name"`
	Version                    VersionString    `json:"version" toml:"version" yaml:"version"`
	Description                string           `json:"description" toml:"description" yaml:"description"`
	LongDescription            string           `json:"long_description" toml:"long_description" yaml:"long_description"`
	LongDescriptionContentType string           `json:"long_description_content_type" toml:"long_description_content_type" yaml:"long_description_content_type"`
	URL                        string           `json:"url" toml:"url" yaml:"url"`
	Author                     string           `json:"author" toml:"author" yaml:"author"`
	License                    string           `json:"license" toml:"license" yaml:"license"`
	Keywords                   string           `json:"keywords" toml:"keywords" yaml:"keywords"`
	InstallRequires            []Dependency     `json:"install_requires" toml:"install_requires" yaml:"install_requires"`
	SetupRequires              []string         `json:"setup_requires" toml:"setup_requires" yaml:"setup_requires"`
	Packages                   []string         `json:"packages" toml:"packages" yaml:"packages"`
	Classifiers                []string         `json:"classifiers" toml:"classifiers" yaml:"classifiers"`
	ExtModules                 []*ExtensionSpec `json:"ext_modules" toml:"ext_modules,omitempty" yaml:"ext_modules"`
}

// AssembleOptions controls Assemble. Zero values fall back to the defaults of
// the profiler agent layout.
type AssembleOptions struct {
	// Root is the project directory every relative path is resolved against.
	Root string

	// Platform is the host identifier. Empty means DetectPlatform().
	Platform PlatformIdentifier

	VersionFile       string
	DocumentationFile string
	SourceDir         string
	ModuleName        string

	// Metadata overrides DefaultMetadata() when Name is set.
	Metadata Metadata

	// Diagnostics receives platform advisories. Nil discards them.
	Diagnostics io.Writer

	// Logger receives debug records. Nil discards them.
	Logger *log.Logger
}

// Assemble builds the PackageDescriptor.
//
// The platform diagnostic is written first; then the documentation file and
// the version file are read. Any read failure or an invalid version
// declaration aborts assembly and no descriptor is returned.
func Assemble(opts AssembleOptions) (*PackageDescriptor, error) {
	logger := loggerOrDiscard(opts.Logger)

	platform := opts.Platform
	if platform == "" {
		platform = DetectPlatform()
	}

	ext, err := NewExtensionSpec(opts.Root, opts.SourceDir, opts.ModuleName)
	if err != nil {
		return nil, err
	}
	logger.Debug("globbed extension sources", "module", ext.Name, "sources", len(ext.Sources))

	decision := Gate(platform, ext)
	logger.Debug("platform gate", "platform", platform, "support", decision.Support, "extensions", len(decision.Extensions))
	if err := decision.WriteDiagnostic(opts.Diagnostics); err != nil {
		logger.Warn("failed to write platform diagnostic", "err", err)
	}

	docPath := resolvePath(opts.Root, opts.DocumentationFile, DefaultDocumentationFile)
	longDescription, err := os.ReadFile(docPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingDocumentationFile, err)
	}

	version, err := ResolveVersion(resolvePath(opts.Root, opts.VersionFile, DefaultVersionFile))
	if err != nil {
		return nil, err
	}
	logger.Debug("resolved version", "version", version)

	meta := opts.Metadata
	if meta.Name == "" {
		meta = DefaultMetadata()
	}

	return &PackageDescriptor{
		Name:                       meta.Name,
		Version:                    version,
		Description:                meta.Description,
		LongDescription:            string(longDescription),
		LongDescriptionContentType: meta.LongDescriptionContentType,
		URL:                        meta.URL,
		Author:                     meta.Author,
		License:                    meta.License,
		Keywords:                   meta.Keywords,
		InstallRequires:            meta.InstallRequires,
		SetupRequires:              meta.SetupRequires,
		Packages:                   meta.Packages,
		Classifiers:                meta.Classifiers,
		ExtModules:                 append([]*ExtensionSpec{}, decision.Extensions...),
	}, nil
}

func resolvePath(root, path, fallback string) string {
	if path == "" {
		path = fallback
	}
	if filepath.IsAbs(path) || root == "" {
		return path
	}
	return filepath.Join(root, path)
}

func loggerOrDiscard(logger *log.Logger) *log.Logger {
	if logger != nil {
		return logger
	}
	return log.New(io.Discard)
}
