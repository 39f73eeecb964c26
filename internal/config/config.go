// Package config loads profbuild settings from profbuild.toml and
// PROFBUILD_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the config file looked up in the project root
	// (without extension).
	ConfigFileName = "profbuild"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "toml"
	// EnvPrefix prefixes environment overrides (PROFBUILD_PLATFORM, ...).
	EnvPrefix = "PROFBUILD"
)

// Config is the build configuration.
type Config struct {
	// Platform overrides the detected host identifier when set.
	Platform string `mapstructure:"platform"`

	VersionFile       string `mapstructure:"version_file" validate:"required"`
	DocumentationFile string `mapstructure:"documentation_file" validate:"required"`
	SourceDir         string `mapstructure:"source_dir" validate:"required"`
	ModuleName        string `mapstructure:"module_name" validate:"required"`
	Format            string `mapstructure:"format" validate:"oneof=json toml yaml yml"`

	Package PackageConfig `mapstructure:"package"`
	Build   BuildConfig   `mapstructure:"build"`
}

// PackageConfig overrides the static package metadata. Empty fields keep
// the agent's defaults.
type PackageConfig struct {
	Name         string   `mapstructure:"name"`
	Description  string   `mapstructure:"description"`
	URL          string   `mapstructure:"url" validate:"omitempty,url"`
	Author       string   `mapstructure:"author"`
	License      string   `mapstructure:"license"`
	Keywords     string   `mapstructure:"keywords"`
	Dependencies []string `mapstructure:"dependencies" validate:"omitempty,dive,required"`
	Classifiers  []string `mapstructure:"classifiers" validate:"omitempty,dive,required"`
}

// BuildConfig controls extension compilation.
type BuildConfig struct {
	OutputDir  string `mapstructure:"output_dir" validate:"required"`
	InstallDir string `mapstructure:"install_dir"`
	Compiler   string `mapstructure:"compiler"`
	// PythonConfig is the python-config binary of the target interpreter,
	// queried for the header include flags.
	PythonConfig string `mapstructure:"python_config"`
	Verbose      bool   `mapstructure:"verbose"`
}

// LoadOptions controls where Load looks for the config file.
type LoadOptions struct {
	// ConfigFile is an explicit file; it must exist.
	ConfigFile string
	// Dir is searched for profbuild.toml when ConfigFile is empty. A missing
	// file there is not an error.
	Dir string
}

// DefaultConfig returns the settings matching the agent's repository layout.
func DefaultConfig() *Config {
	return &Config{
		VersionFile:       "googlecloudprofiler/__version__.py",
		DocumentationFile: "README.md",
		SourceDir:         "googlecloudprofiler/src",
		ModuleName:        "googlecloudprofiler._profiler",
		Format:            "json",
		Build: BuildConfig{
			OutputDir: "build",
		},
	}
}

// Load reads the configuration and validates it. It returns the config and
// the path of the file used, empty when only defaults and the environment
// applied.
func Load(opts LoadOptions) (*Config, string, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("platform", defaults.Platform)
	v.SetDefault("version_file", defaults.VersionFile)
	v.SetDefault("documentation_file", defaults.DocumentationFile)
	v.SetDefault("source_dir", defaults.SourceDir)
	v.SetDefault("module_name", defaults.ModuleName)
	v.SetDefault("format", defaults.Format)
	v.SetDefault("package.name", "")
	v.SetDefault("package.description", "")
	v.SetDefault("package.url", "")
	v.SetDefault("package.author", "")
	v.SetDefault("package.license", "")
	v.SetDefault("package.keywords", "")
	v.SetDefault("package.dependencies", []string{})
	v.SetDefault("package.classifiers", []string{})
	v.SetDefault("build.output_dir", defaults.Build.OutputDir)
	v.SetDefault("build.install_dir", defaults.Build.InstallDir)
	v.SetDefault("build.compiler", defaults.Build.Compiler)
	v.SetDefault("build.python_config", defaults.Build.PythonConfig)
	v.SetDefault("build.verbose", defaults.Build.Verbose)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath := ""

	if opts.ConfigFile != "" {
		if !fileExists(opts.ConfigFile) {
			return nil, "", fmt.Errorf("config file not found: %s", opts.ConfigFile)
		}
		v.SetConfigFile(opts.ConfigFile)
		if filepath.Ext(opts.ConfigFile) == "" {
			v.SetConfigType(ConfigFileExt)
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("failed to read config %s: %w", opts.ConfigFile, err)
		}
		resolvedPath = opts.ConfigFile
	} else {
		candidate := filepath.Join(opts.Dir, ConfigFileName+"."+ConfigFileExt)
		if fileExists(candidate) {
			v.SetConfigFile(candidate)
			if err := v.ReadInConfig(); err != nil {
				return nil, "", fmt.Errorf("failed to read config %s: %w", candidate, err)
			}
			resolvedPath = candidate
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, "", err
	}

	return &cfg, resolvedPath, nil
}

// Validate checks required fields and enumerations.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
