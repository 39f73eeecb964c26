package profbuild

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultOutputDir is where compiled modules go when BuildConfig.OutputDir
// is empty.
const DefaultOutputDir = "build"

// CompilerBuilder compiles an ExtensionSpec into a shared module with a
// single compiler driver invocation (gcc/clang style command line).
//
// # Command Line
//
//	<compiler> -shared -fPIC -I<include>... <python includes>... \
//	    <compile args> <sources>... <build args> -o <output> <link args>
//
// Sources and include directories are relative to BuildConfig.Root, which
// is the compiler's working directory.
//
// # Python Headers
//
// The extension sources include <Python.h>. The header flags come from
// BuildConfig.PythonIncludes when set, otherwise from running
// "<python-config> --includes" (BuildConfig.PythonConfig, or python3-config
// found on PATH).
type CompilerBuilder struct {
	name      string
	languages []string
	compiler  ToolRequirement
	envVar    string
	headers   ToolRequirement
}

// pythonConfigTool reports the include flags of the target interpreter.
var pythonConfigTool = ToolRequirement{
	Name:         "python3-config",
	Alternatives: []string{"python-config"},
	Purpose:      "Python header locations for the native extension",
}

// CompilerBuilderConfig defines configuration for a CompilerBuilder.
type CompilerBuilderConfig struct {
	// Name is the human-readable builder name (e.g., "C++")
	Name string

	// Languages are the ExtensionSpec.Language tags this builder accepts
	Languages []string

	// Compiler is the compiler driver and its alternatives
	Compiler ToolRequirement

	// EnvVar names the environment variable that overrides the compiler
	// (e.g., "CXX")
	EnvVar string

	// Headers is the tool that reports interpreter include flags via
	// --includes. A zero value disables header lookup.
	Headers ToolRequirement
}

// NewCompilerBuilder creates a CompilerBuilder from configuration.
func NewCompilerBuilder(config *CompilerBuilderConfig) *CompilerBuilder {
	return &CompilerBuilder{
		name:      config.Name,
		languages: config.Languages,
		compiler:  config.Compiler,
		envVar:    config.EnvVar,
		headers:   config.Headers,
	}
}

// NewCxxBuilder creates the builder for C++ extensions.
func NewCxxBuilder() *CompilerBuilder {
	return NewCompilerBuilder(&CompilerBuilderConfig{
		Name:      "C++",
		Languages: []string{languageCxx, "cpp", "cxx"},
		Compiler: ToolRequirement{
			Name:         "c++",
			Alternatives: []string{"g++", "clang++"},
			Purpose:      "C++ compiler for the native extension",
		},
		EnvVar:  "CXX",
		Headers: pythonConfigTool,
	})
}

// NewCBuilder creates the builder for C extensions.
func NewCBuilder() *CompilerBuilder {
	return NewCompilerBuilder(&CompilerBuilderConfig{
		Name:      "C",
		Languages: []string{languageC},
		Compiler: ToolRequirement{
			Name:         "cc",
			Alternatives: []string{"gcc", "clang"},
			Purpose:      "C compiler for the native extension",
		},
		EnvVar:  "CC",
		Headers: pythonConfigTool,
	})
}

// Name returns the builder name
func (b *CompilerBuilder) Name() string {
	return b.name
}

// RequiredTools returns the compiler and header tool requirements
func (b *CompilerBuilder) RequiredTools() []ToolRequirement {
	reqs := []ToolRequirement{b.compiler}
	if b.headers.Name != "" {
		reqs = append(reqs, b.headers)
	}
	return reqs
}

// ToolsFor returns the requirements still looked up on PATH under config:
// an explicit compiler (or the compiler env override) drops the compiler,
// and explicit Python includes or python-config drop the header tool.
func (b *CompilerBuilder) ToolsFor(config *BuildConfig) []ToolRequirement {
	var reqs []ToolRequirement
	if config.Compiler == "" && os.Getenv(b.envVar) == "" {
		reqs = append(reqs, b.compiler)
	}
	if b.headers.Name != "" && config.PythonConfig == "" && len(config.PythonIncludes) == 0 {
		reqs = append(reqs, b.headers)
	}
	return reqs
}

// CheckTools verifies that a compiler and python-config are available
func (b *CompilerBuilder) CheckTools() error {
	return CheckRequiredTools(b.RequiredTools())
}

// CanBuild checks the extension's language tag
func (b *CompilerBuilder) CanBuild(ext *ExtensionSpec) bool {
	language := strings.ToLower(ext.Language)
	for _, l := range b.languages {
		if l == language {
			return true
		}
	}
	return false
}

// Build compiles the extension
func (b *CompilerBuilder) Build(ctx context.Context, config *BuildConfig, ext *ExtensionSpec) (*BuildResult, error) {
	return runCommonBuild(ctx, config, ext, CommonBuildSteps{
		ConfigureFunc: b.prepare,
		BuildFunc:     b.runCompiler,
		FindFunc:      b.findBuiltModule,
	})
}

// Clean removes the compiled module
func (b *CompilerBuilder) Clean(_ context.Context, config *BuildConfig, ext *ExtensionSpec) error {
	err := os.Remove(modulePath(config, ext))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// prepare verifies the toolchain and creates the output directory
func (b *CompilerBuilder) prepare(ctx context.Context, config *BuildConfig, ext *ExtensionSpec, result *BuildResult) error {
	if len(ext.Sources) == 0 {
		return BuildError(b.name, result.Output, fmt.Errorf("extension %s has no sources", ext.Name))
	}

	tools := b.ToolsFor(config)
	if missing := MissingTools(tools); len(missing) > 0 {
		result.MissingDependencies = missing
		return BuildError(b.name, result.Output, CheckRequiredTools(tools))
	}

	if config.CleanFirst {
		if err := b.Clean(ctx, config, ext); err != nil {
			return BuildError(b.name, result.Output, fmt.Errorf("failed to clean previous output: %w", err))
		}
	}

	output := modulePath(config, ext)
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return BuildError(b.name, result.Output, fmt.Errorf("failed to create output directory: %w", err))
	}

	return nil
}

// runCompiler invokes the compiler driver
func (b *CompilerBuilder) runCompiler(ctx context.Context, config *BuildConfig, ext *ExtensionSpec, result *BuildResult) error {
	compiler := b.compilerPath(config)

	// The compiler runs in Root, so a relative output path would be resolved twice.
	output, err := filepath.Abs(modulePath(config, ext))
	if err != nil {
		return BuildError(b.name, result.Output, err)
	}

	includes, err := b.pythonIncludes(ctx, config)
	if err != nil {
		return BuildError(b.name, result.Output, err)
	}
	args := b.compileArgs(config, ext, includes, output)

	//nolint:gosec // Compiler and arguments come from the build configuration
	cmd := exec.CommandContext(ctx, compiler, args...)
	cmd.Dir = config.Root
	cmd.Env = buildEnv(config)

	combined, err := cmd.CombinedOutput()
	if trimmed := strings.TrimRight(string(combined), "\n"); trimmed != "" {
		result.Output = append(result.Output, strings.Split(trimmed, "\n")...)
	}

	if config.Verbose {
		result.Output = append(result.Output,
			fmt.Sprintf("Running: %s %s", compiler, strings.Join(args, " ")),
			fmt.Sprintf("Working directory: %s", config.Root))
	}

	if err != nil {
		return BuildError(b.name, result.Output, err)
	}

	return nil
}

// findBuiltModule returns the produced module relative to the project root
func (b *CompilerBuilder) findBuiltModule(config *BuildConfig, ext *ExtensionSpec) ([]string, error) {
	output := modulePath(config, ext)
	info, err := os.Stat(output)
	if err != nil || !info.Mode().IsRegular() {
		return nil, fmt.Errorf("compiler produced no module at %s", output)
	}

	return []string{relativeToRoot(config.Root, output)}, nil
}

// pythonIncludes returns the include flags for the Python headers
func (b *CompilerBuilder) pythonIncludes(ctx context.Context, config *BuildConfig) ([]string, error) {
	if len(config.PythonIncludes) > 0 {
		return config.PythonIncludes, nil
	}
	if b.headers.Name == "" {
		return nil, nil
	}

	tool := config.PythonConfig
	if tool == "" {
		tool = lookupTool(b.headers)
	}

	//nolint:gosec // Tool comes from the build configuration or PATH
	cmd := exec.CommandContext(ctx, tool, "--includes")
	cmd.Dir = config.Root
	cmd.Env = buildEnv(config)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s --includes failed: %w", tool, err)
	}

	flags := strings.Fields(string(out))
	if len(flags) == 0 {
		return nil, fmt.Errorf("%s --includes reported no include flags", tool)
	}

	return uniqueStrings(flags), nil
}

// compileArgs assembles the compiler driver arguments
func (b *CompilerBuilder) compileArgs(config *BuildConfig, ext *ExtensionSpec, includes []string, output string) []string {
	args := []string{"-shared", "-fPIC"}

	if targetOS(config) == platformDarwin {
		args = append(args, "-undefined", "dynamic_lookup")
	}

	for _, dir := range ext.IncludeDirs {
		args = append(args, "-I"+dir)
	}
	args = append(args, includes...)

	args = append(args, ext.ExtraCompileArgs...)
	args = append(args, ext.Sources...)
	args = append(args, config.BuildArgs...)
	args = append(args, "-o", output)
	args = append(args, ext.ExtraLinkArgs...)

	return args
}

// compilerPath resolves the compiler binary: explicit config, then the
// environment override, then the first requirement found on PATH.
func (b *CompilerBuilder) compilerPath(config *BuildConfig) string {
	if config.Compiler != "" {
		return config.Compiler
	}
	if compiler := os.Getenv(b.envVar); compiler != "" {
		return compiler
	}

	return lookupTool(b.compiler)
}

// lookupTool returns the first name of req found on PATH, or its primary
// name when none is.
func lookupTool(req ToolRequirement) string {
	candidates := append([]string{req.Name}, req.Alternatives...)
	for _, candidate := range candidates {
		if path, err := execLookPath(candidate); err == nil {
			return path
		}
	}

	return req.Name
}

func buildEnv(config *BuildConfig) []string {
	env := os.Environ()
	for key, value := range config.Env {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}
	return env
}

func targetOS(config *BuildConfig) string {
	if config.GOOS != "" {
		return config.GOOS
	}
	return runtime.GOOS
}

// modulePath is the compiled module's location: the module path under the
// output directory, with the platform's module suffix.
func modulePath(config *BuildConfig, ext *ExtensionSpec) string {
	outputDir := resolvePath(config.Root, config.OutputDir, DefaultOutputDir)
	return filepath.Join(outputDir, filepath.FromSlash(ext.ModulePath())+ModuleSuffix(targetOS(config)))
}

func relativeToRoot(root, path string) string {
	if root != "" {
		if rel, err := filepath.Rel(root, path); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(path)
}
