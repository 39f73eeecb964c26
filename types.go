package profbuild

import "context"

// BuildResult contains the output and status of compiling one extension.
//
// After a build completes, this structure provides:
//   - Success status indicating if the build completed without errors
//   - Output lines captured from the compiler (stdout/stderr)
//   - Extensions list of produced module files, relative to the project root
//   - Error information if the build failed
type BuildResult struct {
	Module              string   // Dotted module name that was built
	Success             bool     // True if build completed successfully
	Output              []string // Lines of output from the compiler
	Extensions          []string // Paths to built module files
	Installed           []string // Paths the modules were copied to, if InstallDir is set
	Error               error    // Error if build failed, nil otherwise
	MissingDependencies []string // Names of build tools that were missing
}

// BuildConfig contains configuration for compiling declared extensions.
//
// Source paths:
//   - Root: Project root; extension sources and include dirs are relative to it
//   - OutputDir: Where modules are written (relative to Root unless absolute)
//   - InstallDir: Optional directory the built modules are copied into
//
// Toolchain:
//   - Compiler: Explicit compiler binary, overriding CXX/CC and PATH lookup
//   - BuildArgs: Extra arguments appended before the link arguments
//   - Env: Environment variables set during the build
//   - GOOS: Target OS for the module suffix and link mode (default runtime.GOOS)
//   - PythonConfig: python-config binary queried for header flags
//   - PythonIncludes: Explicit header flags, skipping python-config
//
// Behavior:
//   - Verbose: Record the compiler command line in the output
//   - CleanFirst: Remove previous outputs before building
//   - StopOnFailure: Stop after the first failed extension
type BuildConfig struct {
	// Source paths
	Root       string
	OutputDir  string
	InstallDir string

	// Toolchain
	Compiler  string
	BuildArgs []string
	Env       map[string]string
	GOOS      string

	// Python headers
	PythonConfig   string
	PythonIncludes []string

	// Build options
	Verbose    bool
	CleanFirst bool

	// Failure handling
	StopOnFailure bool
}

// CommonBuildSteps defines the 3-step build pattern shared by the builders:
//  1. Configure: Prepare the output directory and verify tools
//  2. Build: Run the compiler
//  3. Find: Locate the produced module files
type CommonBuildSteps struct {
	// ConfigureFunc prepares the build environment
	ConfigureFunc func(ctx context.Context, config *BuildConfig, ext *ExtensionSpec, result *BuildResult) error

	// BuildFunc compiles the extension
	BuildFunc func(ctx context.Context, config *BuildConfig, ext *ExtensionSpec, result *BuildResult) error

	// FindFunc locates the compiled files after the build completes
	FindFunc func(config *BuildConfig, ext *ExtensionSpec) ([]string, error)
}
