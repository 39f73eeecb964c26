package profbuild

import "context"

// Builder compiles ExtensionSpecs written in a particular language.
//
// # Builder Lifecycle
//
//  1. CanBuild() - Factory calls this to find the builder for an extension
//  2. Build() - Factory calls this to compile the extension
//  3. Clean() - Optional removal of build outputs
//
// # Thread Safety
//
// Builder implementations should be stateless; the same instance may build
// several extensions concurrently.
type Builder interface {
	// Name returns the human-readable name of this builder, used in errors
	// and logs. Examples: "C++", "C"
	Name() string

	// CanBuild reports whether this builder handles the extension's language.
	CanBuild(ext *ExtensionSpec) bool

	// Build compiles the extension and returns the result.
	//
	// Returns:
	//   - BuildResult with Success=true and Extensions list on success
	//   - BuildResult with Success=false and Error on failure
	Build(ctx context.Context, config *BuildConfig, ext *ExtensionSpec) (*BuildResult, error)

	// Clean removes build outputs. Returns nil when there is nothing to clean.
	Clean(ctx context.Context, config *BuildConfig, ext *ExtensionSpec) error
}
