// Package profbuild produces the package descriptor for the Cloud Profiler
// Python agent and compiles its optional native extension.
//
// The descriptor is assembled from three inputs:
//   - the host platform, which decides whether the native extension is
//     declared at all (Platform Gate)
//   - a sidecar version file holding a single `__version__ = '<value>'`
//     declaration (Version Resolver)
//   - static package metadata plus a documentation file used verbatim as the
//     long description
//
// # Basic Usage
//
//	var diag bytes.Buffer
//	desc, err := profbuild.Assemble(profbuild.AssembleOptions{
//	    Root:        "/path/to/cloud-profiler-python",
//	    Platform:    profbuild.DetectPlatform(),
//	    Diagnostics: &diag,
//	})
//	if err != nil {
//	    return err // missing README.md, missing or malformed version file
//	}
//	err = desc.Encode(os.Stdout, profbuild.FormatJSON)
//
// # Platform Support
//
// Linux hosts get the full `googlecloudprofiler._profiler` extension. Darwin
// hosts get a dependency-only package and a "limited support" diagnostic: wall
// profiling works, CPU profiling does not. Every other host gets a
// dependency-only package and an "unsupported platform" diagnostic. Neither
// case fails the build.
//
// # Building the Extension
//
// Declared extensions are compiled by a BuilderFactory. The standard factory
// knows about C++ and C sources:
//
//	factory := profbuild.NewBuilderFactory()
//	results, err := factory.BuildAllExtensions(ctx, &profbuild.BuildConfig{
//	    Root:      root,
//	    OutputDir: "build",
//	}, desc.ExtModules)
package profbuild
