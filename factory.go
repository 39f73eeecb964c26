package profbuild

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
)

// BuilderFactory manages the registration and selection of extension builders.
//
// # Usage
//
//	factory := profbuild.NewBuilderFactory()
//	results, err := factory.BuildAllExtensions(ctx, config, desc.ExtModules)
//
// # Builder Selection
//
// For each extension the factory calls CanBuild() on the registered builders
// in order and uses the first that accepts it. An extension no builder
// accepts is an error.
//
// # Thread Safety
//
// BuilderFactory is NOT thread-safe for registration.
// Register all builders before concurrent use.
type BuilderFactory struct {
	builders []Builder
	logger   *log.Logger
}

// NewBuilderFactory creates a factory with the C++ and C builders registered.
func NewBuilderFactory() *BuilderFactory {
	factory := &BuilderFactory{}

	factory.Register(NewCxxBuilder())
	factory.Register(NewCBuilder())

	return factory
}

// WithLogger sets the logger used for per-extension debug records.
func (f *BuilderFactory) WithLogger(logger *log.Logger) *BuilderFactory {
	f.logger = logger
	return f
}

// Register adds a builder. Builders are checked in registration order.
//
// Not thread-safe. Register all builders before concurrent use.
func (f *BuilderFactory) Register(builder Builder) {
	f.builders = append(f.builders, builder)
}

// BuilderFor returns the first registered builder that accepts ext.
func (f *BuilderFactory) BuilderFor(ext *ExtensionSpec) (Builder, error) {
	for _, builder := range f.builders {
		if builder.CanBuild(ext) {
			return builder, nil
		}
	}

	return nil, fmt.Errorf("no builder found for extension %s (language %q)", ext.Name, ext.Language)
}

// ListBuilders returns a copy of all registered builders.
func (f *BuilderFactory) ListBuilders() []Builder {
	return append([]Builder{}, f.builders...)
}

// BuildAllExtensions builds the extensions in sequence.
//
// It returns one BuildResult per processed extension and the first error
// encountered. With config.StopOnFailure, processing stops after the first
// failure; otherwise every extension is attempted. A canceled context stops
// processing immediately and its error is recorded as a failed result.
//
// An empty extension list is a successful no-op: the package ships without
// a compiled module.
func (f *BuilderFactory) BuildAllExtensions(ctx context.Context, config *BuildConfig, extensions []*ExtensionSpec) ([]*BuildResult, error) {
	if len(extensions) == 0 {
		return nil, nil
	}

	logger := loggerOrDiscard(f.logger)

	var results []*BuildResult
	var firstError error

	for _, ext := range extensions {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if firstError == nil {
				firstError = ctxErr
			}
			results = append(results, &BuildResult{
				Module:  ext.Name,
				Success: false,
				Error:   ctxErr,
			})
			break
		}

		builder, err := f.BuilderFor(ext)
		if err != nil {
			if firstError == nil {
				firstError = err
			}
			results = append(results, &BuildResult{
				Module:  ext.Name,
				Success: false,
				Error:   err,
			})
			if config.StopOnFailure {
				break
			}
			continue
		}

		logger.Debug("building extension", "module", ext.Name, "builder", builder.Name(), "sources", len(ext.Sources))

		result, err := builder.Build(ctx, config, ext)
		if err != nil {
			if firstError == nil {
				firstError = err
			}
			if result == nil {
				result = &BuildResult{
					Success: false,
					Error:   err,
				}
			}
		}
		result.Module = ext.Name

		results = append(results, result)

		if !result.Success && config.StopOnFailure {
			break
		}
	}

	return results, firstError
}
