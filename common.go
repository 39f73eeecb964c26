package profbuild

import "context"

// runCommonBuild executes the 3-step build process for one extension.
//
// # Process Flow
//
//  1. Create empty BuildResult
//  2. Call ConfigureFunc to prepare the build
//  3. Call BuildFunc to compile the extension
//  4. Call FindFunc to locate compiled files
//  5. Copy the files into config.InstallDir when set
//  6. Return BuildResult with Success=true
//
// If any step fails, processing stops, result.Error is set and the error is
// returned with Success=false.
func runCommonBuild(ctx context.Context, config *BuildConfig, ext *ExtensionSpec, steps CommonBuildSteps) (*BuildResult, error) {
	result := &BuildResult{
		Module:  ext.Name,
		Success: false,
		Output:  []string{},
	}

	// Step 1: Configure/prepare the build
	if err := steps.ConfigureFunc(ctx, config, ext, result); err != nil {
		result.Error = err
		return result, err
	}

	// Step 2: Build/compile the extension
	if err := steps.BuildFunc(ctx, config, ext, result); err != nil {
		result.Error = err
		return result, err
	}

	// Step 3: Find the built extension files
	extensions, err := steps.FindFunc(config, ext)
	if err != nil {
		result.Error = err
		return result, err
	}
	result.Extensions = extensions

	installed, err := installExtensions(config, extensions)
	if err != nil {
		result.Error = err
		return result, err
	}
	result.Installed = installed

	result.Success = true
	return result, nil
}
