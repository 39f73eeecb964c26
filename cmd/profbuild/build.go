package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	profbuild "github.com/contriboss/cloud-profiler-build"
)

func newBuildCmd(a *app) *cobra.Command {
	var (
		outputDir  string
		installDir string
		compiler     string
		pythonConfig string
		clean        bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile the native extension declared for this platform",
		Long: `Assemble the descriptor and compile each declared native extension.

On platforms without a native extension this succeeds without compiling
anything.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			desc, err := a.assemble(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(desc.ExtModules) == 0 {
				fmt.Fprintf(out, "no native extension declared for %s; nothing to build\n", a.platformIdentifier())
				return nil
			}

			config := a.buildConfig()
			config.OutputDir = firstNonEmpty(outputDir, config.OutputDir)
			config.InstallDir = firstNonEmpty(installDir, config.InstallDir)
			config.Compiler = firstNonEmpty(compiler, config.Compiler)
			config.PythonConfig = firstNonEmpty(pythonConfig, config.PythonConfig)
			config.CleanFirst = clean
			config.StopOnFailure = true

			factory := profbuild.NewBuilderFactory().WithLogger(a.logger)
			results, err := factory.BuildAllExtensions(cmd.Context(), config, desc.ExtModules)

			for _, result := range results {
				if a.verbose && len(result.Output) > 0 {
					fmt.Fprintln(cmd.ErrOrStderr(), SubtitleStyle.Render(strings.Join(result.Output, "\n")))
				}
				if !result.Success {
					continue
				}
				fmt.Fprintln(out, SuccessStyle.Render(fmt.Sprintf("built %s: %s", result.Module, strings.Join(result.Extensions, ", "))))
				for _, path := range result.Installed {
					fmt.Fprintf(out, "installed %s\n", path)
				}
			}

			if err != nil {
				return &ExitError{Code: exitBuildFailed, Err: err}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for compiled modules (default from config)")
	cmd.Flags().StringVar(&installDir, "install-dir", "", "copy compiled modules into this directory")
	cmd.Flags().StringVar(&compiler, "compiler", "", "compiler binary (default $CXX or c++/g++/clang++)")
	cmd.Flags().StringVar(&pythonConfig, "python-config", "", "python-config binary reporting header flags (default python3-config)")
	cmd.Flags().BoolVar(&clean, "clean", false, "remove previous outputs before building")

	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
