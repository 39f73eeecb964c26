package main

import (
	"fmt"

	"github.com/spf13/cobra"

	profbuild "github.com/contriboss/cloud-profiler-build"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report platform support and verify the extension toolchain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			desc, err := a.assemble(cmd)
			if err != nil {
				return err
			}

			platform := a.platformIdentifier()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "platform: %s (%s support)\n", platform, profbuild.Gate(platform, nil).Support)
			fmt.Fprintf(out, "version: %s\n", desc.Version)

			if len(desc.ExtModules) == 0 {
				fmt.Fprintln(out, SubtitleStyle.Render("no native extension declared; nothing to check"))
				return nil
			}

			config := a.buildConfig()
			factory := profbuild.NewBuilderFactory()
			for _, ext := range desc.ExtModules {
				builder, err := factory.BuilderFor(ext)
				if err != nil {
					return &ExitError{Code: exitBuildFailed, Err: err}
				}

				if err := checkBuilderTools(builder, config); err != nil {
					return &ExitError{Code: exitBuildFailed, Err: fmt.Errorf("build tools missing for %s: %w", ext.Name, err)}
				}

				fmt.Fprintln(out, SuccessStyle.Render(fmt.Sprintf("%s: %s builder ready, %d sources", ext.Name, builder.Name(), len(ext.Sources))))
			}

			return nil
		},
	}
}

// configuredTools is implemented by builders whose requirements depend on
// the build config (explicit compiler, python-config).
type configuredTools interface {
	ToolsFor(config *profbuild.BuildConfig) []profbuild.ToolRequirement
}

func checkBuilderTools(builder profbuild.Builder, config *profbuild.BuildConfig) error {
	if b, ok := builder.(configuredTools); ok {
		return profbuild.CheckRequiredTools(b.ToolsFor(config))
	}
	if checker, ok := builder.(profbuild.ToolChecker); ok {
		return checker.CheckTools()
	}
	return nil
}
