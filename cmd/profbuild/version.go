package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	profbuild "github.com/contriboss/cloud-profiler-build"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the agent version declared in the version file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.cfg.VersionFile
			if !filepath.IsAbs(path) {
				path = filepath.Join(a.root, path)
			}

			version, err := profbuild.ResolveVersion(path)
			if err != nil {
				return &ExitError{Code: exitFatal, Err: err}
			}

			fmt.Fprintln(cmd.OutOrStdout(), version)
			return nil
		},
	}
}
