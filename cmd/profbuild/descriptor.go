package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	profbuild "github.com/contriboss/cloud-profiler-build"
)

func newDescriptorCmd(a *app) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "descriptor",
		Short: "Print the package descriptor",
		Long: `Assemble the package descriptor and print it as JSON, TOML or YAML.

Fails when README.md or the version file is missing, or when the version file
has no valid __version__ declaration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format == "" {
				format = a.cfg.Format
			}
			f, err := profbuild.ParseFormat(format)
			if err != nil {
				return err
			}

			desc, err := a.assemble(cmd)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := desc.Encode(&buf, f); err != nil {
				return fmt.Errorf("failed to encode descriptor: %w", err)
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}

			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("failed to write descriptor: %w", err)
			}
			a.logger.Info("wrote descriptor", "path", output, "version", desc.Version, "ext_modules", len(desc.ExtModules))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: json, toml or yaml (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the descriptor to a file instead of stdout")

	return cmd
}
