package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	profbuild "github.com/contriboss/cloud-profiler-build"
	"github.com/contriboss/cloud-profiler-build/internal/config"
)

// app holds state shared by the subcommands after flag parsing.
type app struct {
	root     string
	cfgFile  string
	platform string
	verbose  bool

	cfg    *config.Config
	logger *log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "profbuild",
		Short: "Package descriptor builder for the Cloud Profiler Python agent",
		Long: `profbuild assembles the package descriptor of the Cloud Profiler Python
agent: name, dependencies, version and the native extension list.

The native extension is declared only on Linux. Darwin hosts get a
dependency-only package (wall profiling only); other hosts get a package that
installs but is not functional.

` + SubtitleStyle.Render("Examples:") + `
  profbuild descriptor               Print the descriptor as JSON
  profbuild descriptor -f toml       Print the descriptor as TOML
  profbuild version                  Print the agent version
  profbuild build --install-dir lib  Compile the extension and install it`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&a.root, "root", "C", ".", "project root of the profiler agent")
	cmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is <root>/profbuild.toml)")
	cmd.PersistentFlags().StringVar(&a.platform, "platform", "", "platform identifier to build for (default is the host)")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose output")

	cmd.AddCommand(newDescriptorCmd(a))
	cmd.AddCommand(newVersionCmd(a))
	cmd.AddCommand(newCheckCmd(a))
	cmd.AddCommand(newBuildCmd(a))

	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	a.logger = log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
		Prefix: "profbuild",
	})

	cfg, path, err := config.Load(config.LoadOptions{ConfigFile: a.cfgFile, Dir: a.root})
	if err != nil {
		return &ExitError{Code: exitFatal, Err: err}
	}
	a.cfg = cfg

	if a.verbose || cfg.Build.Verbose {
		a.verbose = true
		a.logger.SetLevel(log.DebugLevel)
	}
	if path != "" {
		a.logger.Debug("loaded config", "path", path)
	}

	return nil
}

// platformIdentifier resolves the target platform: flag, then config, then host.
func (a *app) platformIdentifier() profbuild.PlatformIdentifier {
	if a.platform != "" {
		return profbuild.PlatformIdentifier(a.platform)
	}
	if a.cfg.Platform != "" {
		return profbuild.PlatformIdentifier(a.cfg.Platform)
	}
	return profbuild.DetectPlatform()
}

// metadata applies the [package] overrides to the agent defaults.
func (a *app) metadata() profbuild.Metadata {
	meta := profbuild.DefaultMetadata()
	pkg := a.cfg.Package

	overrides := []struct {
		value string
		dest  *string
	}{
		{pkg.Name, &meta.Name},
		{pkg.Description, &meta.Description},
		{pkg.URL, &meta.URL},
		{pkg.Author, &meta.Author},
		{pkg.License, &meta.License},
		{pkg.Keywords, &meta.Keywords},
	}
	for _, o := range overrides {
		if o.value != "" {
			*o.dest = o.value
		}
	}

	if len(pkg.Dependencies) > 0 {
		meta.InstallRequires = make([]profbuild.Dependency, 0, len(pkg.Dependencies))
		for _, dep := range pkg.Dependencies {
			meta.InstallRequires = append(meta.InstallRequires, profbuild.ParseDependency(dep))
		}
	}
	if len(pkg.Classifiers) > 0 {
		meta.Classifiers = append([]string{}, pkg.Classifiers...)
	}

	return meta
}

// buildConfig returns the extension build settings from the config file,
// targeting the resolved platform.
func (a *app) buildConfig() *profbuild.BuildConfig {
	return &profbuild.BuildConfig{
		Root:         a.root,
		OutputDir:    a.cfg.Build.OutputDir,
		InstallDir:   a.cfg.Build.InstallDir,
		Compiler:     a.cfg.Build.Compiler,
		PythonConfig: a.cfg.Build.PythonConfig,
		GOOS:         a.platformIdentifier().GOOS(),
		Verbose:      a.verbose,
	}
}

// assemble builds the descriptor and prints any platform advisory, even when
// assembly then fails.
func (a *app) assemble(cmd *cobra.Command) (*profbuild.PackageDescriptor, error) {
	var diag bytes.Buffer

	desc, err := profbuild.Assemble(profbuild.AssembleOptions{
		Root:              a.root,
		Platform:          a.platformIdentifier(),
		VersionFile:       a.cfg.VersionFile,
		DocumentationFile: a.cfg.DocumentationFile,
		SourceDir:         a.cfg.SourceDir,
		ModuleName:        a.cfg.ModuleName,
		Metadata:          a.metadata(),
		Diagnostics:       &diag,
		Logger:            a.logger,
	})

	if diag.Len() > 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), WarningStyle.Render(strings.TrimRight(diag.String(), "\n")))
	}

	if err != nil {
		return nil, &ExitError{Code: exitFatal, Err: err}
	}
	return desc, nil
}
