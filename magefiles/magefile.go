//go:build mage

// Repository tasks. Run with `mage <target>`.
package main

import (
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "bin/profbuild"

// Default target when mage runs without arguments.
var Default = Build

// Build compiles the profbuild CLI into bin/.
func Build() error {
	return sh.RunV("go", "build", "-o", binary, "./cmd/profbuild")
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Descriptor prints the descriptor of the agent checkout at $PROFBUILD_ROOT
// (default: current directory).
func Descriptor() error {
	mg.Deps(Build)
	return sh.RunV(binary, "descriptor", "-C", agentRoot())
}

// Extension compiles the native extension of the agent checkout at
// $PROFBUILD_ROOT.
func Extension() error {
	mg.Deps(Build)
	return sh.RunV(binary, "build", "-C", agentRoot(), "--verbose")
}

// Clean removes build outputs.
func Clean() error {
	return sh.Rm("bin")
}

func agentRoot() string {
	if root := os.Getenv("PROFBUILD_ROOT"); root != "" {
		return root
	}
	return "."
}
