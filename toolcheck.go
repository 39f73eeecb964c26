package profbuild

import (
	"fmt"
	"os/exec"
	"strings"
)

// execLookPath is swapped in tests.
var execLookPath = exec.LookPath

// ToolChecker is an optional interface for builders that require external tools.
//
// Builders implement it to declare their compiler and verify it is available
// before a build starts, so a missing toolchain fails fast with a readable
// message instead of an exec error.
//
// # Consumer Usage
//
//	if checker, ok := builder.(ToolChecker); ok {
//	    if err := checker.CheckTools(); err != nil {
//	        return fmt.Errorf("build tools missing: %w", err)
//	    }
//	}
type ToolChecker interface {
	// RequiredTools returns the list of tools this builder needs.
	RequiredTools() []ToolRequirement

	// CheckTools returns nil if all required tools are found, or an error
	// naming the missing ones. Optional tools never cause an error.
	CheckTools() error
}

// ToolRequirement describes a build tool dependency.
//
// Tool with alternatives:
//
//	ToolRequirement{
//	    Name:         "c++",
//	    Alternatives: []string{"g++", "clang++"},
//	    Purpose:      "C++ compiler",
//	}
type ToolRequirement struct {
	// Name is the primary tool binary name (e.g., "c++").
	Name string

	// Alternatives are tool names that also satisfy this requirement.
	Alternatives []string

	// Optional tools are checked but never reported as missing.
	Optional bool

	// Purpose is a human-readable description of why this tool is needed.
	Purpose string
}

// CheckToolAvailable checks if a tool is available in the system PATH.
func CheckToolAvailable(tool string) error {
	_, err := execLookPath(tool)
	if err != nil {
		return fmt.Errorf("%s not found in PATH", tool)
	}
	return nil
}

// MissingTools returns the required tools for which neither the primary
// name nor any alternative is on PATH, formatted as "name (purpose)".
func MissingTools(requirements []ToolRequirement) []string {
	var missingTools []string

	for _, req := range requirements {
		found := CheckToolAvailable(req.Name) == nil

		if !found {
			for _, alt := range req.Alternatives {
				if CheckToolAvailable(alt) == nil {
					found = true
					break
				}
			}
		}

		if !found && !req.Optional {
			if req.Purpose != "" {
				missingTools = append(missingTools, fmt.Sprintf("%s (%s)", req.Name, req.Purpose))
			} else {
				missingTools = append(missingTools, req.Name)
			}
		}
	}

	return missingTools
}

// CheckRequiredTools verifies all required tools are available.
//
// # Error Format
//
// Single missing tool:
//
//	c++ (C++ compiler for the native extension) not found in PATH
//
// Multiple missing tools:
//
//	missing required tools: c++ (C++ compiler), cc (C compiler)
func CheckRequiredTools(requirements []ToolRequirement) error {
	missingTools := MissingTools(requirements)

	switch len(missingTools) {
	case 0:
		return nil
	case 1:
		return fmt.Errorf("%s not found in PATH", missingTools[0])
	default:
		return fmt.Errorf("missing required tools: %s", strings.Join(missingTools, ", "))
	}
}
