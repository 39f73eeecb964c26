package profbuild

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
)

// Platform family prefixes recognized by the gate.
const (
	platformLinux   = "linux"
	platformDarwin  = "darwin"
	platformWindows = "windows"
)

// PlatformIdentifier names the host operating system family, optionally
// followed by a release suffix (e.g. "linux", "linux-5.10.0", "darwin-23.1.0").
//
// Only the prefix is significant and it is matched case-insensitively, so
// "Linux-5.10" is Linux-like.
type PlatformIdentifier string

// IsLinux reports whether the identifier names a Linux-like host.
func (p PlatformIdentifier) IsLinux() bool {
	return p.hasFamily(platformLinux)
}

// IsDarwin reports whether the identifier names a Darwin-like host.
func (p PlatformIdentifier) IsDarwin() bool {
	return p.hasFamily(platformDarwin)
}

// GOOS maps the identifier's family to the Go OS name used for module
// suffixes and link mode. It returns "" for families it does not know.
func (p PlatformIdentifier) GOOS() string {
	switch {
	case p.IsLinux():
		return platformLinux
	case p.IsDarwin():
		return platformDarwin
	case p.hasFamily(platformWindows), p.hasFamily("win32"):
		return platformWindows
	default:
		return ""
	}
}

func (p PlatformIdentifier) hasFamily(family string) bool {
	return strings.HasPrefix(strings.ToLower(string(p)), family)
}

// DetectPlatform returns the identifier of the current host: runtime.GOOS,
// suffixed with the kernel release when the host reports one.
func DetectPlatform() PlatformIdentifier {
	return detectPlatform(runtime.GOOS, host.KernelVersion)
}

func detectPlatform(goos string, kernelVersion func() (string, error)) PlatformIdentifier {
	release, err := kernelVersion()
	release = strings.TrimSpace(release)
	if err != nil || release == "" {
		return PlatformIdentifier(goos)
	}
	return PlatformIdentifier(goos + "-" + release)
}

// SupportLevel is the capability subset the profiler has on a platform.
type SupportLevel int

const (
	// SupportNone means the agent installs but is not functional.
	SupportNone SupportLevel = iota
	// SupportLimited means wall profiling only; no native extension.
	SupportLimited
	// SupportFull means wall and CPU profiling with the native extension.
	SupportFull
)

func (s SupportLevel) String() string {
	switch s {
	case SupportFull:
		return "full"
	case SupportLimited:
		return "limited"
	default:
		return "unsupported"
	}
}

// GateDecision is the outcome of the platform gate.
type GateDecision struct {
	Platform PlatformIdentifier
	Support  SupportLevel

	// Extensions holds zero or one extension. Empty means the package is
	// declared without a compiled module.
	Extensions []*ExtensionSpec

	// Diagnostic is advisory text for the operator, empty when the platform
	// is fully supported.
	Diagnostic string
}

// Gate decides whether ext is shipped on platform.
//
// The Linux and Darwin prefixes are disjoint (neither is a prefix of the
// other), so at most one branch applies and the evaluation order only matters
// for identifiers that match neither.
//
// Gate never fails. Unsupported and Darwin-like hosts get an empty extension
// list and a diagnostic; Linux-like hosts get ext and no diagnostic.
func Gate(platform PlatformIdentifier, ext *ExtensionSpec) GateDecision {
	decision := GateDecision{Platform: platform}

	switch {
	case platform.IsLinux():
		decision.Support = SupportFull
		if ext != nil {
			decision.Extensions = []*ExtensionSpec{ext}
		}
	case platform.IsDarwin():
		decision.Support = SupportLimited
		decision.Diagnostic = fmt.Sprintf(
			"Profiler Python agent has limited support for %s. "+
				"Wall profiler is available with supported Python versions. "+
				"CPU profiler is not available. "+
				"Refer to the documentation for a list of supported operating systems and Python versions.",
			platform)
	default:
		decision.Support = SupportNone
		decision.Diagnostic = fmt.Sprintf(
			"%s is not a supported operating system.\n"+
				"Profiler Python agent modules will be installed but will not be functional. "+
				"Refer to the documentation for a list of supported operating systems.",
			platform)
	}

	return decision
}

// WriteDiagnostic writes the diagnostic, if any, followed by a blank line.
func (d GateDecision) WriteDiagnostic(w io.Writer) error {
	if d.Diagnostic == "" || w == nil {
		return nil
	}
	_, err := fmt.Fprintf(w, "%s\n\n", d.Diagnostic)
	return err
}
