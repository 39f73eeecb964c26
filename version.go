package profbuild

import (
	"errors"
	"fmt"
	"os"
	"regexp"
)

// DefaultVersionFile is the sidecar file holding the version declaration.
const DefaultVersionFile = "googlecloudprofiler/__version__.py"

var (
	// ErrMissingVersionFile is returned when the version file cannot be read.
	// The underlying I/O error stays in the chain.
	ErrMissingVersionFile = errors.New("version file unreadable")

	// ErrVersionPatternMismatch is returned when the version file has no
	// valid `__version__ = '<value>'` line.
	ErrVersionPatternMismatch = errors.New("version pattern mismatch")
)

// versionPattern matches MAJOR.MINOR[.PATCH][-PRERELEASE] on its own line.
// Only trailing whitespace may follow the closing quote.
var versionPattern = regexp.MustCompile(`(?m)^__version__ = '([0-9]+\.[0-9]+(?:\.[0-9]+)?(?:-[^'\r\n]+)?)'[ \t\r]*$`)

// VersionString is a validated MAJOR.MINOR[.PATCH][-PRERELEASE] value.
type VersionString string

func (v VersionString) String() string {
	return string(v)
}

// ResolveVersion reads path and extracts the declared version.
//
// There is no fallback: a missing or unreadable file returns an error
// wrapping both ErrMissingVersionFile and the I/O error, and a file without a
// valid declaration returns ErrVersionPatternMismatch.
func ResolveVersion(path string) (VersionString, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMissingVersionFile, err)
	}

	version, ok := ParseVersionDeclaration(content)
	if !ok {
		return "", fmt.Errorf("%w: cannot determine version from %s", ErrVersionPatternMismatch, path)
	}

	return version, nil
}

// ParseVersionDeclaration returns the first valid version declared in content.
func ParseVersionDeclaration(content []byte) (VersionString, bool) {
	matches := versionPattern.FindSubmatch(content)
	if len(matches) < 2 {
		return "", false
	}
	return VersionString(matches[1]), true
}
