package profbuild

import (
	"fmt"
	"strings"
)

// BuildError creates a standardized build error with output context.
//
// # Format
//
// With error and output:
//
//	C++ build failed: exit status 1
//
//	Build output:
//	profiler.cc:12:10: fatal error: Python.h: No such file or directory
//
// With error but no output:
//
//	C++ build failed: exit status 1
//
// With output but no error:
//
//	C++ build failed
//
//	Build output:
//	... output lines ...
func BuildError(builder string, output []string, err error) error {
	outputStr := strings.Join(output, "\n")

	var prefix string
	if err != nil {
		prefix = fmt.Sprintf("%s build failed: %v", builder, err)
	} else {
		prefix = fmt.Sprintf("%s build failed", builder)
	}

	if outputStr != "" {
		return fmt.Errorf("%s\n\nBuild output:\n%s", prefix, outputStr)
	}

	return fmt.Errorf("%s", prefix)
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{})
	var result []string

	for _, value := range values {
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		result = append(result, value)
	}

	return result
}
