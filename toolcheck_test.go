package profbuild

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubLookPath(t *testing.T, available ...string) {
	t.Helper()

	origLookPath := execLookPath
	t.Cleanup(func() { execLookPath = origLookPath })

	execLookPath = func(name string) (string, error) {
		for _, tool := range available {
			if tool == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", errors.New("executable file not found in $PATH")
	}
}

func TestCheckRequiredTools(t *testing.T) {
	cxx := ToolRequirement{Name: "c++", Alternatives: []string{"g++", "clang++"}, Purpose: "C++ compiler"}
	cc := ToolRequirement{Name: "cc", Purpose: "C compiler"}
	ccache := ToolRequirement{Name: "ccache", Optional: true}

	t.Run("alternative satisfies requirement", func(t *testing.T) {
		stubLookPath(t, "clang++")
		require.NoError(t, CheckRequiredTools([]ToolRequirement{cxx, ccache}))
	})

	t.Run("single missing tool", func(t *testing.T) {
		stubLookPath(t, "c++")
		err := CheckRequiredTools([]ToolRequirement{cxx, cc})
		require.Error(t, err)
		assert.Equal(t, "cc (C compiler) not found in PATH", err.Error())
	})

	t.Run("multiple missing tools", func(t *testing.T) {
		stubLookPath(t)
		err := CheckRequiredTools([]ToolRequirement{cxx, cc, {Name: "make"}})
		require.Error(t, err)
		assert.Equal(t, "missing required tools: c++ (C++ compiler), cc (C compiler), make", err.Error())
	})
}

func TestCheckToolAvailable(t *testing.T) {
	stubLookPath(t, "g++")

	assert.NoError(t, CheckToolAvailable("g++"))
	assert.EqualError(t, CheckToolAvailable("c++"), "c++ not found in PATH")
}

func TestCompilerBuildersImplementToolChecker(t *testing.T) {
	for _, builder := range NewBuilderFactory().ListBuilders() {
		_, ok := builder.(ToolChecker)
		assert.True(t, ok, "%s should implement ToolChecker", builder.Name())
	}
}

func TestBuildError(t *testing.T) {
	output := []string{"line 1", "line 2", "error occurred"}

	err := BuildError("C++", output, nil)
	assert.Equal(t, "C++ build failed\n\nBuild output:\nline 1\nline 2\nerror occurred", err.Error())

	err = BuildError("C++", nil, errors.New("exit status 1"))
	assert.Equal(t, "C++ build failed: exit status 1", err.Error())
}
