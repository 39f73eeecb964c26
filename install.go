package profbuild

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var nativeModuleSuffixes = map[string]struct{}{
	".so":    {},
	".pyd":   {},
	".dylib": {},
	".dll":   {},
}

// ModuleSuffix returns the file suffix of a compiled module on goos.
func ModuleSuffix(goos string) string {
	if goos == platformWindows {
		return ".pyd"
	}
	return ".so"
}

// installExtensions copies built modules into config.InstallDir, keeping
// their layout below the output directory, and returns the installed paths
// relative to the project root. With no InstallDir nothing is copied.
func installExtensions(config *BuildConfig, built []string) ([]string, error) {
	if config.InstallDir == "" || len(built) == 0 {
		return nil, nil
	}

	outputDir := resolvePath(config.Root, config.OutputDir, DefaultOutputDir)
	installDir := resolvePath(config.Root, config.InstallDir, "")

	var installed []string

	for _, rel := range uniqueStrings(built) {
		if !isNativeModule(rel) {
			continue
		}

		srcPath := resolvePath(config.Root, filepath.FromSlash(rel), "")
		relDest, err := filepath.Rel(outputDir, srcPath)
		if err != nil || strings.HasPrefix(relDest, "..") {
			relDest = filepath.Base(srcPath)
		}

		destPath := filepath.Join(installDir, relDest)
		if err := copyFile(srcPath, destPath); err != nil {
			return nil, fmt.Errorf("failed to install %s: %w", rel, err)
		}

		installed = append(installed, relativeToRoot(config.Root, destPath))
	}

	return installed, nil
}

func isNativeModule(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	_, ok := nativeModuleSuffixes[ext]
	return ok
}

func copyFile(srcPath, destPath string) error {
	info, err := os.Stat(srcPath)
	if err != nil {
		return err
	}

	dir := filepath.Dir(destPath)
	if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
		return mkErr
	}

	in, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}
