package util

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Platform identifies the running operating system.
type Platform string

const (
	PlatformWindows Platform = "windows"
	PlatformLinux   Platform = "linux"
	PlatformUnknown Platform = "unknown"
)

// GetPlatform returns the current platform.
func GetPlatform() Platform {
	switch runtime.GOOS {
	case "windows":
		return PlatformWindows
	case "linux":
		return PlatformLinux
	default:
		return PlatformUnknown
	}
}

// IsWindows returns true if running on Windows.
func IsWindows() bool {
	return runtime.GOOS == "windows"
}

// ResolveInPath searches every directory in the PATH environment variable
// for name, trying each of extensions (including "" for name as given) in
// each directory in turn. It reports the first match found, or ok=false if
// none of PATH's directories contain it.
func ResolveInPath(name string, extensions []string) (resolved string, ok bool) {
	if filepath.IsAbs(name) {
		return name, fileExists(name)
	}

	dirs := strings.Split(os.Getenv("PATH"), string(os.PathListSeparator))
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		for _, ext := range extensions {
			candidate := filepath.Join(dir, name+ext)
			if fileExists(candidate) {
				return candidate, true
			}
		}
	}
	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
