//go:build unix

package app

import (
	"os"

	"golang.org/x/sys/unix"
)

// checkEditor returns a warning when path does not look like a usable
// executable, or "" when it does. An empty path is not checked.
func checkEditor(path string) string {
	if path == "" {
		return ""
	}
	info, err := os.Stat(path)
	if err != nil {
		return "Editor not found: " + path
	}
	if !info.Mode().IsRegular() {
		return "Editor is not a regular file: " + path
	}
	if err := unix.Access(path, unix.X_OK); err != nil {
		return "Editor is not executable: " + path
	}
	return ""
}
