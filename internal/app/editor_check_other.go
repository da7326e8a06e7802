//go:build !unix

package app

import "os"

func checkEditor(path string) string {
	if path == "" {
		return ""
	}
	info, err := os.Stat(path)
	if err != nil {
		return "Editor not found: " + path
	}
	if info.IsDir() {
		return "Editor is not a regular file: " + path
	}
	return ""
}
