package app

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// writeClipboard is swapped out in tests so they never touch the system
// clipboard.
var writeClipboard = clipboard.WriteAll

// copyToClipboard copies the raw body of the shown zettel and describes the
// outcome for the status line.
func copyToClipboard(body string) string {
	if body == "" {
		return "Nothing to copy"
	}
	if err := writeClipboard(body); err != nil {
		logError("Clipboard copy failed", err)
		return "Clipboard copy failed"
	}
	return fmt.Sprintf("Copied zettel (%d chars)", len([]rune(body)))
}
