package app

import (
	"os"
	"strings"
)

// debugInput logs every key event that is dropped by shouldIgnoreInput.
var debugInput = os.Getenv("ZETTELKASTEN_DEBUG_INPUT") != ""

// shouldIgnoreInput drops rune events that are really terminal replies, such
// as the OSC 11 background colour answer glamour's auto style triggers, so
// they never reach a form field or the link code buffer.
func shouldIgnoreInput(msg interface{ String() string }) bool {
	sequence := msg.String()
	if sequence == "" {
		return false
	}
	if isOSCBackgroundResponse(sequence) || containsControlRunes(sequence) {
		if debugInput {
			appLog.Debug("ignored input", "sequence", sequence)
		}
		return true
	}
	return false
}

func isOSCBackgroundResponse(sequence string) bool {
	sequence = trimOSCSequenceSuffix(sequence)
	if !strings.Contains(sequence, "rgb:") {
		return false
	}
	if !strings.Contains(sequence, "\x1b") && !strings.Contains(sequence, "1;rgb:") {
		return false
	}
	return hasRGBTriple(sequence)
}

func trimOSCSequenceSuffix(sequence string) string {
	for _, suffix := range []string{"\x1b\\", "\a", "\\", "\x1b"} {
		if strings.HasSuffix(sequence, suffix) {
			return strings.TrimSuffix(sequence, suffix)
		}
	}
	return sequence
}

func containsControlRunes(sequence string) bool {
	for _, r := range sequence {
		switch {
		case r == '\n' || r == '\t':
			continue
		case r < 32 || r == 127:
			return true
		}
	}
	return false
}

func isHex(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// hasRGBTriple checks for rgb:RRRR/GGGG/BBBB with at least four hex digits
// per component.
func hasRGBTriple(sequence string) bool {
	index := strings.Index(sequence, "rgb:")
	if index == -1 {
		return false
	}
	parts := strings.SplitN(sequence[index+len("rgb:"):], "/", 3)
	if len(parts) != 3 {
		return false
	}
	for _, part := range parts {
		n := 0
		for _, r := range part {
			if !isHex(r) {
				break
			}
			n++
		}
		if n < 4 {
			return false
		}
	}
	return true
}
