// fingerprint.go generates stable hashes for grouping similar messages.

package csentry

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// FingerprintInput holds the stable parts of a captured message.
type FingerprintInput struct {
	Logger string
	Level  Severity

	// Template is the unformatted format string, so that messages differing
	// only in their arguments group together.
	Template string

	// StackTrace is an optional Go stack trace; only the first three
	// function names are used.
	StackTrace string
}

// Fingerprint returns 32 hex characters derived from the input. Line
// numbers, addresses, timestamps and ids never contribute.
func Fingerprint(in FingerprintInput) string {
	parts := []string{in.Logger, string(in.Level), in.Template}
	parts = append(parts, normalizeStackTrace(in.StackTrace)...)

	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(hash[:16])
}

var (
	// Match function names like "main.doSomething" or "pkg/subpkg.Function"
	funcNamePattern = regexp.MustCompile(`^([a-zA-Z0-9_./]+\.[a-zA-Z0-9_]+)`)

	// Match offset patterns like "+0x123"
	offsetPattern = regexp.MustCompile(`\+0x[0-9a-fA-F]+`)
)

// normalizeStackTrace extracts the first 3 function names from a stack trace.
func normalizeStackTrace(trace string) []string {
	if trace == "" {
		return nil
	}

	var frames []string
	for _, line := range strings.Split(trace, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "goroutine ") || strings.HasPrefix(line, "/") {
			continue
		}

		line = offsetPattern.ReplaceAllString(line, "")
		line = memAddrPattern.ReplaceAllString(line, "")
		if idx := strings.Index(line, "("); idx > 0 {
			line = line[:idx]
		}

		if match := funcNamePattern.FindString(strings.TrimSpace(line)); match != "" {
			frames = append(frames, match)
			if len(frames) == 3 {
				break
			}
		}
	}
	return frames
}
