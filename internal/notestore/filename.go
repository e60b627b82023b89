package notestore

import (
	"fmt"
	"strings"
	"time"
)

// maxFilenameLength caps sanitized filenames (without extension).
const maxFilenameLength = 100

// untitledFallback is used when a title sanitizes to nothing.
const untitledFallback = "Untitled"

// SanitizeTitle derives a filename candidate from a note title: strips
// characters illegal on common filesystems, collapses whitespace, trims
// trailing dots and spaces, and caps the length. An empty result falls
// back to "Untitled"; a title that itself collapses to "untitled" gets
// a timestamp suffix so unrelated untitled notes never collide.
func SanitizeTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case r == '\t', r == '\n', r == '\r':
			// Whitespace controls survive to the collapse below.
			b.WriteRune(r)
		case r < 0x20, r == 0x7f:
			continue
		case strings.ContainsRune(`<>:"/\|?*`, r):
			continue
		default:
			b.WriteRune(r)
		}
	}
	name := strings.Join(strings.Fields(b.String()), " ")
	name = strings.TrimRight(name, ". ")
	if r := []rune(name); len(r) > maxFilenameLength {
		name = strings.TrimRight(string(r[:maxFilenameLength]), ". ")
	}
	if name == "" {
		return untitledFallback
	}
	if strings.ToLower(name) == "untitled" {
		return fmt.Sprintf("%s %d", name, time.Now().Unix())
	}
	return name
}

// uniqueFilename appends an incrementing numeric suffix until the
// candidate no longer collides with an existing filename.
func uniqueFilename(candidate string, existing map[string]struct{}) string {
	if _, taken := existing[candidate]; !taken {
		return candidate
	}
	for i := 1; ; i++ {
		next := fmt.Sprintf("%s %d", candidate, i)
		if _, taken := existing[next]; !taken {
			return next
		}
	}
}
