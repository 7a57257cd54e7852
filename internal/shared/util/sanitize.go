package util

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxFileNameLen keeps storage keys well under the 1024-byte S3 key limit
// once the date prefix and UUID are added.
const maxFileNameLen = 200

// SanitizeFileName normalizes an uploaded file name for use inside a storage
// key. Path separators and whitespace runs become underscores, control
// characters are dropped, and traversal patterns are rejected.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, name)
	s = strings.Join(strings.Fields(s), "_")
	if s == "" {
		return "", errors.New("invalid file name")
	}
	if len(s) > maxFileNameLen {
		s = truncateName(s)
	}
	return s, nil
}

// truncateName shortens the base name but keeps a short extension intact.
func truncateName(s string) string {
	ext := ""
	if i := strings.LastIndex(s, "."); i >= 0 && len(s)-i <= 8 {
		ext = s[i:]
	}
	keep := maxFileNameLen - len(ext)
	for keep > 0 && !utf8.RuneStart(s[keep]) {
		keep--
	}
	return s[:keep] + ext
}
