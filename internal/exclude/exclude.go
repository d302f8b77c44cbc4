// Package exclude loads the user-maintained ignore list and narrows each
// entry to a restricted pattern alphabet before it is handed to the
// transport as an exclude directive.
package exclude

import (
	"os"
	"strings"
)

// Pattern is a sanitized exclude entry. Only alphanumerics and `.`, `-`,
// `_` survive sanitization; glob characters, spaces and path separators are
// stripped. Entries that need those characters cannot be expressed and end
// up mangled, which Load reports so the run log shows exactly what was
// excluded.
type Pattern string

func allowed(r rune) bool {
	return r >= 'a' && r <= 'z' ||
		r >= 'A' && r <= 'Z' ||
		r >= '0' && r <= '9' ||
		r == '.' || r == '-' || r == '_'
}

// Sanitize strips every rune outside the pattern alphabet.
// "my file*.tmp" becomes "myfile.tmp"; "../etc" becomes "..etc".
func Sanitize(raw string) Pattern {
	var b strings.Builder
	for _, r := range raw {
		if allowed(r) {
			b.WriteRune(r)
		}
	}
	return Pattern(b.String())
}

// Load reads the ignore-list file. A missing file is an empty set, not an
// error. One entry per line, so a filename containing spaces stays a
// single entry (and loses its spaces to sanitization). The second return
// value lists the raw entries the sanitizer altered; entries empty after
// sanitization are dropped entirely.
func Load(path string) ([]Pattern, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	var patterns []Pattern
	var mangled []string
	for _, line := range strings.Split(string(data), "\n") {
		raw := strings.TrimSpace(line)
		if raw == "" {
			continue
		}
		p := Sanitize(raw)
		if string(p) != raw {
			mangled = append(mangled, raw)
		}
		if p == "" {
			continue
		}
		patterns = append(patterns, p)
	}
	return patterns, mangled, nil
}
