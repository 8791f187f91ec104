package envpath

import "strings"

// Split breaks a PATH value into its non-empty elements.
func Split(value, sep string) []string {
	var out []string
	for _, part := range strings.Split(value, sep) {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Join is the inverse of Split.
func Join(list []string, sep string) string {
	return strings.Join(list, sep)
}

// Contains reports whether dir is in list. Trailing path separators are
// ignored. When fold is true the comparison is case-insensitive, matching
// how Windows resolves PATH entries.
func Contains(list []string, dir string, fold bool) bool {
	want := normalizeEntry(dir, fold)
	for _, entry := range list {
		if normalizeEntry(entry, fold) == want {
			return true
		}
	}
	return false
}

// Append returns list with dir added at the end unless already present.
func Append(list []string, dir string, fold bool) []string {
	if Contains(list, dir, fold) {
		return list
	}
	return append(list, dir)
}

// Remove returns list without any entries equal to dir.
func Remove(list []string, dir string, fold bool) []string {
	want := normalizeEntry(dir, fold)
	out := make([]string, 0, len(list))
	for _, entry := range list {
		if normalizeEntry(entry, fold) != want {
			out = append(out, entry)
		}
	}
	return out
}

func normalizeEntry(p string, fold bool) string {
	p = strings.TrimSpace(p)
	for len(p) > 1 && (strings.HasSuffix(p, "/") || strings.HasSuffix(p, `\`)) {
		// Keep drive roots like C:\ intact.
		if len(p) == 3 && p[1] == ':' {
			break
		}
		p = p[:len(p)-1]
	}
	if fold {
		p = strings.ToLower(p)
	}
	return p
}
