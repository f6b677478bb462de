package layout

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// sanitizeName makes a catalog-supplied name safe to use as a single path
// element. Names are NFC-normalized so the same title parsed from different
// catalogs lands in the same folder, then stripped of separators and
// characters that are reserved on common filesystems.
func sanitizeName(name string) string {
	name = norm.NFC.String(strings.TrimSpace(name))

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r < 0x20:
			b.WriteByte('_')
		case strings.ContainsRune(`/\:*?"<>|`, r):
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}

	cleaned := strings.TrimRight(b.String(), ". ")
	if cleaned == "" || cleaned == "." || cleaned == ".." {
		return "_"
	}
	return cleaned
}
