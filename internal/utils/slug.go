package utils

import (
	"strings"
)

// Slugify derives an item slug from its category and title, e.g.
// ("Shirt", "Oxford Classic") -> "shirt-oxford-classic". Called explicitly
// by the item creation path; the result is deterministic for a given input.
func Slugify(category, title string) string {
	joined := strings.ToLower(category + " " + title)
	var b strings.Builder
	lastHyphen := true
	for _, r := range joined {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
