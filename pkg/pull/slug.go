package pull

import "strings"

const maxSlugLen = 40

// Slug turns a title into a branch-name-safe fragment: lowercase, runs of
// non-alphanumerics collapsed to single hyphens, trimmed to maxSlugLen.
func Slug(title string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
		if b.Len() >= maxSlugLen {
			break
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "doc"
	}
	return slug
}
