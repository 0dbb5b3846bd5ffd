package routing

import (
	"strings"

	dErrors "cockpit/pkg/domain-errors"
)

// MaxSlugLength bounds generated and externally supplied slugs.
const MaxSlugLength = 50

// Slugify derives a URL-safe slug from a display name: lowercase, whitespace
// to hyphens, strip everything outside [a-z0-9-], collapse hyphen runs, trim
// edge hyphens, cap at MaxSlugLength.
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '\n', r == '-', r == '_':
			b.WriteByte('-')
		}
	}
	slug := b.String()
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	slug = strings.Trim(slug, "-")
	if len(slug) > MaxSlugLength {
		slug = strings.TrimRight(slug[:MaxSlugLength], "-")
	}
	return slug
}

// ValidateSlug rejects slugs that Slugify would never produce, even when they
// arrive from an external source: empty, too long, bad characters,
// consecutive hyphens, or leading/trailing hyphens.
func ValidateSlug(slug string) error {
	if slug == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "slug cannot be empty")
	}
	if len(slug) > MaxSlugLength {
		return dErrors.New(dErrors.CodeInvalidInput, "slug exceeds 50 characters")
	}
	if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
		return dErrors.New(dErrors.CodeInvalidInput, "slug cannot start or end with a hyphen")
	}
	if strings.Contains(slug, "--") {
		return dErrors.New(dErrors.CodeInvalidInput, "slug cannot contain consecutive hyphens")
	}
	for _, r := range slug {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return dErrors.New(dErrors.CodeInvalidInput, "slug may only contain a-z, 0-9 and hyphens")
		}
	}
	return nil
}
