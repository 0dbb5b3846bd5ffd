package routing

import (
	"strings"

	dErrors "cockpit/pkg/domain-errors"
)

// BuildURL is the inverse of ParseRoute: it assembles a path from a context
// kind, its slugs, and an optional page type. For KindProject both slugs are
// required; for KindTenant only the tenant slug. An empty pageType yields the
// context's home path.
func (d *Descriptor) BuildURL(kind ContextKind, tenantSlug, projectSlug, pageType string) (string, error) {
	switch kind {
	case KindTenant:
		if tenantSlug == "" {
			return "", dErrors.New(dErrors.CodeInvalidInput, "tenant slug required")
		}
		if projectSlug != "" {
			return "", dErrors.New(dErrors.CodeInvalidInput, "tenant context takes no project slug")
		}
	case KindProject:
		if tenantSlug == "" || projectSlug == "" {
			return "", dErrors.New(dErrors.CodeInvalidInput, "project context requires both slugs")
		}
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "cannot build URL for context kind "+string(kind))
	}
	if pageType != "" && !d.ValidPage(kind, pageType) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "page "+pageType+" not valid for "+string(kind)+" context")
	}

	parts := []string{tenantSlug}
	if projectSlug != "" {
		parts = append(parts, projectSlug)
	}
	if pageType != "" {
		parts = append(parts, pageType)
	}
	return "/" + strings.Join(parts, "/"), nil
}

// HomeURL returns the context's home path (no page segments).
func (d *Descriptor) HomeURL(kind ContextKind, tenantSlug, projectSlug string) (string, error) {
	return d.BuildURL(kind, tenantSlug, projectSlug, "")
}
