package routing

import "strings"

// Slugs is the raw decomposition of a path into tenant-context parts.
type Slugs struct {
	TenantSlug  string
	ProjectSlug string
	// PageSegments are the remaining path segments after the slugs.
	PageSegments []string
}

// Route is the full interpretation of a path against a descriptor.
type Route struct {
	Context     ContextKind
	TenantSlug  string
	ProjectSlug string
	// PageType is the full page path ("settings/api-keys"), empty on a home path.
	PageType string
	// IsNested is true when PageType has a parent page and child path.
	IsNested   bool
	ParentPage string
	NestedPage string
	// Known is false when the page segments do not match any configured page.
	Known bool
}

// splitPath returns the cleaned path segments, dropping empty ones so that
// "/acme//proj" and "acme/proj/" parse identically.
func splitPath(path string) []string {
	raw := strings.Split(strings.Trim(path, "/"), "/")
	segments := raw[:0]
	for _, s := range raw {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// ParseSlugs decomposes a path into tenant slug, project slug, and page
// segments. A reserved first segment means the path carries no tenant
// context at all. A second segment is a project slug only when it is not a
// tenant-level page name; the deny-list resolves the ambiguity, never a guess.
func (d *Descriptor) ParseSlugs(path string) Slugs {
	segments := splitPath(path)
	if len(segments) == 0 {
		return Slugs{}
	}
	if d.IsReserved(segments[0]) {
		return Slugs{PageSegments: segments}
	}
	out := Slugs{TenantSlug: segments[0]}
	rest := segments[1:]
	if len(rest) > 0 && !d.IsTenantPage(rest[0]) {
		out.ProjectSlug = rest[0]
		rest = rest[1:]
	}
	// Keep the zero value consistent: no page segments is nil, not an
	// empty sub-slice of the input.
	if len(rest) > 0 {
		out.PageSegments = rest
	}
	return out
}

// ParseRoute interprets a path as a context kind plus page type. Matching
// tries the deepest nested pattern first: a three-segment page is checked
// before its two-segment prefix so a partial match never wins.
func (d *Descriptor) ParseRoute(path string) Route {
	slugs := d.ParseSlugs(path)
	route := Route{
		Context:     KindNone,
		TenantSlug:  slugs.TenantSlug,
		ProjectSlug: slugs.ProjectSlug,
	}
	switch {
	case slugs.ProjectSlug != "":
		route.Context = KindProject
	case slugs.TenantSlug != "":
		route.Context = KindTenant
	default:
		return route
	}

	segments := slugs.PageSegments
	if len(segments) == 0 {
		route.Known = true // home path
		return route
	}

	// Deepest first: parent/child/grandchild, then parent/child, then parent.
	if len(segments) >= 3 {
		pageType := strings.Join(segments[:3], "/")
		if d.ValidPage(route.Context, pageType) {
			route.PageType = pageType
			route.IsNested = true
			route.ParentPage = segments[0]
			route.NestedPage = segments[1] + "/" + segments[2]
			route.Known = true
			return route
		}
	}
	if len(segments) >= 2 {
		pageType := segments[0] + "/" + segments[1]
		if d.ValidPage(route.Context, pageType) {
			route.PageType = pageType
			route.IsNested = true
			route.ParentPage = segments[0]
			route.NestedPage = segments[1]
			route.Known = true
			return route
		}
	}
	if d.ValidPage(route.Context, segments[0]) {
		route.PageType = segments[0]
		route.ParentPage = segments[0]
		route.Known = true
		return route
	}

	// Unknown page: keep the raw page path for diagnostics.
	route.PageType = strings.Join(segments, "/")
	return route
}
