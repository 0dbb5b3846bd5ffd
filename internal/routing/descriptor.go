// Package routing implements the slug/route codec: pure parsing of dashboard
// URL paths into (tenant slug, project slug, page path) and back, driven by a
// declarative route descriptor rather than hardcoded path literals.
package routing

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	dErrors "cockpit/pkg/domain-errors"
)

// ContextKind identifies which tenant scope a path addresses.
type ContextKind string

const (
	KindNone    ContextKind = "none"
	KindTenant  ContextKind = "tenant"
	KindProject ContextKind = "project"
)

// ContextRoutes describes the valid pages for one context kind.
type ContextRoutes struct {
	// Pages are the valid first-level page segments.
	Pages []string `yaml:"pages"`
	// Nested maps a first-level page to its valid child page paths, one or
	// two segments deep ("api-keys", "api-keys/rotation").
	Nested map[string][]string `yaml:"nested"`
	// PagePreserving marks the context kind as keeping the current page
	// across a same-kind switch when the target supports it.
	PagePreserving bool `yaml:"page_preserving"`
}

// Descriptor is the read-only route configuration, loaded once at startup.
type Descriptor struct {
	// Reserved first segments that can never be tenant slugs (system and
	// operational paths).
	Reserved []string `yaml:"reserved"`
	// TenantPages are tenant-level page names that disambiguate the second
	// path segment: a second segment on this list is a tenant page, not a
	// project slug.
	TenantPages []string `yaml:"tenant_pages"`
	// Contexts holds per-kind page sets, keyed "tenant" and "project".
	Contexts map[ContextKind]ContextRoutes `yaml:"contexts"`

	reserved    map[string]bool
	tenantPages map[string]bool
	valid       map[ContextKind]map[string]bool
}

// DefaultDescriptor returns the compiled-in route table used when no routes
// file is configured.
func DefaultDescriptor() *Descriptor {
	d := &Descriptor{
		Reserved: []string{
			"api", "login", "logout", "signup", "invite", "account",
			"admin", "docs", "status", "support", "assets",
		},
		TenantPages: []string{"dashboard", "settings", "members", "billing", "usage", "audit"},
		Contexts: map[ContextKind]ContextRoutes{
			KindTenant: {
				Pages: []string{"dashboard", "members", "billing", "usage", "audit", "settings"},
				Nested: map[string][]string{
					"settings": {"general", "api-keys", "api-keys/rotation", "notifications"},
				},
				PagePreserving: true,
			},
			KindProject: {
				Pages: []string{"overview", "deployments", "logs", "metrics", "settings"},
				Nested: map[string][]string{
					"settings": {"general", "api-keys", "api-keys/rotation", "domains", "environment"},
				},
				PagePreserving: true,
			},
		},
	}
	d.index()
	return d
}

// LoadDescriptor reads a YAML route descriptor from disk.
func LoadDescriptor(path string) (*Descriptor, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "reading routes file")
	}
	var d Descriptor
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "parsing routes file")
	}
	if len(d.Contexts) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "routes file defines no contexts")
	}
	d.index()
	return &d, nil
}

// index builds lookup sets once; the descriptor is immutable afterwards.
func (d *Descriptor) index() {
	d.reserved = make(map[string]bool, len(d.Reserved))
	for _, s := range d.Reserved {
		d.reserved[s] = true
	}
	d.tenantPages = make(map[string]bool, len(d.TenantPages))
	for _, s := range d.TenantPages {
		d.tenantPages[s] = true
	}
	// Every first-level tenant page disambiguates the second segment, even
	// when the descriptor's tenant_pages list forgets one. Otherwise that
	// page name would parse as a project slug and the build/parse round
	// trip would not hold.
	if tenant, ok := d.Contexts[KindTenant]; ok {
		for _, p := range tenant.Pages {
			if !strings.Contains(p, "/") {
				d.tenantPages[p] = true
			}
		}
		for parent := range tenant.Nested {
			d.tenantPages[parent] = true
		}
	}
	d.valid = make(map[ContextKind]map[string]bool, len(d.Contexts))
	for kind, routes := range d.Contexts {
		set := make(map[string]bool)
		for _, p := range routes.Pages {
			set[p] = true
		}
		for parent, children := range routes.Nested {
			for _, child := range children {
				set[parent+"/"+child] = true
			}
		}
		d.valid[kind] = set
	}
}

// IsReserved reports whether a first path segment is a system path rather
// than a tenant slug.
func (d *Descriptor) IsReserved(segment string) bool {
	return d.reserved[segment]
}

// IsTenantPage reports whether a second path segment names a tenant-level
// page rather than a project slug.
func (d *Descriptor) IsTenantPage(segment string) bool {
	return d.tenantPages[segment]
}

// ValidPage reports whether pageType (flat or nested, e.g. "settings/api-keys")
// exists for the given context kind.
func (d *Descriptor) ValidPage(kind ContextKind, pageType string) bool {
	return d.valid[kind][pageType]
}

// PagePreserving reports whether the context kind keeps the current page
// across same-kind switches.
func (d *Descriptor) PagePreserving(kind ContextKind) bool {
	return d.Contexts[kind].PagePreserving
}
