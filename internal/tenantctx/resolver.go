package tenantctx

import (
	"context"
	"log/slog"

	"cockpit/internal/platform/metrics"
	"cockpit/internal/routing"
	"cockpit/pkg/domain"
	dErrors "cockpit/pkg/domain-errors"
)

// Resolver turns a path into a ResolvedContext using live membership data.
type Resolver struct {
	dir     Directory
	routes  *routing.Descriptor
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

func WithResolverLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = l }
}

func WithResolverMetrics(m *metrics.Metrics) ResolverOption {
	return func(r *Resolver) { r.metrics = m }
}

// NewResolver creates a resolver over the given directory and route table.
func NewResolver(dir Directory, routes *routing.Descriptor, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		dir:    dir,
		routes: routes,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// resolveOptions is the per-call opt-in surface.
type resolveOptions struct {
	firstAvailableFallback bool
}

// ResolveOption customizes one resolution.
type ResolveOption func(*resolveOptions)

// FallBackToFirstAvailable makes a context-free path resolve to the user's
// first available tenant instead of an empty context.
func FallBackToFirstAvailable() ResolveOption {
	return func(o *resolveOptions) { o.firstAvailableFallback = true }
}

// Resolve maps a path to the active tenant context. Resolution failures
// (unknown tenant, revoked access, unknown project, no memberships) are
// returned as data on ResolvedContext.Reason with a nil error; the error
// return carries only transport failures from the directory lookups.
func (r *Resolver) Resolve(ctx context.Context, path string, opts ...ResolveOption) (ResolvedContext, error) {
	var ro resolveOptions
	for _, opt := range opts {
		opt(&ro)
	}

	slugs := r.routes.ParseSlugs(path)
	if slugs.TenantSlug == "" {
		if !ro.firstAvailableFallback {
			return r.outcome(ctx, ResolvedContext{}), nil
		}
		return r.firstAvailable(ctx)
	}
	return r.resolveSlugs(ctx, slugs.TenantSlug, slugs.ProjectSlug)
}

func (r *Resolver) resolveSlugs(ctx context.Context, tenantSlug, projectSlug string) (ResolvedContext, error) {
	memberships, err := r.dir.Memberships(ctx)
	if err != nil {
		return ResolvedContext{}, err
	}

	var tenant *Tenant
	for i := range memberships {
		if memberships[i].Slug == tenantSlug {
			tenant = &memberships[i]
			break
		}
	}
	if tenant == nil {
		// Distinguish a globally unknown slug from one the user lost access to.
		exists, err := r.dir.TenantExists(ctx, tenantSlug)
		if err != nil {
			return ResolvedContext{}, err
		}
		reason := dErrors.CodeTenantNotFound
		if exists {
			reason = dErrors.CodeAccessDenied
		}
		return r.outcome(ctx, ResolvedContext{Reason: reason}), nil
	}

	// Membership is re-verified explicitly: the list above could be stale
	// against a concurrent removal.
	role, ok, err := r.dir.CheckAccess(ctx, tenant.ID)
	if err != nil {
		return ResolvedContext{}, err
	}
	if !ok {
		return r.outcome(ctx, ResolvedContext{Reason: dErrors.CodeAccessDenied}), nil
	}

	if projectSlug == "" {
		return r.outcome(ctx, ResolvedContext{
			Tenant:    tenant,
			HasAccess: true,
			Role:      role,
		}), nil
	}

	// The project slug is resolved only within the already-resolved tenant;
	// a colliding slug in another tenant must never match.
	projects, err := r.dir.Projects(ctx, tenant.ID)
	if err != nil {
		return ResolvedContext{}, err
	}
	for i := range projects {
		if projects[i].Slug == projectSlug && projects[i].TenantID == tenant.ID {
			return r.outcome(ctx, ResolvedContext{
				Tenant:    tenant,
				Project:   &projects[i],
				HasAccess: true,
				Role:      role,
			}), nil
		}
	}
	return r.outcome(ctx, ResolvedContext{
		Tenant: tenant,
		Role:   role,
		Reason: dErrors.CodeProjectNotFound,
	}), nil
}

// firstAvailable picks the first membership, preferring an active project
// within it, falling back to the first project, then to the bare tenant.
func (r *Resolver) firstAvailable(ctx context.Context) (ResolvedContext, error) {
	memberships, err := r.dir.Memberships(ctx)
	if err != nil {
		return ResolvedContext{}, err
	}
	if len(memberships) == 0 {
		return r.outcome(ctx, ResolvedContext{Reason: dErrors.CodeNoMembership}), nil
	}
	tenant := &memberships[0]

	projects, err := r.dir.Projects(ctx, tenant.ID)
	if err != nil {
		return ResolvedContext{}, err
	}
	var project *Project
	for i := range projects {
		if projects[i].Active {
			project = &projects[i]
			break
		}
	}
	if project == nil && len(projects) > 0 {
		project = &projects[0]
	}
	return r.outcome(ctx, ResolvedContext{
		Tenant:    tenant,
		Project:   project,
		HasAccess: true,
		Role:      tenant.Role,
	}), nil
}

// outcome records metrics and logs for a finished resolution.
func (r *Resolver) outcome(ctx context.Context, rc ResolvedContext) ResolvedContext {
	label := "ok"
	switch {
	case rc.Reason != "":
		label = string(rc.Reason)
	case rc.Empty():
		label = "empty"
	}
	if r.metrics != nil {
		r.metrics.ContextResolutions.WithLabelValues(label).Inc()
	}
	if rc.Reason != "" {
		r.logger.InfoContext(ctx, "context resolution denied", "reason", string(rc.Reason))
	}
	return rc
}

// RoleFor returns the user's role for a tenant ID from a membership list.
// Projects carry no independent roles; the tenant role governs.
func RoleFor(memberships []Tenant, tenantID domain.TenantID) domain.Role {
	for _, m := range memberships {
		if m.ID == tenantID {
			return m.Role
		}
	}
	return domain.RoleNone
}
