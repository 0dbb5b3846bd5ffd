package tenantctx

import (
	"context"
	"log/slog"

	"cockpit/internal/routing"
	dErrors "cockpit/pkg/domain-errors"
)

// Initializer chooses the active context on application start or session
// resume by trying, in strict order: URL, persisted pair, user default,
// first available membership. The first success wins and is re-persisted so
// the next start is faster.
type Initializer struct {
	resolver *Resolver
	persist  *PersistStore
	dir      Directory
	routes   *routing.Descriptor
	logger   *slog.Logger
}

// NewInitializer wires the fallback chain.
func NewInitializer(resolver *Resolver, persist *PersistStore, dir Directory, routes *routing.Descriptor, logger *slog.Logger) *Initializer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Initializer{
		resolver: resolver,
		persist:  persist,
		dir:      dir,
		routes:   routes,
		logger:   logger,
	}
}

// Initialize resolves the starting context for the current path. A user
// with no tenant memberships gets an explicit empty state carrying
// no_membership, never a crash or a retry loop.
func (i *Initializer) Initialize(ctx context.Context, currentPath string) (ResolvedContext, error) {
	// 1. URL.
	if slugs := i.routes.ParseSlugs(currentPath); slugs.TenantSlug != "" {
		rc, err := i.resolver.Resolve(ctx, currentPath)
		if err != nil {
			return ResolvedContext{}, err
		}
		if rc.HasAccess {
			return i.won(ctx, "url", rc), nil
		}
		i.logger.InfoContext(ctx, "url context rejected, falling back",
			"tenant_slug", slugs.TenantSlug, "reason", string(rc.Reason))
	}

	// 2. Persisted pair, revalidated against the current user: it is
	// installation-scoped and survives across logins.
	if pc, ok := i.persist.Load(); ok {
		if rc, err := i.tryPair(ctx, pc.TenantSlug, pc.ProjectSlug); err != nil {
			return ResolvedContext{}, err
		} else if rc.HasAccess {
			return i.won(ctx, "persisted", rc), nil
		}
	}

	// 3. User default preference, if still among current memberships.
	defaultSlug, err := i.dir.DefaultTenantSlug(ctx)
	if err != nil {
		return ResolvedContext{}, err
	}
	if defaultSlug != "" {
		if rc, err := i.tryPair(ctx, defaultSlug, ""); err != nil {
			return ResolvedContext{}, err
		} else if rc.HasAccess {
			return i.won(ctx, "default", rc), nil
		}
	}

	// 4. First available membership.
	rc, err := i.resolver.Resolve(ctx, "/", FallBackToFirstAvailable())
	if err != nil {
		return ResolvedContext{}, err
	}
	if rc.HasAccess {
		return i.won(ctx, "first_available", rc), nil
	}
	if rc.Reason == "" {
		rc.Reason = dErrors.CodeNoMembership
	}
	i.logger.WarnContext(ctx, "no usable tenant context", "reason", string(rc.Reason))
	return rc, nil
}

// tryPair resolves a (tenant, project) slug pair as if it were a URL.
func (i *Initializer) tryPair(ctx context.Context, tenantSlug, projectSlug string) (ResolvedContext, error) {
	path := "/" + tenantSlug
	if projectSlug != "" {
		path += "/" + projectSlug
	}
	return i.resolver.Resolve(ctx, path)
}

// won persists the winning pair and logs the source.
func (i *Initializer) won(ctx context.Context, source string, rc ResolvedContext) ResolvedContext {
	pc := PersistedContext{TenantSlug: rc.Tenant.Slug}
	if rc.Project != nil {
		pc.ProjectSlug = rc.Project.Slug
	}
	if err := i.persist.Save(pc); err != nil {
		i.logger.WarnContext(ctx, "persisting context", "error", err)
	}
	i.logger.InfoContext(ctx, "context initialized",
		"source", source, "tenant_slug", rc.Tenant.Slug, "project_slug", pc.ProjectSlug)
	return rc
}
