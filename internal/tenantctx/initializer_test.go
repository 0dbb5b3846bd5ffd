package tenantctx_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"cockpit/internal/tenantctx"
	dErrors "cockpit/pkg/domain-errors"
	"cockpit/pkg/domain"
)

type InitializerSuite struct {
	ResolverSuite
	persist *tenantctx.PersistStore
	init    *tenantctx.Initializer
}

func (s *InitializerSuite) SetupTest() {
	s.ResolverSuite.SetupTest()
	s.persist = tenantctx.NewPersistStore(s.T().TempDir(), s.logger)
	s.init = tenantctx.NewInitializer(s.resolver, s.persist, s.dir, s.routes, s.logger)
}

func TestInitializerSuite(t *testing.T) {
	suite.Run(t, new(InitializerSuite))
}

func (s *InitializerSuite) TestURLWins() {
	ctx := context.Background()
	s.dir.EXPECT().Memberships(ctx).Return(s.memberships(), nil)
	s.dir.EXPECT().CheckAccess(ctx, s.beta.ID).Return(domain.RoleViewer, true, nil)

	rc, err := s.init.Initialize(ctx, "/beta/usage")
	s.Require().NoError(err)
	s.Equal("beta", rc.Tenant.Slug)

	pc, ok := s.persist.Load()
	s.True(ok)
	s.Equal("beta", pc.TenantSlug)
}

func (s *InitializerSuite) TestPersistedBeatsDefault() {
	ctx := context.Background()
	s.Require().NoError(s.persist.Save(tenantctx.PersistedContext{
		TenantSlug: "acme", ProjectSlug: "proj1",
	}))

	s.dir.EXPECT().Memberships(ctx).Return(s.memberships(), nil)
	s.dir.EXPECT().CheckAccess(ctx, s.acme.ID).Return(domain.RoleAdmin, true, nil)
	s.dir.EXPECT().Projects(ctx, s.acme.ID).Return([]tenantctx.Project{s.proj1}, nil)

	rc, err := s.init.Initialize(ctx, "/login")
	s.Require().NoError(err)
	s.Equal("acme", rc.Tenant.Slug)
	s.Require().NotNil(rc.Project)
	s.Equal("proj1", rc.Project.Slug)
}

func (s *InitializerSuite) TestPersistedFromPreviousUserIsRevalidated() {
	ctx := context.Background()
	// The installation-scoped file still names a tenant the current user
	// cannot see; the chain must fall through to the user default.
	s.Require().NoError(s.persist.Save(tenantctx.PersistedContext{TenantSlug: "rival-corp"}))

	s.dir.EXPECT().Memberships(ctx).Return(s.memberships(), nil)
	s.dir.EXPECT().TenantExists(ctx, "rival-corp").Return(true, nil)
	s.dir.EXPECT().DefaultTenantSlug(ctx).Return("beta", nil)
	s.dir.EXPECT().Memberships(ctx).Return(s.memberships(), nil)
	s.dir.EXPECT().CheckAccess(ctx, s.beta.ID).Return(domain.RoleViewer, true, nil)

	rc, err := s.init.Initialize(ctx, "/")
	s.Require().NoError(err)
	s.Equal("beta", rc.Tenant.Slug)
}

// No URL context, no persisted context, a valid default, and multiple
// memberships: the default tenant wins over the first membership.
func (s *InitializerSuite) TestDefaultBeatsFirstMembership() {
	ctx := context.Background()
	s.dir.EXPECT().DefaultTenantSlug(ctx).Return("beta", nil)
	s.dir.EXPECT().Memberships(ctx).Return(s.memberships(), nil)
	s.dir.EXPECT().CheckAccess(ctx, s.beta.ID).Return(domain.RoleViewer, true, nil)

	rc, err := s.init.Initialize(ctx, "/")
	s.Require().NoError(err)
	s.Equal("beta", rc.Tenant.Slug, "default preference wins over the first membership (acme)")
}

func (s *InitializerSuite) TestFirstAvailableAsLastResort() {
	ctx := context.Background()
	s.dir.EXPECT().DefaultTenantSlug(ctx).Return("", nil)
	s.dir.EXPECT().Memberships(ctx).Return(s.memberships(), nil)
	s.dir.EXPECT().Projects(ctx, s.acme.ID).Return([]tenantctx.Project{s.proj1}, nil)

	rc, err := s.init.Initialize(ctx, "/")
	s.Require().NoError(err)
	s.Equal("acme", rc.Tenant.Slug)
	s.Require().NotNil(rc.Project)
	s.Equal("proj1", rc.Project.Slug)

	pc, ok := s.persist.Load()
	s.True(ok)
	s.Equal("acme", pc.TenantSlug)
	s.Equal("proj1", pc.ProjectSlug)
}

func (s *InitializerSuite) TestNoMembershipsIsExplicitEmptyState() {
	ctx := context.Background()
	s.dir.EXPECT().DefaultTenantSlug(ctx).Return("", nil)
	s.dir.EXPECT().Memberships(ctx).Return(nil, nil)

	rc, err := s.init.Initialize(ctx, "/")
	s.Require().NoError(err)
	s.False(rc.HasAccess)
	s.Equal(dErrors.CodeNoMembership, rc.Reason)

	_, ok := s.persist.Load()
	s.False(ok, "an empty outcome is never persisted")
}

func (s *InitializerSuite) TestRejectedURLFallsThrough() {
	ctx := context.Background()
	// URL names a tenant the user lost access to; persisted context then wins.
	s.Require().NoError(s.persist.Save(tenantctx.PersistedContext{TenantSlug: "beta"}))

	s.dir.EXPECT().Memberships(ctx).Return(s.memberships(), nil)
	s.dir.EXPECT().TenantExists(ctx, "ghost").Return(false, nil)
	s.dir.EXPECT().Memberships(ctx).Return(s.memberships(), nil)
	s.dir.EXPECT().CheckAccess(ctx, s.beta.ID).Return(domain.RoleViewer, true, nil)

	rc, err := s.init.Initialize(ctx, "/ghost/settings")
	s.Require().NoError(err)
	s.Equal("beta", rc.Tenant.Slug)
}
