package tenantctx_test

//go:generate mockgen -source=directory.go -destination=mocks/mocks.go -package=mocks Directory

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"cockpit/internal/routing"
	"cockpit/internal/tenantctx"
	"cockpit/internal/tenantctx/mocks"
	"cockpit/pkg/domain"
)

type ResolverSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	dir      *mocks.MockDirectory
	routes   *routing.Descriptor
	resolver *tenantctx.Resolver

	acme   tenantctx.Tenant
	beta   tenantctx.Tenant
	proj1  tenantctx.Project
	proj2  tenantctx.Project
	logger *slog.Logger
}

func (s *ResolverSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.dir = mocks.NewMockDirectory(s.ctrl)
	s.routes = routing.DefaultDescriptor()
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.resolver = tenantctx.NewResolver(s.dir, s.routes,
		tenantctx.WithResolverLogger(s.logger))

	s.acme = tenantctx.Tenant{
		ID:     domain.NewTenantID(),
		Name:   "Acme Rockets",
		Slug:   "acme",
		Role:   domain.RoleAdmin,
		Status: tenantctx.TenantStatusActive,
	}
	s.beta = tenantctx.Tenant{
		ID:     domain.NewTenantID(),
		Name:   "Beta Labs",
		Slug:   "beta",
		Role:   domain.RoleViewer,
		Status: tenantctx.TenantStatusActive,
	}
	s.proj1 = tenantctx.Project{
		ID:       domain.NewProjectID(),
		TenantID: s.acme.ID,
		Name:     "Project One",
		Slug:     "proj1",
		Active:   true,
	}
	s.proj2 = tenantctx.Project{
		ID:       domain.NewProjectID(),
		TenantID: s.acme.ID,
		Name:     "Project Two",
		Slug:     "proj2",
		Active:   false,
	}
}

func (s *ResolverSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ResolverSuite) memberships() []tenantctx.Tenant {
	return []tenantctx.Tenant{s.acme, s.beta}
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}
