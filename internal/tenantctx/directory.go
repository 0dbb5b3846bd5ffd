package tenantctx

import (
	"context"
	"net/url"

	"cockpit/internal/api"
	"cockpit/pkg/domain"
	dErrors "cockpit/pkg/domain-errors"
)

// Directory is the membership/role data source backing resolution. The API
// implementation always queries live data: slugs are derived from display
// names and may change, so nothing here is cached long-term.
type Directory interface {
	// Memberships returns the tenants the current user belongs to, in the
	// backend's stable order.
	Memberships(ctx context.Context) ([]Tenant, error)
	// TenantExists reports whether a slug is known globally, regardless of
	// the user's access. Distinguishes "tenant not found" from "access
	// denied".
	TenantExists(ctx context.Context, slug string) (bool, error)
	// CheckAccess re-verifies membership in a tenant and returns the user's
	// role. A slug match alone is not proof of access; the user could have
	// been removed since the membership list was fetched.
	CheckAccess(ctx context.Context, tenantID domain.TenantID) (domain.Role, bool, error)
	// Projects returns the tenant's projects.
	Projects(ctx context.Context, tenantID domain.TenantID) ([]Project, error)
	// DefaultTenantSlug returns the user's stored default-tenant
	// preference, empty when unset.
	DefaultTenantSlug(ctx context.Context) (string, error)
}

// apiDirectory implements Directory against the dashboard backend.
type apiDirectory struct {
	client *api.Client
}

// NewDirectory creates the API-backed membership directory.
func NewDirectory(client *api.Client) Directory {
	return &apiDirectory{client: client}
}

type membershipDTO struct {
	TenantID   string `json:"tenant_id"`
	TenantName string `json:"tenant_name"`
	TenantSlug string `json:"tenant_slug"`
	Role       string `json:"role"`
	Status     string `json:"status"`
}

func (d membershipDTO) toTenant() (Tenant, error) {
	id, err := domain.ParseTenantID(d.TenantID)
	if err != nil {
		return Tenant{}, err
	}
	role, err := domain.ParseRole(d.Role)
	if err != nil {
		return Tenant{}, err
	}
	return Tenant{
		ID:     id,
		Name:   d.TenantName,
		Slug:   d.TenantSlug,
		Role:   role,
		Status: TenantStatus(d.Status),
	}, nil
}

func (d *apiDirectory) Memberships(ctx context.Context) ([]Tenant, error) {
	var dtos []membershipDTO
	if _, err := d.client.GetList(ctx, "/v1/me/memberships", &dtos); err != nil {
		return nil, err
	}
	tenants := make([]Tenant, 0, len(dtos))
	for _, dto := range dtos {
		t, err := dto.toTenant()
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeContractViolation, "malformed membership entry")
		}
		tenants = append(tenants, t)
	}
	return tenants, nil
}

func (d *apiDirectory) TenantExists(ctx context.Context, slug string) (bool, error) {
	var out struct {
		ID string `json:"id"`
	}
	err := d.client.Get(ctx, "/v1/tenants/"+url.PathEscape(slug), &out)
	if err == nil {
		return true, nil
	}
	if dErrors.HasCode(err, dErrors.CodeNotFound) {
		return false, nil
	}
	// A tenant that exists but is not visible to this user comes back 403.
	if dErrors.HasCode(err, dErrors.CodeForbidden) {
		return true, nil
	}
	return false, err
}

func (d *apiDirectory) CheckAccess(ctx context.Context, tenantID domain.TenantID) (domain.Role, bool, error) {
	var out struct {
		Role string `json:"role"`
	}
	err := d.client.Get(ctx, "/v1/tenants/"+tenantID.String()+"/membership", &out,
		api.WithTenantContext(tenantID.String()))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeForbidden) || dErrors.HasCode(err, dErrors.CodeNotFound) {
			return domain.RoleNone, false, nil
		}
		return domain.RoleNone, false, err
	}
	role, err := domain.ParseRole(out.Role)
	if err != nil {
		return domain.RoleNone, false, dErrors.Wrap(err, dErrors.CodeContractViolation, "malformed membership role")
	}
	return role, true, nil
}

type projectDTO struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Active   bool   `json:"active"`
}

func (p projectDTO) toProject() (Project, error) {
	id, err := domain.ParseProjectID(p.ID)
	if err != nil {
		return Project{}, err
	}
	tenantID, err := domain.ParseTenantID(p.TenantID)
	if err != nil {
		return Project{}, err
	}
	return Project{
		ID:       id,
		TenantID: tenantID,
		Name:     p.Name,
		Slug:     p.Slug,
		Active:   p.Active,
	}, nil
}

func (d *apiDirectory) Projects(ctx context.Context, tenantID domain.TenantID) ([]Project, error) {
	var dtos []projectDTO
	if _, err := d.client.GetList(ctx, "/v1/tenants/"+tenantID.String()+"/projects", &dtos,
		api.WithTenantContext(tenantID.String())); err != nil {
		return nil, err
	}
	projects := make([]Project, 0, len(dtos))
	for _, dto := range dtos {
		p, err := dto.toProject()
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeContractViolation, "malformed project entry")
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func (d *apiDirectory) DefaultTenantSlug(ctx context.Context) (string, error) {
	var out struct {
		DefaultTenantSlug string `json:"default_tenant_slug"`
	}
	if err := d.client.Get(ctx, "/v1/me/preferences", &out); err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return "", nil
		}
		return "", err
	}
	return out.DefaultTenantSlug, nil
}
