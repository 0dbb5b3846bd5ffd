// Package tenantctx resolves "where the user currently is": it maps URL
// slugs to tenant entities, checks access, computes the role, chooses the
// active context on startup, and plans redirects on tenant switches.
package tenantctx

import (
	"cockpit/pkg/domain"
	dErrors "cockpit/pkg/domain-errors"
)

type TenantStatus string

const (
	TenantStatusActive   TenantStatus = "active"
	TenantStatusInactive TenantStatus = "inactive"
)

// Tenant is an organization the user is a member of, as reported by the
// membership endpoint. Role is the user's role within it.
type Tenant struct {
	ID     domain.TenantID
	Name   string
	Slug   string
	Role   domain.Role
	Status TenantStatus
}

func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

// Project belongs to exactly one tenant; the parent reference is never nil.
// Projects carry no independent role.
type Project struct {
	ID       domain.ProjectID
	TenantID domain.TenantID
	Name     string
	Slug     string
	Active   bool
}

// ResolvedContext is the outcome of one resolution. Produced fresh every
// time, never mutated. Failures travel on Reason as data so route guards can
// branch without exception handling.
//
// Invariant: Project != nil implies Project.TenantID == Tenant.ID and
// HasAccess == true.
type ResolvedContext struct {
	Tenant    *Tenant
	Project   *Project
	HasAccess bool
	Role      domain.Role
	// Reason explains a denied or empty context: tenant_not_found,
	// access_denied, project_not_found, no_membership. Empty on success and
	// on a context-free path.
	Reason dErrors.Code
}

// Empty reports whether the path carried no tenant context at all. Not an
// error state.
func (rc ResolvedContext) Empty() bool {
	return rc.Tenant == nil && rc.Reason == ""
}

// PersistedContext is the last successfully resolved slug pair, stored
// durably per installation. It survives across logins and must always be
// revalidated against the current user's live memberships before use.
type PersistedContext struct {
	TenantSlug  string `json:"tenant_slug"`
	ProjectSlug string `json:"project_slug,omitempty"`
}
