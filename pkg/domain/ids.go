// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "cockpit/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing UserID where TenantID is expected.
type (
	UserID    uuid.UUID
	TenantID  uuid.UUID
	ProjectID uuid.UUID
	InstallID uuid.UUID
)

// Parse functions - use at trust boundaries (API responses, persisted state).

func ParseUserID(s string) (UserID, error) {
	id, err := parseUUID(s, "user ID")
	return UserID(id), err
}

func ParseTenantID(s string) (TenantID, error) {
	id, err := parseUUID(s, "tenant ID")
	return TenantID(id), err
}

func ParseProjectID(s string) (ProjectID, error) {
	id, err := parseUUID(s, "project ID")
	return ProjectID(id), err
}

func ParseInstallID(s string) (InstallID, error) {
	id, err := parseUUID(s, "install ID")
	return InstallID(id), err
}

func parseUUID(s, label string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+label)
	}
	return id, nil
}

// String methods - for logging and debugging.

func (id UserID) String() string    { return uuid.UUID(id).String() }
func (id TenantID) String() string  { return uuid.UUID(id).String() }
func (id ProjectID) String() string { return uuid.UUID(id).String() }
func (id InstallID) String() string { return uuid.UUID(id).String() }

// IsNil checks - a nil ID means the value was never set.

func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id TenantID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id ProjectID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id InstallID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// New functions - for tests and freshly-minted installation identifiers.

func NewUserID() UserID       { return UserID(uuid.New()) }
func NewTenantID() TenantID   { return TenantID(uuid.New()) }
func NewProjectID() ProjectID { return ProjectID(uuid.New()) }
func NewInstallID() InstallID { return InstallID(uuid.New()) }
