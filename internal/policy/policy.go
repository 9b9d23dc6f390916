// Package policy centralizes ownership-based authorization.
//
// Staff roles (admin, staff, receptionist) see every record. A client-role
// actor only sees records whose owning client is its own client profile.
package policy

import (
	"gorm.io/gorm"

	"github.com/BruksfildServices01/medspa-api/internal/httperr"
	"github.com/BruksfildServices01/medspa-api/internal/models"
)

type Actor struct {
	UserID   uint
	Role     string
	ClientID *uint
}

func (a Actor) IsClient() bool {
	return a.Role == models.RoleClient
}

func (a Actor) IsStaff() bool {
	return models.IsStaffRole(a.Role)
}

func (a Actor) HasRole(roles ...string) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// CanAccessClient checks that the actor may read or mutate a record owned by ownerClientID.
func CanAccessClient(a Actor, ownerClientID uint) error {
	if a.IsStaff() {
		return nil
	}
	if a.IsClient() && a.ClientID != nil && *a.ClientID == ownerClientID {
		return nil
	}
	return httperr.ErrForbidden
}

// RequireStaff rejects client-role and unknown actors.
func RequireStaff(a Actor) error {
	if a.IsStaff() {
		return nil
	}
	return httperr.ErrForbidden
}

// ScopeToClient restricts a list query to the actor's own records when the actor is a client.
// column is the owning client column, e.g. "client_id" or "payments.client_id".
func ScopeToClient(q *gorm.DB, a Actor, column string) *gorm.DB {
	if a.IsStaff() {
		return q
	}
	if a.IsClient() && a.ClientID != nil {
		return q.Where(column+" = ?", *a.ClientID)
	}
	return q.Where("1 = 0")
}
