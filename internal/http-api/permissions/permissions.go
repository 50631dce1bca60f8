// Package permissions holds the pure authorization decisions shared by
// every write path. Handlers resolve an Actor from the request, services
// pass it down here; nothing in this package touches storage.
package permissions

import "reviewhub/internal/http-api/models"

// Actor is the resolved identity a request acts as. The zero value is
// the anonymous actor: not authenticated, no role, no authority.
type Actor struct {
	ID            string
	Role          string
	Elevated      bool
	Authenticated bool
}

// Anonymous is the distinguished actor for unauthenticated requests.
var Anonymous = Actor{}

// ActorFromUser derives an Actor from a stored user record.
func ActorFromUser(u *models.User) Actor {
	if u == nil {
		return Anonymous
	}
	return Actor{
		ID:            u.ID,
		Role:          u.Role,
		Elevated:      u.IsStaff,
		Authenticated: true,
	}
}

// IsAdmin reports admin authority: the admin role or the elevated flag.
func (a Actor) IsAdmin() bool {
	return a.Authenticated && (a.Role == models.RoleAdmin || a.Elevated)
}

func (a Actor) IsModerator() bool {
	return a.Authenticated && a.Role == models.RoleModerator
}

// CanWriteCatalogReference reports whether the actor may create or
// delete categories, genres and titles. Reads are always allowed and
// never consult this.
func CanWriteCatalogReference(a Actor) bool {
	return a.IsAdmin()
}

// CanMutateOwnedContent reports whether the actor may update or delete
// a review or comment authored by authorID. Elevated roles override
// authorship.
func CanMutateOwnedContent(a Actor, authorID string) bool {
	if !a.Authenticated {
		return false
	}
	return a.IsAdmin() || a.IsModerator() || a.ID == authorID
}

// CanManageUsers reports whether the actor may list, create, modify or
// delete other user accounts.
func CanManageUsers(a Actor) bool {
	return a.IsAdmin()
}
