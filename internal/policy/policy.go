// Package policy maps (actor, operation, resource owner) to an allow/deny
// decision. Policies are pure predicates so they compose and can be tested
// without any transport.
package policy

import "github.com/critiq-dev/critiq/internal/models"

// Actor is the identity a request runs as. The zero value is anonymous.
type Actor struct {
	ID            uint
	Username      string
	Role          string
	Staff         bool
	Authenticated bool
}

func (a Actor) IsAdmin() bool {
	return a.Authenticated && (a.Role == models.RoleAdmin || a.Staff)
}

func (a Actor) IsModerator() bool {
	return a.Authenticated && a.Role == models.RoleModerator
}

// Input describes one access decision. Write is false for safe (read)
// operations. OwnerID is set when the target resource has an author.
type Input struct {
	Actor   Actor
	Write   bool
	OwnerID *uint
}

type Policy func(Input) bool

// ReadOnly allows safe operations only.
func ReadOnly(in Input) bool {
	return !in.Write
}

// Admin allows authenticated admins (or staff) only.
func Admin(in Input) bool {
	return in.Actor.IsAdmin()
}

// Authenticated allows any authenticated actor.
func Authenticated(in Input) bool {
	return in.Actor.Authenticated
}

// AuthorOrStaffOrReadOnly allows safe operations for everyone and writes for
// the resource's author, moderators and admins.
func AuthorOrStaffOrReadOnly(in Input) bool {
	if !in.Write {
		return true
	}

	if !in.Actor.Authenticated {
		return false
	}

	if in.Actor.IsAdmin() || in.Actor.IsModerator() {
		return true
	}

	return in.OwnerID != nil && *in.OwnerID == in.Actor.ID
}

// AnyOf allows when at least one of the given policies allows.
func AnyOf(policies ...Policy) Policy {
	return func(in Input) bool {
		for _, p := range policies {
			if p(in) {
				return true
			}
		}
		return false
	}
}

// AdminOrReadOnly guards categories, genres and titles: anonymous reads
// always succeed, writes require admin.
var AdminOrReadOnly = AnyOf(Admin, ReadOnly)
