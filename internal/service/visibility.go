// Package service contains the application's business logic.
package service

import (
	"socialconnect/internal/models"
)

// Viewer identifies who is asking. The zero value is an anonymous viewer.
type Viewer struct {
	ID            uint
	IsStaff       bool
	Authenticated bool
}

// Anonymous is the unauthenticated viewer.
var Anonymous = Viewer{}

// Decision is the outcome of a visibility check.
type Decision int

const (
	Deny Decision = iota
	Allow
)

// CanViewProfile decides whether viewer may see the profile owned by
// ownerID. It is a pure function: the caller supplies the follow state.
//
// Owners and staff always see their target. Public profiles are open to
// everyone including anonymous viewers. Private profiles are owner/staff
// only. Followers-only profiles require an authenticated viewer with an
// existing viewer->owner follow edge.
//
// A denial never masks existence: callers translate Deny into 403, and
// reserve 404 for users that do not exist.
func CanViewProfile(viewer Viewer, ownerID uint, visibility models.ProfileVisibility, isFollowing bool) Decision {
	if viewer.Authenticated && (viewer.ID == ownerID || viewer.IsStaff) {
		return Allow
	}

	switch visibility {
	case models.VisibilityPublic:
		return Allow
	case models.VisibilityPrivate:
		return Deny
	case models.VisibilityFollowersOnly:
		if !viewer.Authenticated {
			return Deny
		}
		if isFollowing {
			return Allow
		}
		return Deny
	}

	// Unknown visibility values fail closed.
	return Deny
}
