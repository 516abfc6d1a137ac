package services

import "socdocs/backend/models"

// Viewer is a snapshot of who is looking: possibly anonymous, possibly
// on a team. Built from a User by ViewerFor.
type Viewer struct {
	Authenticated bool
	ID            uint
	TeamID        *uint
	Staff         bool
}

// Permissions is the answer for one (item, viewer) pair.
type Permissions struct {
	CanView    bool
	CanEdit    bool
	CanPublish bool
}

// ResolveVisibility decides view/edit/publish rights for a content item.
// Rules are evaluated in order, first match wins:
//  1. staff sees and does everything;
//  2. drafts are restricted to the owner and the owning team;
//  3. approved class/global items are viewable by everyone (including
//     anonymous) but still only editable by owner/team;
//  4. approved team-only items behave like drafts.
//
// Note can_edit never depends on visibility beyond the draft/published
// split: teams keep edit rights on already-published content.
func ResolveVisibility(item *models.ContentFields, v Viewer) Permissions {
	if v.Staff {
		return Permissions{CanView: true, CanEdit: true, CanPublish: true}
	}

	member := v.Authenticated &&
		((item.OwnerID != nil && *item.OwnerID == v.ID) ||
			(item.TeamID != nil && v.TeamID != nil && *item.TeamID == *v.TeamID))

	if !item.Approved {
		return Permissions{
			CanView:    member,
			CanEdit:    member,
			CanPublish: member && item.TeamID != nil,
		}
	}

	if item.Visibility == models.VisibilityClass || item.Visibility == models.VisibilityGlobal {
		return Permissions{CanView: true, CanEdit: member}
	}

	// visibility=team with approved=true: unusual, treated like a draft.
	return Permissions{
		CanView:    member,
		CanEdit:    member,
		CanPublish: member && item.TeamID != nil,
	}
}
