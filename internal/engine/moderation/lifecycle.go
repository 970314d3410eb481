package moderation

import "devtogether/internal/engine/access"

// transitions lists where an organization may move from each status.
// Rejected and blocked organizations stay where they are.
var transitions = map[access.OrganizationStatus][]access.OrganizationStatus{
	access.OrgPending:  {access.OrgApproved, access.OrgRejected, access.OrgBlocked},
	access.OrgApproved: {access.OrgBlocked},
}

func CanTransition(from, to access.OrganizationStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
