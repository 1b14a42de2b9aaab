package service

import "habit-server/internal/domain"

// canAccess is the self-or-admin rule: a principal may act on a resource it
// owns, and an admin may act on anything.
func canAccess(principal *domain.User, ownerID int64) bool {
	if principal == nil {
		return false
	}
	return principal.ID == ownerID || principal.IsAdmin
}
