package service

import "catalog-service/internal/domain"

// OnlyActive reports whether single-record reads must hide inactive records
// from caller. Anonymous callers are represented by nil.
func OnlyActive(caller *domain.User) bool {
	return !caller.IsAdmin()
}

// ActiveFilter returns the is_active filter applied to a list. Admins get
// their requested filter (nil means both states); everyone else sees active
// records only, whatever they asked for.
func ActiveFilter(caller *domain.User, requested *bool) *bool {
	if caller.IsAdmin() {
		return requested
	}
	active := true
	return &active
}
