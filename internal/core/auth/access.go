package auth

import "docuisine/internal/domain"

// RequireRole passes when p's role is at least minimum in the user < admin
// ordering. Unknown roles never pass.
func RequireRole(p Principal, minimum domain.Role) error {
	if !p.Role.Valid() || p.Role.Rank() < minimum.Rank() {
		return domain.Forbidden("%s role required", minimum)
	}
	return nil
}

// CanActOn reports whether p may modify a resource owned by ownerID.
func CanActOn(p Principal, ownerID int64) bool {
	if p.Role == domain.RoleAdmin {
		return true
	}
	return p.Role.Valid() && p.UserID != 0 && p.UserID == ownerID
}
