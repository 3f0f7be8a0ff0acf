// internal/models/user.go
package models

// Role names carried by registered users.
const (
	RoleStudent    = "STUDENT"
	RoleAdmin      = "ADMIN"
	RoleClubLeader = "CLUB_LEADER"
)

// User is a registered account in the document store. PasswordHash is the
// stored bcrypt hash; it never serializes outward.
type User struct {
	ID           string   `json:"id"`
	Email        string   `json:"email"`
	Name         string   `json:"name"`
	Roles        []string `json:"roles"`
	AdminClubID  string   `json:"adminClubId,omitempty"`
	PasswordHash string   `json:"-"`
}

// HasElevatedRole reports whether the user carries an administrator-grade role.
func (u *User) HasElevatedRole() bool {
	for _, r := range u.Roles {
		if r == RoleAdmin || r == RoleClubLeader {
			return true
		}
	}
	return false
}
