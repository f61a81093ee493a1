package domain

import "strings"

// Role is the access level of a user. The ordering is user < admin.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Rank orders roles; unknown roles rank below every known one.
func (r Role) Rank() int {
	switch r {
	case RoleUser:
		return 1
	case RoleAdmin:
		return 2
	default:
		return 0
	}
}

func (r Role) Valid() bool { return r.Rank() > 0 }

// ParseRole accepts the long names and the one-letter forms ("u", "a").
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user", "u":
		return RoleUser, true
	case "admin", "a":
		return RoleAdmin, true
	}
	return "", false
}

type User struct {
	ID       int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username string  `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email    *string `gorm:"uniqueIndex;size:255" json:"email"`
	Password string  `gorm:"size:255;not null" json:"-"`
	Role     Role    `gorm:"size:16;not null;default:user" json:"role"`
	Img      *string `gorm:"size:255" json:"img"`
	Timestamps
}

func (User) TableName() string { return "users" }

// UserPatch carries the user fields that may change through a partial
// update. Password is only ever set to a hash by the credential service.
type UserPatch struct {
	Username *string
	Email    *string
	Password *string
	Role     *Role
	Img      *string
}

func (p UserPatch) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = emptyToNil(*p.Email)
	}
	if p.Password != nil {
		u.Password = *p.Password
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Img != nil {
		u.Img = emptyToNil(*p.Img)
	}
}
