package types

import "time"

type Role string

const (
	RoleDonor         Role = "donor"
	RoleBusiness      Role = "business"
	RoleCommunityHead Role = "community_head"
	RoleAdmin         Role = "admin"
)

// SelfServiceRoles are the roles a user may pick at registration. Admins are
// only ever created by promotion or the seed command.
var SelfServiceRoles = []Role{RoleDonor, RoleBusiness, RoleCommunityHead}

func (r Role) Valid() bool {
	switch r {
	case RoleDonor, RoleBusiness, RoleCommunityHead, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           string    `db:"id" json:"id"`
	Role         Role      `db:"role" json:"role"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	PasswordHash string    `db:"password_hash" json:"-"`
	AuthSubject  *string   `db:"auth_subject" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}
