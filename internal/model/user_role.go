package model

import "time"

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

type UserRole struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	ProfileID uint64    `gorm:"column:profile_id;not null;uniqueIndex:uk_user_roles_profile_role"`
	Role      Role      `gorm:"column:role;size:32;not null;uniqueIndex:uk_user_roles_profile_role"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (UserRole) TableName() string {
	return "user_roles"
}
