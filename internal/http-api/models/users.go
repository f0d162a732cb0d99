package models

import "time"

// Role values, ascending privilege. Each tier is a superset of the one
// below for permission purposes; the superuser flag overrides the role.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

type User struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Username    string    `json:"username" gorm:"uniqueIndex;size:150;not null"`
	Email       string    `json:"email" gorm:"uniqueIndex;size:254;not null"`
	FirstName   string    `json:"first_name" gorm:"size:150"`
	LastName    string    `json:"last_name" gorm:"size:150"`
	Bio         string    `json:"bio" gorm:"type:text"`
	Role        string    `json:"role" gorm:"size:30;default:'user';not null"`
	IsSuperuser bool      `json:"is_superuser" gorm:"default:false;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// IsModerator reports whether the user holds moderator privileges or above.
func (u *User) IsModerator() bool {
	return u.Role == RoleModerator || u.Role == RoleAdmin || u.IsSuperuser
}

// IsAdmin reports whether the user holds admin privileges.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.IsSuperuser
}

func (User) TableName() string {
	return "users"
}
