package models

import (
	"time"
)

// User is an authenticated account profile. Created lazily on first
// authentication and never deleted by the core logic.
type User struct {
	UID          string    `gorm:"type:varchar(36);primaryKey;column:uid" json:"uid"`
	DisplayName  string    `gorm:"type:varchar(64);not null;column:display_name" json:"displayName"`
	Email        *string   `gorm:"type:varchar(255);uniqueIndex;column:email" json:"email"`
	PasswordHash *string   `gorm:"type:varchar(255);column:password_hash" json:"-"`
	IsAnonymous  bool      `gorm:"not null;default:false;column:is_anonymous" json:"isAnonymous"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime;column:created_at" json:"createdAt"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "relay_users"
}
