package model

import "time"

type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleEmployee Role = "Employee"
)

// Admin/Employee以外は不正
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// ユーザー（ログインIDはemail）
// PasswordHashはJSONに絶対に出さない
type User struct {
	ID           string     `json:"userId" gorm:"column:user_id;type:uuid;primaryKey"`
	Name         string     `json:"name" gorm:"not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"column:password_hash;not null"`
	Role         Role       `json:"role" gorm:"type:varchar(20);not null;default:'Employee';index"`
	Status       Status     `json:"status" gorm:"type:varchar(20);not null;default:'Active'"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `json:"createdAt" gorm:"not null"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

func (u *User) IsActive() bool {
	return u != nil && u.Status == StatusActive
}
