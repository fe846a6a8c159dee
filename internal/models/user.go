package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Supported user roles.
const (
	RoleStudent    = "student"
	RoleRegistrar  = "registrar"
	RoleAdmissions = "admissions"
	RoleHead       = "head"
	RoleProfessor  = "professor"
	RoleAdmin      = "admin"
)

// Roles lists every role accepted by the portal.
var Roles = []string{RoleStudent, RoleRegistrar, RoleAdmissions, RoleHead, RoleProfessor, RoleAdmin}

// StaffRoles may write shared academic data.
var StaffRoles = []string{RoleAdmin, RoleRegistrar, RoleHead}

// User is an authenticated portal account.
type User struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"user_id"`
	Username     string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	FirstName    string    `gorm:"size:150" json:"first_name"`
	LastName     string    `gorm:"size:150" json:"last_name"`
	Role         string    `gorm:"size:20;not null;index" json:"role"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	DateJoined   time.Time `gorm:"autoCreateTime" json:"date_joined"`
}

// BeforeCreate assigns a UUID primary key.
func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

// FullName joins the first and last name.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// HasRole reports whether the user holds one of the roles.
func (u User) HasRole(roles ...string) bool {
	for _, role := range roles {
		if strings.EqualFold(u.Role, role) {
			return true
		}
	}
	return false
}
