package entities

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

// User is an account on the job board. The credential columns (Salt,
// PasswordDigest, SessionToken) never appear in JSON responses; handlers
// return the entity directly and rely on the `json:"-"` tags.
type User struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	FirstName string   `gorm:"size:100" json:"first_name"`
	LastName  string   `gorm:"size:100" json:"last_name"`
	Email     string   `gorm:"uniqueIndex;size:255" json:"email"`
	Role      UserRole `gorm:"size:20" json:"role"`

	// Salt and PasswordDigest are written once at registration.
	// SessionToken is rewritten on every successful login; the previous
	// token stops validating at that moment.
	Salt           string `gorm:"size:255" json:"-"`
	PasswordDigest string `gorm:"size:128" json:"-"`
	SessionToken   string `gorm:"index;size:128" json:"-"`

	Applications []Application `gorm:"foreignKey:UserID" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}
