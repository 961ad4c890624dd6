package user

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// DefaultLanguages are assigned to accounts registered without a preference.
var DefaultLanguages = []string{"en", "ar"}

// User represents a registered reader.
type User struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username           string         `gorm:"size:30;uniqueIndex;not null"`
	Email              string         `gorm:"uniqueIndex;not null"`
	PasswordHash       string         `gorm:"column:password_hash;not null"`
	PreferredLanguages pq.StringArray `gorm:"type:text[];default:'{en,ar}'"`
	IsActive           bool           `gorm:"column:is_active;default:true"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName returns the database table name.
func (User) TableName() string {
	return "users"
}

// Languages returns the preferred languages, falling back to the defaults.
func (u *User) Languages() []string {
	if len(u.PreferredLanguages) == 0 {
		return append([]string(nil), DefaultLanguages...)
	}
	return []string(u.PreferredLanguages)
}

// ToResponse converts the user to its public representation.
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:                 u.ID,
		Username:           u.Username,
		Email:              u.Email,
		PreferredLanguages: u.Languages(),
		IsActive:           u.IsActive,
		CreatedAt:          u.CreatedAt,
	}
}
