package apikey

import "time"

type Role string

const (
	// RoleClient may submit and read comparisons.
	RoleClient Role = "client"
	// RoleAdmin may also manage exercises and keys.
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleClient || r == RoleAdmin
}

type APIKey struct {
	ID         string     `gorm:"primaryKey" json:"id"`
	Name       string     `gorm:"not null" json:"name"`
	Role       Role       `gorm:"not null;index" json:"role"`
	Prefix     string     `gorm:"uniqueIndex;not null" json:"-"`
	SecretHash string     `gorm:"not null" json:"-"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (k *APIKey) IsExpired() bool {
	if k.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*k.ExpiresAt)
}

// Allows reports whether the key carries at least the given role.
func (k *APIKey) Allows(role Role) bool {
	return k.Role == RoleAdmin || k.Role == role
}
