package domain

import "time"

// AuthProvider identifies how a user authenticates.
type AuthProvider string

const (
	ProviderLocal  AuthProvider = "LOCAL"
	ProviderGoogle AuthProvider = "GOOGLE"
)

// User represents a merchant agent account. The ledger core only ever
// consumes the UserID; the remaining fields serve the session boundary.
type User struct {
	UserID       string       `json:"userID"` // Primary key (UUID)
	Email        string       `json:"email"`
	Name         string       `json:"name"`
	PasswordHash string       `json:"-"` // Empty for external-provider accounts
	AuthProvider AuthProvider `json:"authProvider"`

	// Refresh token state; only the SHA256 hash is ever stored.
	RefreshTokenHash       string     `json:"-"`
	RefreshTokenExpiryTime *time.Time `json:"-"`

	CreatedAt     time.Time  `json:"createdAt"`
	LastUpdatedAt time.Time  `json:"lastUpdatedAt"`
	DeletedAt     *time.Time `json:"deletedAt,omitempty"` // Soft delete
}
