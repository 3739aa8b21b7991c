package auth

import (
	"time"

	"github.com/google/uuid"
)

// APIKey identifies an integration credential scoped to one organization.
// Only the bcrypt hash of the secret half is stored.
type APIKey struct {
	ID         uuid.UUID
	OrgID      uuid.UUID
	Name       string
	SecretHash string
	CreatedAt  time.Time
	RevokedAt  *time.Time
}

// Revoked reports whether the key has been disabled.
func (k APIKey) Revoked() bool {
	return k.RevokedAt != nil
}
