package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pulseboard/pulseboard/internal/shared"
)

// KeyStore abstracts credential lookup for the service.
type KeyStore interface {
	GetKey(ctx context.Context, id uuid.UUID) (APIKey, error)
	TouchKey(ctx context.Context, id uuid.UUID) error
}

// Service verifies bearer tokens of the form "pb_<keyID>_<secret>" and
// resolves them to an organization.
type Service struct {
	keys   KeyStore
	pepper string
}

// NewService constructs the auth service. The pepper is mixed into every
// secret before hashing so a database dump alone cannot validate keys.
func NewService(keys KeyStore, pepper string) *Service {
	return &Service{keys: keys, pepper: pepper}
}

const tokenPrefix = "pb_"

// Authenticate resolves a bearer token to the owning organization.
func (s *Service) Authenticate(ctx context.Context, token string) (uuid.UUID, error) {
	keyID, secret, err := splitToken(token)
	if err != nil {
		return uuid.Nil, err
	}
	key, err := s.keys.GetKey(ctx, keyID)
	if err != nil {
		return uuid.Nil, err
	}
	if key.Revoked() {
		return uuid.Nil, shared.ErrInvalidAPIKey
	}
	if err := bcrypt.CompareHashAndPassword([]byte(key.SecretHash), []byte(secret+s.pepper)); err != nil {
		return uuid.Nil, shared.ErrInvalidAPIKey
	}
	_ = s.keys.TouchKey(ctx, key.ID)
	return key.OrgID, nil
}

// HashSecret produces the stored hash for a key secret. Used by
// provisioning tooling and tests.
func (s *Service) HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret+s.pepper), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func splitToken(token string) (uuid.UUID, string, error) {
	token = strings.TrimSpace(token)
	if !strings.HasPrefix(token, tokenPrefix) {
		return uuid.Nil, "", shared.ErrInvalidAPIKey
	}
	rest := strings.TrimPrefix(token, tokenPrefix)
	idPart, secret, ok := strings.Cut(rest, "_")
	if !ok || secret == "" {
		return uuid.Nil, "", shared.ErrInvalidAPIKey
	}
	keyID, err := uuid.Parse(idPart)
	if err != nil {
		return uuid.Nil, "", shared.ErrInvalidAPIKey
	}
	return keyID, secret, nil
}
