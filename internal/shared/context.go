package shared

import (
	"context"

	"github.com/google/uuid"
)

type orgContextKey struct{}

// ContextWithOrg stores the resolved organization ID in context. Every
// repository read and write is scoped to this ID; there is no default
// organization fallback anywhere.
func ContextWithOrg(ctx context.Context, orgID uuid.UUID) context.Context {
	return context.WithValue(ctx, orgContextKey{}, orgID)
}

// OrgFromContext extracts the organization ID from context. The second
// result reports whether one was resolved.
func OrgFromContext(ctx context.Context) (uuid.UUID, bool) {
	orgID, ok := ctx.Value(orgContextKey{}).(uuid.UUID)
	if !ok || orgID == uuid.Nil {
		return uuid.Nil, false
	}
	return orgID, true
}
