package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateName indicates a unique-name constraint violation.
	ErrDuplicateName = errors.New("name already in use")
	// ErrInvalidAPIKey indicates an API key that failed verification.
	ErrInvalidAPIKey = errors.New("invalid api key")
	// ErrMissingOrg indicates a request reached a scoped handler without a
	// resolved organization.
	ErrMissingOrg = errors.New("organization not resolved")
)
