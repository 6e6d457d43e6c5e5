package services

// Error taxonomy returned by the service layer. Handlers map each kind to an
// HTTP status at the boundary; anything outside the taxonomy is treated as an
// internal error and its detail is kept server-side.

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// AuthError reports missing or invalid credentials, tokens, or ownership
// context.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// ConflictError reports a unique-constraint violation.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// NotFoundError reports that no matching owned row exists. A row owned by
// another user is reported identically to a missing one.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }
