package domain

// Identity is the caller derived from a verified bearer token.
type Identity struct {
	UserID string
	Role   Role
}
