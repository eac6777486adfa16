package ports

// TokenClaims carries the authenticated actor extracted from a bearer token.
type TokenClaims struct {
	ActorID string
	Role    string
}

// TokenService issues and validates access tokens for actors.
type TokenService interface {
	GenerateAccessToken(claims TokenClaims) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
}

// PasswordService hashes and verifies actor passwords.
type PasswordService interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}
