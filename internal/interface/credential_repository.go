package repository

// CredentialVerifier resolves a bearer credential to the user id it was
// issued for.
type CredentialVerifier interface {
	Verify(token string) (int64, error)
}
