package auth

import "errors"

var (
	// ErrInvalidCredentials covers both unknown-username and wrong-password
	// logins. Callers must not distinguish the two cases.
	ErrInvalidCredentials = errors.New("credenciais inválidas")

	// ErrInvalidRefreshToken covers every refresh failure: unknown hash,
	// revoked row, expired row, and losing a concurrent rotation race.
	ErrInvalidRefreshToken = errors.New("refresh token inválido")

	// ErrInvalidAccessToken is returned for unparseable, expired, or
	// revoked bearer tokens.
	ErrInvalidAccessToken = errors.New("access token inválido")

	// ErrNotFound is the storage-neutral missing-row signal shared by the
	// credential store and the ledger.
	ErrNotFound = errors.New("registro não encontrado")
)
