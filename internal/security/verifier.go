package security

import "errors"

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

type AccessTokenVerifier interface {
	VerifyAccessToken(token string) (TokenClaims, error)
}
