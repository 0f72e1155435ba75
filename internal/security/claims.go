package security

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type TokenClaims struct {
	UserID  uuid.UUID
	Role    string
	Exp     time.Time
	Issuer  string
	Subject string
}

func (c TokenClaims) IsAdmin() bool { return c.Role == RoleAdmin }
