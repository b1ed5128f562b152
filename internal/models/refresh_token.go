package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is one row of the refresh-token ledger. Only the SHA-256
// hash of the secret is stored; the plaintext is shown to the client once
// at issuance and never persisted. Rotation inserts a new row and revokes
// the old one, a row never changes its hash.
type RefreshToken struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UsuarioID uuid.UUID  `gorm:"type:uuid;not null;index" json:"usuario_id"`
	TokenHash string     `gorm:"type:char(64);uniqueIndex:uq_refresh_tokens_token_hash;not null" json:"-"`
	UserAgent string     `gorm:"type:varchar(255)" json:"user_agent"`
	IPAddress string     `gorm:"type:varchar(45)" json:"ip_address"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`

	Usuario Usuario `gorm:"constraint:OnDelete:CASCADE;foreignKey:UsuarioID;references:ID" json:"-"`
}

// ActiveAt reports whether the token can still be exchanged at the given
// instant. Revocation and expiry are both terminal.
func (t RefreshToken) ActiveAt(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
