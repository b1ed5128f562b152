package models

import (
	"time"

	"github.com/google/uuid"
)

// AccessToken records an issued access-token ID (the JWT jti claim).
// Logout deletes a user's rows, invalidating tokens before they expire.
type AccessToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UsuarioID uuid.UUID `gorm:"type:uuid;not null;index" json:"usuario_id"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Usuario Usuario `gorm:"constraint:OnDelete:CASCADE;foreignKey:UsuarioID;references:ID" json:"-"`
}
