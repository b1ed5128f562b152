package models

import (
	"time"

	"github.com/google/uuid"
)

// Usuario represents an API user able to authenticate and manage resources.
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Username     string    `gorm:"type:varchar(100);uniqueIndex:uq_usuarios_username;not null" json:"username"`
	PasswordHash string    `gorm:"type:text;not null" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	RefreshTokens []RefreshToken `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	AccessTokens  []AccessToken  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
