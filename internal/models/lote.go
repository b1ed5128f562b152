package models

import (
	"time"

	"github.com/google/uuid"
)

// Lote is a land parcel. The triple (NumLoteamento, NumQuadra, NumLote)
// identifies its location and is unique across the table.
type Lote struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Nome          string    `gorm:"type:varchar(120);not null" json:"nome"`
	NumLoteamento int       `gorm:"not null;uniqueIndex:uq_lotes_localizacao" json:"num_loteamento"`
	NumQuadra     int       `gorm:"not null;uniqueIndex:uq_lotes_localizacao" json:"num_quadra"`
	NumLote       int       `gorm:"not null;uniqueIndex:uq_lotes_localizacao" json:"num_lote"`
	AreaLote      float64   `gorm:"type:numeric(12,2);not null" json:"area_lote"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
