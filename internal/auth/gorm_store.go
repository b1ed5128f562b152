package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lotear/internal/models"
)

// GormCredentialStore reads users from the usuarios table.
type GormCredentialStore struct {
	db *gorm.DB
}

// NewGormCredentialStore binds the store to a gorm handle.
func NewGormCredentialStore(db *gorm.DB) *GormCredentialStore {
	return &GormCredentialStore{db: db}
}

func (s *GormCredentialStore) FindByUsername(ctx context.Context, username string) (*models.Usuario, error) {
	var user models.Usuario
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GormLedger is the postgres-backed refresh-token ledger.
type GormLedger struct {
	db *gorm.DB
}

// NewGormLedger binds the ledger to a gorm handle.
func NewGormLedger(db *gorm.DB) *GormLedger {
	return &GormLedger{db: db}
}

func (l *GormLedger) Create(ctx context.Context, token *models.RefreshToken) error {
	return l.db.WithContext(ctx).Create(token).Error
}

func (l *GormLedger) FindByHash(ctx context.Context, hash string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	err := l.db.WithContext(ctx).Where("token_hash = ?", hash).First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// Rotate revokes the presented token and inserts its successor in one
// transaction. The revoke is conditional on the row still being
// unrevoked; losing that race surfaces as ErrInvalidRefreshToken so the
// caller responds exactly as it would for any dead token.
func (l *GormLedger) Rotate(ctx context.Context, oldID uuid.UUID, revokedAt time.Time, next *models.RefreshToken) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.RefreshToken{}).
			Where("id = ? AND revoked_at IS NULL", oldID).
			Update("revoked_at", revokedAt)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidRefreshToken
		}
		return tx.Create(next).Error
	})
}

// RevokeAllForUser executes as a single bulk UPDATE, never a
// read-then-loop-write.
func (l *GormLedger) RevokeAllForUser(ctx context.Context, userID uuid.UUID, revokedAt time.Time) error {
	return l.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("usuario_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", revokedAt).Error
}

// GormAccessTokenStore persists issued jti rows.
type GormAccessTokenStore struct {
	db *gorm.DB
}

// NewGormAccessTokenStore binds the store to a gorm handle.
func NewGormAccessTokenStore(db *gorm.DB) *GormAccessTokenStore {
	return &GormAccessTokenStore{db: db}
}

func (s *GormAccessTokenStore) Create(ctx context.Context, token *models.AccessToken) error {
	return s.db.WithContext(ctx).Create(token).Error
}

func (s *GormAccessTokenStore) Exists(ctx context.Context, jti uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.AccessToken{}).
		Where("id = ?", jti).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *GormAccessTokenStore) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithContext(ctx).
		Where("usuario_id = ?", userID).
		Delete(&models.AccessToken{}).Error
}
