package db

import (
	"context"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lotear/internal/models"
)

// Seed inserts the bootstrap admin user so a fresh deployment can log in.
// An existing row with the same username is left untouched.
func Seed(ctx context.Context, database *gorm.DB) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.Usuario{
		Username:     "admin",
		PasswordHash: string(hash),
	}
	return database.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&admin).Error
}
