package db

import (
	"context"

	"gorm.io/gorm"

	"lotear/internal/models"
)

// checkConstraints are cross-field rules AutoMigrate cannot express. They
// back up the request validation: a FISICA row carries a CPF and no CNPJ,
// a JURIDICA row the inverse plus the responsible person.
var checkConstraints = []struct {
	table string
	name  string
	expr  string
}{
	{
		table: "clientes",
		name:  "ck_clientes_tipo_pessoa",
		expr:  "tipo_pessoa IN ('FISICA', 'JURIDICA')",
	},
	{
		table: "clientes",
		name:  "ck_clientes_documentos",
		expr: "(tipo_pessoa = 'FISICA' AND cpf IS NOT NULL AND cnpj IS NULL AND responsavel_nome IS NULL AND responsavel_cpf IS NULL)" +
			" OR (tipo_pessoa = 'JURIDICA' AND cnpj IS NOT NULL AND cpf IS NULL AND responsavel_nome IS NOT NULL AND responsavel_cpf IS NOT NULL)",
	},
	{
		table: "lotes",
		name:  "ck_lotes_area_positiva",
		expr:  "area_lote > 0",
	},
}

// Migrate performs schema migrations for the persistent models.
func Migrate(ctx context.Context, database *gorm.DB) error {
	tx := database.WithContext(ctx)

	if err := tx.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return err
	}

	if err := tx.AutoMigrate(
		&models.Usuario{},
		&models.RefreshToken{},
		&models.AccessToken{},
		&models.Cliente{},
		&models.Lote{},
	); err != nil {
		return err
	}

	for _, c := range checkConstraints {
		stmt := `DO $$ BEGIN
			ALTER TABLE ` + c.table + ` ADD CONSTRAINT ` + c.name + ` CHECK (` + c.expr + `);
		EXCEPTION WHEN duplicate_object THEN NULL;
		END $$;`
		if err := tx.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}
