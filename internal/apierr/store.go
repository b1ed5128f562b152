package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres SQLSTATE classes the engine maps onto the taxonomy.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
	pgInvalidTextRep      = "22P02"
	pgNumericOutOfRange   = "22003"
	pgStringTooLong       = "22001"
	pgSerializationFail   = "40001"
	pgDeadlockDetected    = "40P01"
)

// FromStore maps a storage-layer failure into the HTTP taxonomy. The
// pre-write validation catches most of these earlier; this path covers
// races between concurrent writers and anything validation cannot see.
// Unclassified errors surface as 500 with diagnostics only in debug mode.
func FromStore(err error, debug bool) *Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound("")
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return New(http.StatusConflict, "Registro já existente")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return New(http.StatusConflict, uniqueMessage(pgErr.ConstraintName))
		case pgForeignKeyViolation:
			return New(http.StatusConflict, "Violação de integridade referencial")
		case pgNotNullViolation:
			return New(http.StatusUnprocessableEntity, "Campo obrigatório ausente")
		case pgCheckViolation:
			return New(http.StatusUnprocessableEntity, "Regra de negócio violada")
		case pgInvalidTextRep, pgNumericOutOfRange, pgStringTooLong:
			return New(http.StatusBadRequest, "Representação de dado inválida")
		case pgSerializationFail, pgDeadlockDetected:
			return New(http.StatusConflict, "Conflito de concorrência, tente novamente")
		}

		e := New(http.StatusInternalServerError, "Erro de banco de dados")
		if debug {
			e.Fields = map[string][]string{
				"detail": {fmt.Sprintf("sqlstate %s: %s", pgErr.Code, pgErr.Message)},
			}
		}
		return e
	}

	return Internal(err, debug)
}

// uniqueMessage translates a violated unique constraint into the
// field-specific conflict message documented by the API.
func uniqueMessage(constraint string) string {
	c := strings.ToLower(constraint)
	switch {
	case strings.Contains(c, "cpf"):
		return "CPF já cadastrado"
	case strings.Contains(c, "cnpj"):
		return "CNPJ já cadastrado"
	case strings.Contains(c, "localizacao"):
		return "Já existe um lote com essa localização (loteamento, quadra e lote)"
	case strings.Contains(c, "username"):
		return "Já existe um usuário com esse username"
	default:
		return "Registro já existente"
	}
}
