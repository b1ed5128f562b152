package apierr

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromValidationStatusSelection(t *testing.T) {
	tests := []struct {
		name   string
		errs   []FieldError
		status int
	}{
		{
			name:   "required field",
			errs:   []FieldError{{Field: "nome", Message: "obrigatório", Rule: RuleRequired}},
			status: http.StatusBadRequest,
		},
		{
			name:   "format error",
			errs:   []FieldError{{Field: "email", Message: "inválido", Rule: RuleFormat}},
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown body field",
			errs:   []FieldError{{Field: "foo", Message: "não permitido", Rule: RuleUnknown}},
			status: http.StatusBadRequest,
		},
		{
			name:   "business rule",
			errs:   []FieldError{{Field: "cnpj", Message: "proibido para pessoa física", Rule: RuleBusiness}},
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "uniqueness conflict",
			errs:   []FieldError{{Field: "cpf", Message: "já cadastrado", Rule: RuleUnique}},
			status: http.StatusConflict,
		},
		{
			name: "unique dominates business",
			errs: []FieldError{
				{Field: "cnpj", Message: "proibido", Rule: RuleBusiness},
				{Field: "cpf", Message: "já cadastrado", Rule: RuleUnique},
			},
			status: http.StatusConflict,
		},
		{
			name: "business dominates format",
			errs: []FieldError{
				{Field: "email", Message: "inválido", Rule: RuleFormat},
				{Field: "cnpj", Message: "proibido", Rule: RuleBusiness},
			},
			status: http.StatusUnprocessableEntity,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := FromValidation(tc.errs)
			require.NotNil(t, e)
			assert.Equal(t, tc.status, e.Status)
			assert.Equal(t, "Erro de validação", e.Message)
			assert.NotEmpty(t, e.Fields)
		})
	}
}

func TestFromValidationEmpty(t *testing.T) {
	assert.Nil(t, FromValidation(nil))
}

func TestFromFilterAlways422(t *testing.T) {
	e := FromFilter([]FieldError{{Field: "foo", Message: "parâmetro desconhecido", Rule: RuleUnknown}})
	require.NotNil(t, e)
	assert.Equal(t, http.StatusUnprocessableEntity, e.Status)
	assert.Equal(t, "Filtro inválido", e.Message)
}

func TestFromValidationGroupsMessagesByField(t *testing.T) {
	e := FromValidation([]FieldError{
		{Field: "cpf", Message: "obrigatório para pessoa física", Rule: RuleRequired},
		{Field: "cpf", Message: "deve conter 11 dígitos", Rule: RuleFormat},
	})
	require.NotNil(t, e)
	assert.Equal(t, []string{"obrigatório para pessoa física", "deve conter 11 dígitos"}, e.Fields["cpf"])
}

func TestInternalHidesDetailWithoutDebug(t *testing.T) {
	e := Internal(assert.AnError, false)
	assert.Equal(t, http.StatusInternalServerError, e.Status)
	assert.Empty(t, e.Fields)

	e = Internal(assert.AnError, true)
	require.Contains(t, e.Fields, "detail")
}
