// Package validate holds the request-shape rules applied before any write
// reaches the store. Each input type normalizes, validates, and maps onto
// a model; the status code of a failure is decided by the apierr engine
// from which rules were violated, never by the resource itself.
package validate

import (
	"net/mail"
	"regexp"
	"strings"

	"lotear/internal/apierr"
	"lotear/internal/models"
)

var (
	cpfPattern  = regexp.MustCompile(`^[0-9]{11}$`)
	cnpjPattern = regexp.MustCompile(`^[0-9]{14}$`)
	nonDigits   = regexp.MustCompile(`\D+`)
)

// ClienteInput is the request body for creating or updating a customer.
// Pointer fields distinguish absent from empty, which partial updates
// depend on.
type ClienteInput struct {
	Nome            *string `json:"nome"`
	Endereco        *string `json:"endereco"`
	Telefone        *string `json:"telefone"`
	Email           *string `json:"email"`
	TipoPessoa      *string `json:"tipo_pessoa"`
	CPF             *string `json:"cpf"`
	CNPJ            *string `json:"cnpj"`
	ResponsavelNome *string `json:"responsavel_nome"`
	ResponsavelCPF  *string `json:"responsavel_cpf"`
}

// Normalize applies the canonical input transformations: trimmed nome,
// uppercased tipo_pessoa, digit-only documents.
func (in *ClienteInput) Normalize() {
	if in.Nome != nil {
		*in.Nome = strings.TrimSpace(*in.Nome)
	}
	if in.TipoPessoa != nil {
		*in.TipoPessoa = strings.ToUpper(strings.TrimSpace(*in.TipoPessoa))
	}
	for _, doc := range []*string{in.CPF, in.CNPJ, in.ResponsavelCPF} {
		if doc != nil {
			*doc = nonDigits.ReplaceAllString(*doc, "")
		}
	}
}

// Validate checks the input. With partial set (PATCH) only supplied fields
// are checked and the cross-field rules apply only when tipo_pessoa is
// part of the payload; the store's check constraint remains the backstop.
func (in *ClienteInput) Validate(partial bool) *apierr.Error {
	var errs []apierr.FieldError

	if in.Nome == nil {
		if !partial {
			errs = append(errs, apierr.FieldError{Field: "nome", Message: "O campo nome é obrigatório", Rule: apierr.RuleRequired})
		}
	} else if *in.Nome == "" || len(*in.Nome) > 150 {
		errs = append(errs, apierr.FieldError{Field: "nome", Message: "O nome deve ter entre 1 e 150 caracteres", Rule: apierr.RuleFormat})
	}

	if in.Telefone != nil && len(*in.Telefone) > 30 {
		errs = append(errs, apierr.FieldError{Field: "telefone", Message: "O telefone deve ter no máximo 30 caracteres", Rule: apierr.RuleFormat})
	}

	if in.Email != nil && *in.Email != "" {
		if _, err := mail.ParseAddress(*in.Email); err != nil || len(*in.Email) > 150 {
			errs = append(errs, apierr.FieldError{Field: "email", Message: "Informe um e-mail válido", Rule: apierr.RuleFormat})
		}
	}

	switch {
	case in.TipoPessoa == nil:
		if !partial {
			errs = append(errs, apierr.FieldError{Field: "tipo_pessoa", Message: "O tipo de pessoa é obrigatório", Rule: apierr.RuleRequired})
		}
		errs = append(errs, in.formatOnlyDocumentErrors()...)
	case models.TipoPessoa(*in.TipoPessoa) == models.PessoaFisica:
		errs = append(errs, in.validateFisica()...)
	case models.TipoPessoa(*in.TipoPessoa) == models.PessoaJuridica:
		errs = append(errs, in.validateJuridica()...)
	default:
		errs = append(errs, apierr.FieldError{Field: "tipo_pessoa", Message: "Tipo de pessoa inválido (use FISICA ou JURIDICA)", Rule: apierr.RuleBusiness})
		errs = append(errs, in.formatOnlyDocumentErrors()...)
	}

	return apierr.FromValidation(errs)
}

func (in *ClienteInput) validateFisica() []apierr.FieldError {
	var errs []apierr.FieldError

	switch {
	case in.CPF == nil || *in.CPF == "":
		errs = append(errs, apierr.FieldError{Field: "cpf", Message: "O CPF é obrigatório para pessoa física", Rule: apierr.RuleRequired})
	case !cpfPattern.MatchString(*in.CPF):
		errs = append(errs, apierr.FieldError{Field: "cpf", Message: "O CPF deve conter 11 dígitos numéricos", Rule: apierr.RuleFormat})
	}

	if in.CNPJ != nil {
		errs = append(errs, apierr.FieldError{Field: "cnpj", Message: "O CNPJ não se aplica a pessoa física", Rule: apierr.RuleBusiness})
	}
	if in.ResponsavelNome != nil {
		errs = append(errs, apierr.FieldError{Field: "responsavel_nome", Message: "O responsável não se aplica a pessoa física", Rule: apierr.RuleBusiness})
	}
	if in.ResponsavelCPF != nil {
		errs = append(errs, apierr.FieldError{Field: "responsavel_cpf", Message: "O responsável não se aplica a pessoa física", Rule: apierr.RuleBusiness})
	}
	return errs
}

func (in *ClienteInput) validateJuridica() []apierr.FieldError {
	var errs []apierr.FieldError

	switch {
	case in.CNPJ == nil || *in.CNPJ == "":
		errs = append(errs, apierr.FieldError{Field: "cnpj", Message: "O CNPJ é obrigatório para pessoa jurídica", Rule: apierr.RuleRequired})
	case !cnpjPattern.MatchString(*in.CNPJ):
		errs = append(errs, apierr.FieldError{Field: "cnpj", Message: "O CNPJ deve conter 14 dígitos numéricos", Rule: apierr.RuleFormat})
	}

	switch {
	case in.ResponsavelNome == nil || *in.ResponsavelNome == "":
		errs = append(errs, apierr.FieldError{Field: "responsavel_nome", Message: "O nome do responsável é obrigatório para pessoa jurídica", Rule: apierr.RuleRequired})
	case len(*in.ResponsavelNome) > 150:
		errs = append(errs, apierr.FieldError{Field: "responsavel_nome", Message: "O nome do responsável deve ter no máximo 150 caracteres", Rule: apierr.RuleFormat})
	}

	switch {
	case in.ResponsavelCPF == nil || *in.ResponsavelCPF == "":
		errs = append(errs, apierr.FieldError{Field: "responsavel_cpf", Message: "O CPF do responsável é obrigatório para pessoa jurídica", Rule: apierr.RuleRequired})
	case !cpfPattern.MatchString(*in.ResponsavelCPF):
		errs = append(errs, apierr.FieldError{Field: "responsavel_cpf", Message: "O CPF do responsável deve conter 11 dígitos numéricos", Rule: apierr.RuleFormat})
	}

	if in.CPF != nil {
		errs = append(errs, apierr.FieldError{Field: "cpf", Message: "O CPF não se aplica a pessoa jurídica", Rule: apierr.RuleBusiness})
	}
	return errs
}

// formatOnlyDocumentErrors checks document shapes when no tipo_pessoa is
// available to decide the cross-field rules.
func (in *ClienteInput) formatOnlyDocumentErrors() []apierr.FieldError {
	var errs []apierr.FieldError
	if in.CPF != nil && *in.CPF != "" && !cpfPattern.MatchString(*in.CPF) {
		errs = append(errs, apierr.FieldError{Field: "cpf", Message: "O CPF deve conter 11 dígitos numéricos", Rule: apierr.RuleFormat})
	}
	if in.CNPJ != nil && *in.CNPJ != "" && !cnpjPattern.MatchString(*in.CNPJ) {
		errs = append(errs, apierr.FieldError{Field: "cnpj", Message: "O CNPJ deve conter 14 dígitos numéricos", Rule: apierr.RuleFormat})
	}
	if in.ResponsavelCPF != nil && *in.ResponsavelCPF != "" && !cpfPattern.MatchString(*in.ResponsavelCPF) {
		errs = append(errs, apierr.FieldError{Field: "responsavel_cpf", Message: "O CPF do responsável deve conter 11 dígitos numéricos", Rule: apierr.RuleFormat})
	}
	return errs
}

// Apply copies the supplied fields onto the model.
func (in *ClienteInput) Apply(c *models.Cliente) {
	if in.Nome != nil {
		c.Nome = *in.Nome
	}
	if in.Endereco != nil {
		c.Endereco = in.Endereco
	}
	if in.Telefone != nil {
		c.Telefone = in.Telefone
	}
	if in.Email != nil {
		c.Email = in.Email
	}
	if in.TipoPessoa != nil {
		c.TipoPessoa = models.TipoPessoa(*in.TipoPessoa)

		// Switching the person kind clears the documents of the other
		// variant so the check constraint stays satisfiable.
		if c.TipoPessoa == models.PessoaFisica {
			c.CNPJ, c.ResponsavelNome, c.ResponsavelCPF = nil, nil, nil
		} else {
			c.CPF = nil
		}
	}
	if in.CPF != nil {
		c.CPF = in.CPF
	}
	if in.CNPJ != nil {
		c.CNPJ = in.CNPJ
	}
	if in.ResponsavelNome != nil {
		c.ResponsavelNome = in.ResponsavelNome
	}
	if in.ResponsavelCPF != nil {
		c.ResponsavelCPF = in.ResponsavelCPF
	}
}
