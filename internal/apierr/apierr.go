// Package apierr maps validation failures and storage errors onto the
// HTTP error contract of the API. Every error response has the shape
// {message, errors?} regardless of which resource produced it.
package apierr

import "net/http"

// Rule identifies why a field failed validation. The HTTP status of a
// validation failure is a function of the violated rules, not of the
// resource under validation.
type Rule int

const (
	// RuleRequired marks a missing mandatory field.
	RuleRequired Rule = iota
	// RuleFormat marks a malformed value (wrong length, bad characters,
	// non-numeric input for a numeric field).
	RuleFormat
	// RuleUnknown marks a field that is not part of the payload schema.
	RuleUnknown
	// RuleBusiness marks a cross-field rule violation, such as a CNPJ
	// supplied for an individual customer.
	RuleBusiness
	// RuleUnique marks a value that collides with an existing record.
	RuleUnique
)

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string
	Message string
	Rule    Rule
}

// Error is the single error currency of the HTTP layer.
type Error struct {
	Status  int                 `json:"-"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"errors,omitempty"`
}

func (e *Error) Error() string { return e.Message }

// New builds an Error with the given status and message.
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// FromValidation classifies field failures into a status code. Uniqueness
// conflicts dominate (409), then cross-field business rules (422); plain
// presence, format, and unknown-field failures are malformed input (400).
func FromValidation(errs []FieldError) *Error {
	if len(errs) == 0 {
		return nil
	}

	status := http.StatusBadRequest
	for _, fe := range errs {
		switch fe.Rule {
		case RuleUnique:
			status = http.StatusConflict
		case RuleBusiness:
			if status != http.StatusConflict {
				status = http.StatusUnprocessableEntity
			}
		}
	}

	return &Error{
		Status:  status,
		Message: "Erro de validação",
		Fields:  groupFields(errs),
	}
}

// FromFilter wraps query-parameter failures. Filter errors are always 422,
// including unknown parameters.
func FromFilter(errs []FieldError) *Error {
	if len(errs) == 0 {
		return nil
	}
	return &Error{
		Status:  http.StatusUnprocessableEntity,
		Message: "Filtro inválido",
		Fields:  groupFields(errs),
	}
}

// NotFound is the canonical 404 error.
func NotFound(message string) *Error {
	if message == "" {
		message = "Recurso não encontrado"
	}
	return New(http.StatusNotFound, message)
}

// MethodNotAllowed is the canonical 405 error.
func MethodNotAllowed() *Error {
	return New(http.StatusMethodNotAllowed, "Método não permitido para este endpoint")
}

// Unauthorized carries a deliberately generic 401 message so that failed
// logins are indistinguishable from one another.
func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

// Internal hides diagnostics unless debug mode is on.
func Internal(err error, debug bool) *Error {
	e := New(http.StatusInternalServerError, "Erro interno do servidor")
	if debug && err != nil {
		e.Fields = map[string][]string{"detail": {err.Error()}}
	}
	return e
}

func groupFields(errs []FieldError) map[string][]string {
	fields := make(map[string][]string, len(errs))
	for _, fe := range errs {
		fields[fe.Field] = append(fields[fe.Field], fe.Message)
	}
	return fields
}
