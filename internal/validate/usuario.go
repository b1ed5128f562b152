package validate

import (
	"strings"

	"lotear/internal/apierr"
)

// UsuarioInput is the request body for creating or updating a user.
type UsuarioInput struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

// Normalize trims the username.
func (in *UsuarioInput) Normalize() {
	if in.Username != nil {
		*in.Username = strings.TrimSpace(*in.Username)
	}
}

// Validate checks the input; with partial set only supplied fields are
// checked. Passwords are validated here and hashed by the handler, never
// stored raw.
func (in *UsuarioInput) Validate(partial bool) *apierr.Error {
	var errs []apierr.FieldError

	if in.Username == nil {
		if !partial {
			errs = append(errs, apierr.FieldError{Field: "username", Message: "O username é obrigatório", Rule: apierr.RuleRequired})
		}
	} else if *in.Username == "" || len(*in.Username) > 100 {
		errs = append(errs, apierr.FieldError{Field: "username", Message: "O username deve ter entre 1 e 100 caracteres", Rule: apierr.RuleFormat})
	}

	if in.Password == nil {
		if !partial {
			errs = append(errs, apierr.FieldError{Field: "password", Message: "A senha é obrigatória", Rule: apierr.RuleRequired})
		}
	} else if len(*in.Password) < 6 {
		errs = append(errs, apierr.FieldError{Field: "password", Message: "A senha deve ter pelo menos 6 caracteres", Rule: apierr.RuleFormat})
	}

	return apierr.FromValidation(errs)
}

// LoginInput is the body of POST /auth/login.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate enforces the login body shape. All failures here are malformed
// input (400); credential verification happens later and reports 401.
func (in *LoginInput) Validate() *apierr.Error {
	in.Username = strings.TrimSpace(in.Username)

	var errs []apierr.FieldError
	if in.Username == "" || len(in.Username) > 100 {
		errs = append(errs, apierr.FieldError{Field: "username", Message: "O username deve ter entre 1 e 100 caracteres", Rule: apierr.RuleRequired})
	}
	if len(in.Password) < 5 {
		errs = append(errs, apierr.FieldError{Field: "password", Message: "A senha deve ter pelo menos 5 caracteres", Rule: apierr.RuleRequired})
	}
	return apierr.FromValidation(errs)
}

// RefreshInput is the body of POST /auth/refresh.
type RefreshInput struct {
	RefreshToken string `json:"refresh_token"`
}

// Validate enforces the minimum plausible secret length before any
// ledger lookup.
func (in *RefreshInput) Validate() *apierr.Error {
	if len(in.RefreshToken) < 40 {
		return apierr.FromValidation([]apierr.FieldError{{
			Field:   "refresh_token",
			Message: "O refresh token é obrigatório",
			Rule:    apierr.RuleRequired,
		}})
	}
	return nil
}
