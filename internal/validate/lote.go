package validate

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"lotear/internal/apierr"
	"lotear/internal/models"
)

// Decimal accepts a JSON number or a string using either "." or "," as
// the decimal separator, matching the input tolerance of the area fields.
type Decimal float64

func (d *Decimal) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.ReplaceAll(s[1:len(s)-1], ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("valor decimal inválido: %s", s)
	}
	*d = Decimal(v)
	return nil
}

// LoteInput is the request body for creating or updating a land parcel.
type LoteInput struct {
	Nome          *string  `json:"nome"`
	NumLoteamento *int     `json:"num_loteamento"`
	NumQuadra     *int     `json:"num_quadra"`
	NumLote       *int     `json:"num_lote"`
	AreaLote      *Decimal `json:"area_lote"`
}

// Normalize trims the parcel name.
func (in *LoteInput) Normalize() {
	if in.Nome != nil {
		*in.Nome = strings.TrimSpace(*in.Nome)
	}
}

// Validate checks the input; with partial set only supplied fields are
// checked.
func (in *LoteInput) Validate(partial bool) *apierr.Error {
	var errs []apierr.FieldError

	if in.Nome == nil {
		if !partial {
			errs = append(errs, apierr.FieldError{Field: "nome", Message: "O nome do lote é obrigatório", Rule: apierr.RuleRequired})
		}
	} else if *in.Nome == "" || len(*in.Nome) > 120 {
		errs = append(errs, apierr.FieldError{Field: "nome", Message: "O nome do lote deve ter entre 1 e 120 caracteres", Rule: apierr.RuleFormat})
	}

	for _, num := range []struct {
		field string
		value *int
	}{
		{"num_loteamento", in.NumLoteamento},
		{"num_quadra", in.NumQuadra},
		{"num_lote", in.NumLote},
	} {
		if num.value == nil {
			if !partial {
				errs = append(errs, apierr.FieldError{Field: num.field, Message: fmt.Sprintf("O campo %s é obrigatório", num.field), Rule: apierr.RuleRequired})
			}
		} else if *num.value < 1 {
			errs = append(errs, apierr.FieldError{Field: num.field, Message: fmt.Sprintf("O campo %s deve ser maior ou igual a 1", num.field), Rule: apierr.RuleFormat})
		}
	}

	if in.AreaLote == nil {
		if !partial {
			errs = append(errs, apierr.FieldError{Field: "area_lote", Message: "A área do lote é obrigatória", Rule: apierr.RuleRequired})
		}
	} else {
		area := float64(*in.AreaLote)
		switch {
		case area <= 0:
			errs = append(errs, apierr.FieldError{Field: "area_lote", Message: "A área do lote deve ser maior que zero", Rule: apierr.RuleFormat})
		case !hasAtMostTwoDecimals(area):
			errs = append(errs, apierr.FieldError{Field: "area_lote", Message: "A área do lote deve ter no máximo duas casas decimais", Rule: apierr.RuleFormat})
		}
	}

	return apierr.FromValidation(errs)
}

// Apply copies the supplied fields onto the model.
func (in *LoteInput) Apply(l *models.Lote) {
	if in.Nome != nil {
		l.Nome = *in.Nome
	}
	if in.NumLoteamento != nil {
		l.NumLoteamento = *in.NumLoteamento
	}
	if in.NumQuadra != nil {
		l.NumQuadra = *in.NumQuadra
	}
	if in.NumLote != nil {
		l.NumLote = *in.NumLote
	}
	if in.AreaLote != nil {
		l.AreaLote = float64(*in.AreaLote)
	}
}

func hasAtMostTwoDecimals(v float64) bool {
	scaled := v * 100
	return math.Abs(scaled-math.Round(scaled)) < 1e-6
}
