package validate

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"lotear/internal/apierr"
	"lotear/internal/models"
)

const (
	defaultPerPage = 15
	maxPerPage     = 100
)

// ListQuery is the pagination and ordering slice shared by every list
// endpoint.
type ListQuery struct {
	Sort    string
	Dir     string
	Page    int
	PerPage int
}

// Offset converts page/per_page to a row offset.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.PerPage
}

// ClienteQuery is the validated query string of GET /clientes.
type ClienteQuery struct {
	ListQuery
	Nome       string
	TipoPessoa string
	CPF        string
	CNPJ       string
	Email      string
}

// ParseClienteQuery validates filters against the cliente allow-list.
// Unknown parameters are rejected, never ignored.
func ParseClienteQuery(values url.Values) (*ClienteQuery, *apierr.Error) {
	p := newQueryParser(values,
		[]string{"nome", "tipo_pessoa", "cpf", "cnpj", "email"},
		[]string{"nome", "tipo_pessoa", "created_at"},
		"nome",
	)

	q := &ClienteQuery{
		Nome:       p.stringFilter("nome", 2, 150),
		TipoPessoa: strings.ToUpper(strings.TrimSpace(values.Get("tipo_pessoa"))),
		CPF:        p.digitsFilter("cpf", 11),
		CNPJ:       p.digitsFilter("cnpj", 14),
		// A substring filter, not an address: searching "gmail.com" is
		// the point.
		Email: p.stringFilter("email", 2, 150),
	}

	if q.TipoPessoa != "" &&
		models.TipoPessoa(q.TipoPessoa) != models.PessoaFisica &&
		models.TipoPessoa(q.TipoPessoa) != models.PessoaJuridica {
		p.fail("tipo_pessoa", "Tipo de pessoa inválido (use FISICA ou JURIDICA)")
	}

	q.ListQuery = p.list()
	if err := p.result(); err != nil {
		return nil, err
	}
	return q, nil
}

// LoteQuery is the validated query string of GET /lotes.
type LoteQuery struct {
	ListQuery
	Nome          string
	NumLoteamento *int
	NumQuadra     *int
	NumLote       *int
	AreaMin       *float64
	AreaMax       *float64
}

// ParseLoteQuery validates filters against the lote allow-list.
func ParseLoteQuery(values url.Values) (*LoteQuery, *apierr.Error) {
	p := newQueryParser(values,
		[]string{"nome", "num_loteamento", "num_quadra", "num_lote", "area_min", "area_max"},
		[]string{"nome", "num_loteamento", "num_quadra", "num_lote", "area_lote", "created_at"},
		"nome",
	)

	q := &LoteQuery{
		Nome:          p.stringFilter("nome", 2, 120),
		NumLoteamento: p.positiveIntFilter("num_loteamento"),
		NumQuadra:     p.positiveIntFilter("num_quadra"),
		NumLote:       p.positiveIntFilter("num_lote"),
		AreaMin:       p.decimalFilter("area_min"),
		AreaMax:       p.decimalFilter("area_max"),
	}

	q.ListQuery = p.list()
	if err := p.result(); err != nil {
		return nil, err
	}
	return q, nil
}

// UsuarioQuery is the validated query string of GET /usuarios.
type UsuarioQuery struct {
	ListQuery
	Username string
}

// ParseUsuarioQuery validates filters against the usuario allow-list.
func ParseUsuarioQuery(values url.Values) (*UsuarioQuery, *apierr.Error) {
	p := newQueryParser(values,
		[]string{"username"},
		[]string{"username", "created_at"},
		"username",
	)

	q := &UsuarioQuery{
		Username: p.stringFilter("username", 1, 100),
	}

	q.ListQuery = p.list()
	if err := p.result(); err != nil {
		return nil, err
	}
	return q, nil
}

// queryParser accumulates field errors while extracting typed filters.
type queryParser struct {
	values      url.Values
	allowedSort []string
	defaultSort string
	errs        []apierr.FieldError
}

func newQueryParser(values url.Values, filters, sorts []string, defaultSort string) *queryParser {
	p := &queryParser{values: values, allowedSort: sorts, defaultSort: defaultSort}

	allowed := map[string]bool{"sort": true, "dir": true, "per_page": true, "page": true}
	for _, f := range filters {
		allowed[f] = true
	}
	for name := range values {
		if !allowed[name] {
			p.errs = append(p.errs, apierr.FieldError{
				Field:   name,
				Message: fmt.Sprintf("Parâmetro desconhecido: %s", name),
				Rule:    apierr.RuleUnknown,
			})
		}
	}
	return p
}

func (p *queryParser) fail(field, message string) {
	p.errs = append(p.errs, apierr.FieldError{Field: field, Message: message, Rule: apierr.RuleFormat})
}

func (p *queryParser) stringFilter(name string, minLen, maxLen int) string {
	v := strings.TrimSpace(p.values.Get(name))
	if v == "" {
		return ""
	}
	if len(v) < minLen || len(v) > maxLen {
		p.fail(name, fmt.Sprintf("O filtro %s deve ter entre %d e %d caracteres", name, minLen, maxLen))
		return ""
	}
	return v
}

func (p *queryParser) digitsFilter(name string, length int) string {
	v := nonDigits.ReplaceAllString(p.values.Get(name), "")
	if p.values.Get(name) == "" {
		return ""
	}
	if len(v) != length {
		p.fail(name, fmt.Sprintf("O filtro %s deve conter %d dígitos numéricos", name, length))
		return ""
	}
	return v
}

func (p *queryParser) positiveIntFilter(name string) *int {
	raw := p.values.Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		p.fail(name, fmt.Sprintf("O filtro %s deve ser um inteiro maior ou igual a 1", name))
		return nil
	}
	return &v
}

func (p *queryParser) decimalFilter(name string) *float64 {
	raw := p.values.Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil || v < 0 {
		p.fail(name, fmt.Sprintf("O filtro %s deve ser numérico e não negativo", name))
		return nil
	}
	return &v
}

func (p *queryParser) list() ListQuery {
	q := ListQuery{Sort: p.defaultSort, Dir: "asc", Page: 1, PerPage: defaultPerPage}

	if sort := p.values.Get("sort"); sort != "" {
		if contains(p.allowedSort, sort) {
			q.Sort = sort
		} else {
			p.fail("sort", "Campo de ordenação inválido")
		}
	}
	if dir := p.values.Get("dir"); dir != "" {
		if dir == "asc" || dir == "desc" {
			q.Dir = dir
		} else {
			p.fail("dir", "Direção de ordenação inválida")
		}
	}
	if raw := p.values.Get("per_page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 1 && v <= maxPerPage {
			q.PerPage = v
		} else {
			p.fail("per_page", fmt.Sprintf("per_page deve ser um inteiro entre 1 e %d", maxPerPage))
		}
	}
	if raw := p.values.Get("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 1 {
			q.Page = v
		} else {
			p.fail("page", "page deve ser um inteiro maior ou igual a 1")
		}
	}
	return q
}

func (p *queryParser) result() *apierr.Error {
	return apierr.FromFilter(p.errs)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
