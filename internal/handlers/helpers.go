package handlers

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"lotear/internal/apierr"
	"lotear/internal/auth"
)

// decodeJSON parses the request body, rejecting unknown fields. A field
// the schema does not know is reported by name; any other malformed body
// collapses into a generic 400.
func decodeJSON(r *http.Request, dest any) *apierr.Error {
	if r.Body == nil {
		return apierr.New(http.StatusBadRequest, "Corpo da requisição é obrigatório")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		if field, ok := unknownField(err); ok {
			return apierr.FromValidation([]apierr.FieldError{{
				Field:   field,
				Message: "Campo desconhecido: " + field,
				Rule:    apierr.RuleUnknown,
			}})
		}
		if typeErr, ok := err.(*json.UnmarshalTypeError); ok && typeErr.Field != "" {
			return apierr.FromValidation([]apierr.FieldError{{
				Field:   typeErr.Field,
				Message: "Tipo de dado inválido para o campo " + typeErr.Field,
				Rule:    apierr.RuleFormat,
			}})
		}
		return apierr.New(http.StatusBadRequest, "JSON inválido")
	}
	return nil
}

// unknownField recovers the offending name from the decoder's
// DisallowUnknownFields error, which has no structured form.
func unknownField(err error) (string, bool) {
	const marker = `json: unknown field "`
	msg := err.Error()
	if !strings.HasPrefix(msg, marker) {
		return "", false
	}
	return strings.TrimSuffix(strings.TrimPrefix(msg, marker), `"`), true
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, e *apierr.Error) {
	respondJSON(w, e.Status, e)
}

// storeError classifies a storage failure and logs anything that
// surfaces as a 500.
func (h *handler) storeError(w http.ResponseWriter, r *http.Request, err error) {
	e := apierr.FromStore(err, h.debug)
	if e.Status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("storage failure")
	}
	respondError(w, e)
}

// pathID reads the {id} route parameter. A malformed UUID behaves like a
// missing resource.
func pathID(r *http.Request) (uuid.UUID, *apierr.Error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apierr.NotFound("")
	}
	return id, nil
}

func clientContext(r *http.Request) auth.ClientContext {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return auth.ClientContext{UserAgent: r.UserAgent(), IP: ip}
}
