package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"lotear/internal/apierr"
	"lotear/internal/auth"
	"lotear/internal/validate"
)

// tokenResponse is the body of a successful login or refresh.
type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int    `json:"expires_in"`
	RefreshExpiresIn int    `json:"refresh_expires_in"`
}

func newTokenResponse(pair *auth.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		TokenType:        "Bearer",
		ExpiresIn:        pair.ExpiresIn,
		RefreshExpiresIn: pair.RefreshExpiresIn,
	}
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var in validate.LoginInput
	if aerr := decodeJSON(r, &in); aerr != nil {
		respondError(w, aerr)
		return
	}
	if aerr := in.Validate(); aerr != nil {
		respondError(w, aerr)
		return
	}

	pair, err := h.auth.Login(r.Context(), in.Username, in.Password, clientContext(r))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			log.Warn().Str("username", in.Username).Msg("login rejected")
			respondError(w, apierr.Unauthorized("Credenciais inválidas"))
			return
		}
		log.Error().Err(err).Msg("login failure")
		respondError(w, apierr.Internal(err, h.debug))
		return
	}

	respondJSON(w, http.StatusOK, newTokenResponse(pair))
}

func (h *handler) refresh(w http.ResponseWriter, r *http.Request) {
	var in validate.RefreshInput
	if aerr := decodeJSON(r, &in); aerr != nil {
		respondError(w, aerr)
		return
	}
	if aerr := in.Validate(); aerr != nil {
		respondError(w, aerr)
		return
	}

	pair, err := h.auth.Refresh(r.Context(), in.RefreshToken, clientContext(r))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidRefreshToken) {
			// A rejected refresh carries no body and no reason.
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		log.Error().Err(err).Msg("refresh failure")
		respondError(w, apierr.Internal(err, h.debug))
		return
	}

	respondJSON(w, http.StatusOK, newTokenResponse(pair))
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if err := h.auth.Logout(r.Context(), userID); err != nil {
		log.Error().Err(err).Msg("logout failure")
		respondError(w, apierr.Internal(err, h.debug))
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Sessão encerrada com sucesso"})
}
