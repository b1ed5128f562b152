package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"lotear/internal/apierr"
	"lotear/internal/models"
	"lotear/internal/validate"
)

func (h *handler) listUsuarios(w http.ResponseWriter, r *http.Request) {
	q, aerr := validate.ParseUsuarioQuery(r.URL.Query())
	if aerr != nil {
		respondError(w, aerr)
		return
	}

	tx := h.db.WithContext(r.Context()).Model(&models.Usuario{})
	if q.Username != "" {
		tx = tx.Where("username ILIKE ?", "%"+q.Username+"%")
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		h.storeError(w, r, err)
		return
	}

	usuarios := []models.Usuario{}
	if err := tx.Order(q.Sort + " " + q.Dir).Offset(q.Offset()).Limit(q.PerPage).Find(&usuarios).Error; err != nil {
		h.storeError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, newPage(r, usuarios, total, q.ListQuery))
}

func (h *handler) getUsuario(w http.ResponseWriter, r *http.Request) {
	id, aerr := pathID(r)
	if aerr != nil {
		respondError(w, aerr)
		return
	}

	var usuario models.Usuario
	if err := h.db.WithContext(r.Context()).First(&usuario, "id = ?", id).Error; err != nil {
		h.storeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, usuario)
}

func (h *handler) createUsuario(w http.ResponseWriter, r *http.Request) {
	var in validate.UsuarioInput
	if aerr := decodeJSON(r, &in); aerr != nil {
		respondError(w, aerr)
		return
	}
	in.Normalize()
	if aerr := in.Validate(false); aerr != nil {
		respondError(w, aerr)
		return
	}
	if aerr := h.usernameFree(r, *in.Username, uuid.Nil); aerr != nil {
		respondError(w, aerr)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, apierr.Internal(err, h.debug))
		return
	}

	usuario := models.Usuario{Username: *in.Username, PasswordHash: string(hash)}
	if err := h.db.WithContext(r.Context()).Create(&usuario).Error; err != nil {
		h.storeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, usuario)
}

func (h *handler) putUsuario(w http.ResponseWriter, r *http.Request) {
	h.updateUsuario(w, r, false)
}

func (h *handler) patchUsuario(w http.ResponseWriter, r *http.Request) {
	h.updateUsuario(w, r, true)
}

func (h *handler) updateUsuario(w http.ResponseWriter, r *http.Request, partial bool) {
	id, aerr := pathID(r)
	if aerr != nil {
		respondError(w, aerr)
		return
	}

	var in validate.UsuarioInput
	if aerr := decodeJSON(r, &in); aerr != nil {
		respondError(w, aerr)
		return
	}
	in.Normalize()
	if aerr := in.Validate(partial); aerr != nil {
		respondError(w, aerr)
		return
	}

	var usuario models.Usuario
	if err := h.db.WithContext(r.Context()).First(&usuario, "id = ?", id).Error; err != nil {
		h.storeError(w, r, err)
		return
	}

	if in.Username != nil {
		if aerr := h.usernameFree(r, *in.Username, id); aerr != nil {
			respondError(w, aerr)
			return
		}
		usuario.Username = *in.Username
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			respondError(w, apierr.Internal(err, h.debug))
			return
		}
		usuario.PasswordHash = string(hash)
	}

	if err := h.db.WithContext(r.Context()).Save(&usuario).Error; err != nil {
		h.storeError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Usuário atualizado com sucesso",
		"data":    usuario,
	})
}

func (h *handler) deleteUsuario(w http.ResponseWriter, r *http.Request) {
	id, aerr := pathID(r)
	if aerr != nil {
		respondError(w, aerr)
		return
	}

	// Session rows cascade with the user, so deletion doubles as logout.
	res := h.db.WithContext(r.Context()).Delete(&models.Usuario{}, "id = ?", id)
	if res.Error != nil {
		h.storeError(w, r, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respondError(w, apierr.NotFound(""))
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Usuário removido com sucesso"})
}

func (h *handler) usernameFree(r *http.Request, username string, exclude uuid.UUID) *apierr.Error {
	taken, err := h.taken(r.Context(), &models.Usuario{}, "username", username, exclude)
	if err != nil {
		return apierr.FromStore(err, h.debug)
	}
	if taken {
		return apierr.FromValidation([]apierr.FieldError{{
			Field:   "username",
			Message: "Já existe um usuário com esse username",
			Rule:    apierr.RuleUnique,
		}})
	}
	return nil
}
