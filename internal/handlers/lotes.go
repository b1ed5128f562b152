package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"lotear/internal/apierr"
	"lotear/internal/models"
	"lotear/internal/validate"
)

func (h *handler) listLotes(w http.ResponseWriter, r *http.Request) {
	q, aerr := validate.ParseLoteQuery(r.URL.Query())
	if aerr != nil {
		respondError(w, aerr)
		return
	}

	tx := h.db.WithContext(r.Context()).Model(&models.Lote{})
	if q.Nome != "" {
		tx = tx.Where("nome ILIKE ?", "%"+q.Nome+"%")
	}
	if q.NumLoteamento != nil {
		tx = tx.Where("num_loteamento = ?", *q.NumLoteamento)
	}
	if q.NumQuadra != nil {
		tx = tx.Where("num_quadra = ?", *q.NumQuadra)
	}
	if q.NumLote != nil {
		tx = tx.Where("num_lote = ?", *q.NumLote)
	}
	if q.AreaMin != nil {
		tx = tx.Where("area_lote >= ?", *q.AreaMin)
	}
	if q.AreaMax != nil {
		tx = tx.Where("area_lote <= ?", *q.AreaMax)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		h.storeError(w, r, err)
		return
	}

	lotes := []models.Lote{}
	if err := tx.Order(q.Sort + " " + q.Dir).Offset(q.Offset()).Limit(q.PerPage).Find(&lotes).Error; err != nil {
		h.storeError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, newPage(r, lotes, total, q.ListQuery))
}

func (h *handler) getLote(w http.ResponseWriter, r *http.Request) {
	id, aerr := pathID(r)
	if aerr != nil {
		respondError(w, aerr)
		return
	}

	var lote models.Lote
	if err := h.db.WithContext(r.Context()).First(&lote, "id = ?", id).Error; err != nil {
		h.storeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, lote)
}

func (h *handler) createLote(w http.ResponseWriter, r *http.Request) {
	var in validate.LoteInput
	if aerr := decodeJSON(r, &in); aerr != nil {
		respondError(w, aerr)
		return
	}
	in.Normalize()
	if aerr := in.Validate(false); aerr != nil {
		respondError(w, aerr)
		return
	}

	var lote models.Lote
	in.Apply(&lote)

	if aerr := h.loteLocationFree(r.Context(), &lote); aerr != nil {
		respondError(w, aerr)
		return
	}

	if err := h.db.WithContext(r.Context()).Create(&lote).Error; err != nil {
		h.storeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, lote)
}

func (h *handler) putLote(w http.ResponseWriter, r *http.Request) {
	h.updateLote(w, r, false)
}

func (h *handler) patchLote(w http.ResponseWriter, r *http.Request) {
	h.updateLote(w, r, true)
}

func (h *handler) updateLote(w http.ResponseWriter, r *http.Request, partial bool) {
	id, aerr := pathID(r)
	if aerr != nil {
		respondError(w, aerr)
		return
	}

	var in validate.LoteInput
	if aerr := decodeJSON(r, &in); aerr != nil {
		respondError(w, aerr)
		return
	}
	in.Normalize()
	if aerr := in.Validate(partial); aerr != nil {
		respondError(w, aerr)
		return
	}

	var lote models.Lote
	if err := h.db.WithContext(r.Context()).First(&lote, "id = ?", id).Error; err != nil {
		h.storeError(w, r, err)
		return
	}

	// The location check runs against the merged row so a partial update
	// moving the parcel onto an occupied triple is caught.
	in.Apply(&lote)
	if aerr := h.loteLocationFree(r.Context(), &lote); aerr != nil {
		respondError(w, aerr)
		return
	}

	if err := h.db.WithContext(r.Context()).Save(&lote).Error; err != nil {
		h.storeError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Lote atualizado com sucesso",
		"data":    lote,
	})
}

func (h *handler) deleteLote(w http.ResponseWriter, r *http.Request) {
	id, aerr := pathID(r)
	if aerr != nil {
		respondError(w, aerr)
		return
	}

	res := h.db.WithContext(r.Context()).Delete(&models.Lote{}, "id = ?", id)
	if res.Error != nil {
		h.storeError(w, r, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respondError(w, apierr.NotFound(""))
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Lote removido com sucesso"})
}

// loteLocationFree pre-checks the (loteamento, quadra, lote) triple of a
// merged row, excluding the row itself on updates.
func (h *handler) loteLocationFree(ctx context.Context, lote *models.Lote) *apierr.Error {
	tx := h.db.WithContext(ctx).Model(&models.Lote{}).
		Where("num_loteamento = ? AND num_quadra = ? AND num_lote = ?", lote.NumLoteamento, lote.NumQuadra, lote.NumLote)
	if lote.ID != uuid.Nil {
		tx = tx.Where("id <> ?", lote.ID)
	}

	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return apierr.FromStore(err, h.debug)
	}
	if n > 0 {
		return apierr.FromValidation([]apierr.FieldError{{
			Field:   "num_lote",
			Message: "Já existe um lote com essa localização (loteamento, quadra e lote)",
			Rule:    apierr.RuleUnique,
		}})
	}
	return nil
}
