package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"lotear/internal/apierr"
	"lotear/internal/models"
	"lotear/internal/validate"
)

func (h *handler) listClientes(w http.ResponseWriter, r *http.Request) {
	q, aerr := validate.ParseClienteQuery(r.URL.Query())
	if aerr != nil {
		respondError(w, aerr)
		return
	}

	tx := h.db.WithContext(r.Context()).Model(&models.Cliente{})
	if q.Nome != "" {
		tx = tx.Where("nome ILIKE ?", "%"+q.Nome+"%")
	}
	if q.TipoPessoa != "" {
		tx = tx.Where("tipo_pessoa = ?", q.TipoPessoa)
	}
	if q.CPF != "" {
		tx = tx.Where("cpf = ?", q.CPF)
	}
	if q.CNPJ != "" {
		tx = tx.Where("cnpj = ?", q.CNPJ)
	}
	if q.Email != "" {
		tx = tx.Where("email ILIKE ?", "%"+q.Email+"%")
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		h.storeError(w, r, err)
		return
	}

	clientes := []models.Cliente{}
	if err := tx.Order(q.Sort + " " + q.Dir).Offset(q.Offset()).Limit(q.PerPage).Find(&clientes).Error; err != nil {
		h.storeError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, newPage(r, clientes, total, q.ListQuery))
}

func (h *handler) getCliente(w http.ResponseWriter, r *http.Request) {
	id, aerr := pathID(r)
	if aerr != nil {
		respondError(w, aerr)
		return
	}

	var cliente models.Cliente
	if err := h.db.WithContext(r.Context()).First(&cliente, "id = ?", id).Error; err != nil {
		h.storeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, cliente)
}

func (h *handler) createCliente(w http.ResponseWriter, r *http.Request) {
	var in validate.ClienteInput
	if aerr := decodeJSON(r, &in); aerr != nil {
		respondError(w, aerr)
		return
	}
	in.Normalize()
	if aerr := in.Validate(false); aerr != nil {
		respondError(w, aerr)
		return
	}
	if aerr := h.clienteUniqueness(r.Context(), &in, uuid.Nil); aerr != nil {
		respondError(w, aerr)
		return
	}

	var cliente models.Cliente
	in.Apply(&cliente)
	if err := h.db.WithContext(r.Context()).Create(&cliente).Error; err != nil {
		h.storeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, cliente)
}

func (h *handler) putCliente(w http.ResponseWriter, r *http.Request) {
	h.updateCliente(w, r, false)
}

func (h *handler) patchCliente(w http.ResponseWriter, r *http.Request) {
	h.updateCliente(w, r, true)
}

func (h *handler) updateCliente(w http.ResponseWriter, r *http.Request, partial bool) {
	id, aerr := pathID(r)
	if aerr != nil {
		respondError(w, aerr)
		return
	}

	var in validate.ClienteInput
	if aerr := decodeJSON(r, &in); aerr != nil {
		respondError(w, aerr)
		return
	}
	in.Normalize()
	if aerr := in.Validate(partial); aerr != nil {
		respondError(w, aerr)
		return
	}

	var cliente models.Cliente
	if err := h.db.WithContext(r.Context()).First(&cliente, "id = ?", id).Error; err != nil {
		h.storeError(w, r, err)
		return
	}

	if aerr := h.clienteUniqueness(r.Context(), &in, id); aerr != nil {
		respondError(w, aerr)
		return
	}

	in.Apply(&cliente)
	if err := h.db.WithContext(r.Context()).Save(&cliente).Error; err != nil {
		h.storeError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Cliente atualizado com sucesso",
		"data":    cliente,
	})
}

func (h *handler) deleteCliente(w http.ResponseWriter, r *http.Request) {
	id, aerr := pathID(r)
	if aerr != nil {
		respondError(w, aerr)
		return
	}

	res := h.db.WithContext(r.Context()).Delete(&models.Cliente{}, "id = ?", id)
	if res.Error != nil {
		h.storeError(w, r, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respondError(w, apierr.NotFound(""))
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Cliente removido com sucesso"})
}

// clienteUniqueness pre-checks document collisions so the common case
// reports a clean 409 before the write. The unique indexes remain the
// source of truth under concurrent writers.
func (h *handler) clienteUniqueness(ctx context.Context, in *validate.ClienteInput, exclude uuid.UUID) *apierr.Error {
	var errs []apierr.FieldError

	if in.CPF != nil && *in.CPF != "" {
		taken, err := h.taken(ctx, &models.Cliente{}, "cpf", *in.CPF, exclude)
		if err != nil {
			return apierr.FromStore(err, h.debug)
		}
		if taken {
			errs = append(errs, apierr.FieldError{Field: "cpf", Message: "CPF já cadastrado", Rule: apierr.RuleUnique})
		}
	}
	if in.CNPJ != nil && *in.CNPJ != "" {
		taken, err := h.taken(ctx, &models.Cliente{}, "cnpj", *in.CNPJ, exclude)
		if err != nil {
			return apierr.FromStore(err, h.debug)
		}
		if taken {
			errs = append(errs, apierr.FieldError{Field: "cnpj", Message: "CNPJ já cadastrado", Rule: apierr.RuleUnique})
		}
	}

	return apierr.FromValidation(errs)
}

func (h *handler) taken(ctx context.Context, model any, column, value string, exclude uuid.UUID) (bool, error) {
	tx := h.db.WithContext(ctx).Model(model).Where(column+" = ?", value)
	if exclude != uuid.Nil {
		tx = tx.Where("id <> ?", exclude)
	}
	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
