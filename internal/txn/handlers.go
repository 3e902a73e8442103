package txn

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/UIUC-Hort-Club/PlantPass/internal/common"
	"github.com/UIUC-Hort-Club/PlantPass/internal/purchaseid"
)

// Handler exposes the transaction operations over HTTP. Status-code mapping
// lives here; the service below it only speaks the error taxonomy.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

// Create records a new transaction from a raw cart.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "transaction service not configured", nil)
		return
	}
	var cart Cart
	if err := json.NewDecoder(r.Body).Decode(&cart); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "invalid request body", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(cart); err != nil {
			common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "invalid cart", map[string]any{"error": err.Error()})
			return
		}
	}
	t, err := h.Svc.Create(r.Context(), cart)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": t})
}

// Get returns a stored transaction by purchase id.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.purchaseID(w, r)
	if !ok {
		return
	}
	t, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": t})
}

// Update applies a partial revision to a stored transaction.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.purchaseID(w, r)
	if !ok {
		return
	}
	var u Update
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "invalid request body", nil)
		return
	}
	t, err := h.Svc.Update(r.Context(), id, u)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": t})
}

// Delete removes a stored transaction.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.purchaseID(w, r)
	if !ok {
		return
	}
	if err := h.Svc.Delete(r.Context(), id); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecentUnpaid lists the newest unpaid transactions for till recall.
func (h *Handler) RecentUnpaid(w http.ResponseWriter, r *http.Request) {
	limit := common.AtoiDefault(r.URL.Query().Get("limit"), DefaultRecentLimit)
	list, err := h.Svc.RecentUnpaid(r.Context(), limit)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": list})
}

// ClearAll wipes all stored transactions.
func (h *Handler) ClearAll(w http.ResponseWriter, r *http.Request) {
	cleared, err := h.Svc.ClearAll(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"cleared_count": cleared}})
}

func (h *Handler) purchaseID(w http.ResponseWriter, r *http.Request) (string, bool) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "transaction service not configured", nil)
		return "", false
	}
	id := chi.URLParam(r, "purchaseID")
	if !purchaseid.Valid(id) {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "invalid purchase id", map[string]any{"purchase_id": id})
		return "", false
	}
	return id, true
}
