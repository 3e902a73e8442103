package analytics

import (
	"net/http"

	"github.com/UIUC-Hort-Club/PlantPass/internal/common"
)

// Handler exposes the sales analytics read endpoint.
type Handler struct {
	Svc *Service
}

// Report returns the aggregated sales dashboard payload.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "analytics service not configured", nil)
		return
	}
	report, err := h.Svc.Report(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": report})
}
