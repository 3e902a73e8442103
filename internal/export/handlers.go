package export

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/UIUC-Hort-Club/PlantPass/internal/common"
	"github.com/UIUC-Hort-Club/PlantPass/internal/txn"
)

// Source pages through every stored transaction.
type Source interface {
	Scan(ctx context.Context, cursor string, limit int) ([]txn.Transaction, string, error)
}

// Handler serves the full-data download used for end-of-event bookkeeping.
type Handler struct {
	Source   Source
	PageSize int
	Now      func() time.Time
}

// Download streams all transactions into a zip archive and returns it as a
// JSON envelope with base64 content.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	if h.Source == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "export source not configured", nil)
		return
	}
	transactions, err := h.scanAll(r.Context())
	if err != nil {
		common.WriteError(w, common.StoreError(fmt.Errorf("scan transactions: %w", err)))
		return
	}
	archive, err := Build(transactions, h.now())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "build export archive", map[string]any{"error": err.Error()})
		return
	}
	common.JSON(w, http.StatusOK, archive)
}

func (h *Handler) scanAll(ctx context.Context) ([]txn.Transaction, error) {
	page := h.PageSize
	if page <= 0 {
		page = 200
	}
	var (
		all    []txn.Transaction
		cursor string
	)
	for {
		batch, next, err := h.Source.Scan(ctx, cursor, page)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if next == "" {
			return all, nil
		}
		cursor = next
	}
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}
