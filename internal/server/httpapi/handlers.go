package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/gophpos/internal/common"
	"github.com/dmitrijs2005/gophpos/internal/server/models"
)

const maxBody = 4 << 20

func (h *handler) ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseSince(r *http.Request) (*time.Time, error) {
	s := r.URL.Query().Get("updated_since")
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// fail maps a service error to a response. Validation errors carry their
// message; anything else is logged and reported as internal.
func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, common.ErrValidation) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	h.Log.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func (h *handler) syncProducts(w http.ResponseWriter, r *http.Request) {
	shopID, err := strconv.ParseInt(r.URL.Query().Get("shop_id"), 10, 64)
	if err != nil || shopID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid shop_id")
		return
	}
	since, err := parseSince(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid updated_since")
		return
	}

	ps, err := h.Catalog.Products(r.Context(), tenantFrom(r.Context()), shopID, since)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": ps})
}

func (h *handler) syncCustomers(w http.ResponseWriter, r *http.Request) {
	since, err := parseSince(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid updated_since")
		return
	}

	cs, err := h.Catalog.Customers(r.Context(), tenantFrom(r.Context()), since, r.URL.Query().Get("query"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": cs})
}

func shopParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "shop"), 10, 64)
	return id, err == nil && id > 0
}

func (h *handler) searchProducts(w http.ResponseWriter, r *http.Request) {
	shopID, ok := shopParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown shop")
		return
	}

	ps, err := h.Catalog.Search(r.Context(), tenantFrom(r.Context()), shopID, r.URL.Query().Get("query"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": ps})
}

func (h *handler) completeSale(w http.ResponseWriter, r *http.Request) {
	shopID, ok := shopParam(r)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown shop")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}
	o, err := parseOrderForm(r.PostForm, shopID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	order, existed, err := h.Orders.Complete(r.Context(), tenantFrom(r.Context()), o)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	code := http.StatusCreated
	if existed {
		code = http.StatusOK
	}
	writeJSON(w, code, map[string]any{"order": order})
}

func (h *handler) syncOrders(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Orders []models.Order `json:"orders"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	results, err := h.Orders.Sync(r.Context(), tenantFrom(r.Context()), req.Orders)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (h *handler) presignJournal(w http.ResponseWriter, r *http.Request) {
	if h.Journals == nil {
		writeError(w, http.StatusServiceUnavailable, "journal uploads are disabled")
		return
	}

	key, url, err := h.Journals.PresignJournalPut(r.Context(), tenantFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url, "key": key})
}
