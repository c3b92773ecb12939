// Package http provides the lead card read path for the external frontend
package http

import (
	"net/http"
	"strconv"

	"retention/internal/modkit/httpkit"
	perr "retention/internal/platform/errors"
	carddomain "retention/internal/services/leadcards/domain"
)

// Deps are the handler dependencies
type Deps struct {
	Read carddomain.ReadPort
}

type handlers struct {
	deps Deps
}

// Register mounts the lead card routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d}

	httpkit.Get(r, "/leadcards", h.list)
}

// swagger:route GET /leadcards Leadcards leadcardsList
// @Summary Lead cards for one customer, newest first
// @Tags Leadcards
// @Produce json
// @Param customer_id query string true "Customer id"
// @Param limit query int false "Max cards to return"
// @Success 200 {array} carddomain.Card "ok"
// @Router /leadcards [get]
func (h *handlers) list(r *http.Request) (any, error) {
	q := r.URL.Query()
	customerID := q.Get("customer_id")
	if customerID == "" {
		return nil, perr.Validationf("customer_id query parameter is required")
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, perr.Validationf("limit must be a positive integer, got %q", raw)
		}
		limit = n
	}

	return h.deps.Read.ListByCustomer(r.Context(), customerID, limit)
}
