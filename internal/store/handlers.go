package store

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/pricing-api/internal/common"
	"github.com/noah-isme/pricing-api/internal/money"
	"github.com/noah-isme/pricing-api/internal/obs"
	"github.com/noah-isme/pricing-api/internal/resolver"
)

// ContextHandler reports the currency and country resolved for the
// current request. A null field means no strategy responded, which is a
// legitimate outcome (e.g. no stores configured yet).
type ContextHandler struct {
	Currency *resolver.Current[money.Currency]
	Country  *resolver.Current[Country]
	Logger   zerolog.Logger
}

type contextResponse struct {
	Currency *money.Currency `json:"currency"`
	Country  *Country        `json:"country"`
}

// Get serves GET /v1/context.
func (h *ContextHandler) Get(w http.ResponseWriter, r *http.Request) {
	currency, err := h.Currency.Get(r.Context())
	if err != nil {
		h.Logger.Error().Err(err).Msg("resolve currency failed")
		common.Internal(w, "currency resolution failed")
		return
	}
	countResolution("currency", currency != nil)

	country, err := h.Country.Get(r.Context())
	if err != nil {
		h.Logger.Error().Err(err).Msg("resolve country failed")
		common.Internal(w, "country resolution failed")
		return
	}
	countResolution("country", country != nil)

	common.JSON(w, http.StatusOK, contextResponse{Currency: currency, Country: country})
}

// StoreLookup loads one store record by ID.
type StoreLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*Store, error)
}

// StoreHandler serves store records.
type StoreHandler struct {
	Stores StoreLookup
	Logger zerolog.Logger
}

// Get serves GET /v1/stores/{storeID}.
func (h *StoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "storeID"))
	if err != nil {
		common.BadRequest(w, "invalid store id")
		return
	}
	s, err := h.Stores.Get(r.Context(), id)
	if err != nil {
		h.Logger.Error().Err(err).Str("store_id", id.String()).Msg("load store failed")
		common.Internal(w, "store lookup failed")
		return
	}
	if s == nil {
		common.NotFound(w, "store not found")
		return
	}
	common.JSON(w, http.StatusOK, s)
}

func countResolution(kind string, resolved bool) {
	if obs.ResolutionTotal == nil {
		return
	}
	outcome := "miss"
	if resolved {
		outcome = "resolved"
	}
	obs.ResolutionTotal.WithLabelValues(kind, outcome).Inc()
}
