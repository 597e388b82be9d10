package tax

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/noah-isme/pricing-api/internal/common"
)

// Handler serves the tax type catalog.
type Handler struct {
	Catalog Catalog
	Logger  zerolog.Logger
}

// List serves GET /v1/tax-types. An empty catalog renders as an empty
// list, not null.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	types, err := h.Catalog.List(r.Context())
	if err != nil {
		h.Logger.Error().Err(err).Msg("list tax types failed")
		common.Internal(w, "tax catalog unavailable")
		return
	}
	if types == nil {
		types = []Type{}
	}
	common.JSON(w, http.StatusOK, types)
}
