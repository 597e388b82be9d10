package order

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/pricing-api/internal/common"
	"github.com/noah-isme/pricing-api/internal/money"
	"github.com/noah-isme/pricing-api/internal/obs"
)

// Handler serves the totals endpoint.
type Handler struct {
	Summary  *Summary
	Validate *validator.Validate
	Logger   zerolog.Logger
}

type adjustmentDTO struct {
	Type       string `json:"type" validate:"required"`
	Label      string `json:"label" validate:"required"`
	Amount     int64  `json:"amount"`
	SourceID   string `json:"sourceId"`
	PercentBps *int32 `json:"percentBps" validate:"omitempty,gte=-10000,lte=10000"`
	Included   bool   `json:"included"`
}

type itemDTO struct {
	ID          string          `json:"id" validate:"omitempty,uuid"`
	Title       string          `json:"title" validate:"required"`
	Quantity    int             `json:"quantity" validate:"gte=1"`
	UnitPrice   int64           `json:"unitPrice"`
	TotalPrice  int64           `json:"totalPrice"`
	Adjustments []adjustmentDTO `json:"adjustments" validate:"dive"`
}

type totalsRequest struct {
	OrderID     string          `json:"orderId" validate:"omitempty,uuid"`
	Currency    string          `json:"currency" validate:"required,len=3,alpha"`
	Subtotal    int64           `json:"subtotal"`
	Total       int64           `json:"total"`
	Items       []itemDTO       `json:"items" validate:"dive"`
	Adjustments []adjustmentDTO `json:"adjustments" validate:"dive"`
}

// BuildTotals computes the display totals for a posted order document.
func (h *Handler) BuildTotals(w http.ResponseWriter, r *http.Request) {
	var req totalsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.BadRequest(w, "malformed JSON body")
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		common.Validation(w, "invalid order document", validationDetails(err))
		return
	}

	ord, err := req.toOrder()
	if err != nil {
		common.InvalidOrder(w, err.Error())
		return
	}

	totals, err := h.Summary.BuildTotals(r.Context(), ord)
	if err != nil {
		h.Logger.Error().Err(err).Str("order_id", req.OrderID).Msg("build totals failed")
		countTotals("error")
		common.Internal(w, "totals computation failed")
		return
	}
	countTotals("ok")
	if obs.TotalsAdjustments != nil {
		obs.TotalsAdjustments.Observe(float64(len(totals.Adjustments)))
	}
	common.JSON(w, http.StatusOK, totals)
}

func (r totalsRequest) toOrder() (*Order, error) {
	currency := strings.ToUpper(strings.TrimSpace(r.Currency))
	subtotal, err := money.New(r.Subtotal, currency)
	if err != nil {
		return nil, err
	}
	total, err := money.New(r.Total, currency)
	if err != nil {
		return nil, err
	}

	orderID := uuid.Nil
	if r.OrderID != "" {
		orderID, err = uuid.Parse(r.OrderID)
		if err != nil {
			return nil, err
		}
	}

	adjustments, err := toAdjustments(r.Adjustments, currency)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(r.Items))
	for _, it := range r.Items {
		itemID := uuid.Nil
		if it.ID != "" {
			itemID, err = uuid.Parse(it.ID)
			if err != nil {
				return nil, err
			}
		}
		itemAdjustments, err := toAdjustments(it.Adjustments, currency)
		if err != nil {
			return nil, err
		}
		items = append(items, Item{
			ID:          itemID,
			Title:       it.Title,
			Quantity:    it.Quantity,
			UnitPrice:   money.Money{Amount: it.UnitPrice, CurrencyCode: currency},
			TotalPrice:  money.Money{Amount: it.TotalPrice, CurrencyCode: currency},
			Adjustments: itemAdjustments,
		})
	}

	return NewOrder(orderID, subtotal, total, items, adjustments)
}

func toAdjustments(dtos []adjustmentDTO, currency string) ([]Adjustment, error) {
	adjustments := make([]Adjustment, 0, len(dtos))
	for _, dto := range dtos {
		amount, err := money.New(dto.Amount, currency)
		if err != nil {
			return nil, err
		}
		opts := []AdjustmentOption{}
		if dto.SourceID != "" {
			opts = append(opts, WithSourceID(dto.SourceID))
		}
		if dto.PercentBps != nil {
			opts = append(opts, WithPercentBps(*dto.PercentBps))
		}
		if dto.Included {
			opts = append(opts, WithIncluded())
		}
		adj, err := NewAdjustment(dto.Type, dto.Label, amount, opts...)
		if err != nil {
			return nil, err
		}
		adjustments = append(adjustments, adj)
	}
	return adjustments, nil
}

func validationDetails(err error) any {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	details := make([]map[string]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, map[string]string{
			"field": fe.Namespace(),
			"rule":  fe.Tag(),
		})
	}
	return details
}

func countTotals(result string) {
	if obs.TotalsBuiltTotal != nil {
		obs.TotalsBuiltTotal.WithLabelValues(result).Inc()
	}
}
