package users

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/subx/internal/http/respond"
	"github.com/MrJamesThe3rd/subx/internal/logging"
	"github.com/MrJamesThe3rd/subx/internal/portfolio"
	"github.com/MrJamesThe3rd/subx/internal/purchase"
)

// Handler serves a buyer's holdings.
type Handler struct {
	portfolios *portfolio.Service
	purchases  *purchase.Service
	logger     *zap.Logger
}

func NewHandler(portfolios *portfolio.Service, purchases *purchase.Service, logger *zap.Logger) *Handler {
	return &Handler{portfolios: portfolios, purchases: purchases, logger: logging.OrNop(logger)}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{id}/portfolio", h.portfolio)
	r.Get("/{id}/ownerships", h.ownerships)
}

type portfolioResponse struct {
	UserID         string          `json:"userId"`
	TotalSqm       int             `json:"totalSqm"`
	TotalPlots     int             `json:"totalPlots"`
	PortfolioValue decimal.Decimal `json:"portfolioValue"`
}

type ownershipResponse struct {
	ID               uuid.UUID       `json:"id"`
	PlotID           uuid.UUID       `json:"plotId"`
	Sqm              int             `json:"sqm"`
	AmountPaid       decimal.Decimal `json:"amountPaid"`
	Percentage       decimal.Decimal `json:"percentage"`
	PaymentReference string          `json:"paymentReference"`
	CreatedAt        time.Time       `json:"createdAt"`
}

func (h *Handler) portfolio(w http.ResponseWriter, r *http.Request) {
	agg, err := h.portfolios.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, portfolioResponse{
		UserID:         agg.UserID,
		TotalSqm:       agg.TotalSqm,
		TotalPlots:     agg.TotalPlots,
		PortfolioValue: agg.PortfolioValue,
	})
}

func (h *Handler) ownerships(w http.ResponseWriter, r *http.Request) {
	owned, err := h.purchases.ListOwnerships(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := make([]ownershipResponse, 0, len(owned))
	for _, o := range owned {
		resp = append(resp, ownershipResponse{
			ID:               o.ID,
			PlotID:           o.PlotID,
			Sqm:              o.Sqm,
			AmountPaid:       o.AmountPaid,
			Percentage:       o.Percentage,
			PaymentReference: o.PaymentReference,
			CreatedAt:        o.CreatedAt,
		})
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, portfolio.ErrInvalidUser) {
		respond.Error(w, http.StatusBadRequest, "InvalidUserId")
		return
	}

	h.logger.Error("user request failed", zap.Error(err))
	respond.Error(w, http.StatusInternalServerError, "InternalError")
}
