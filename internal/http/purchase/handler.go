package purchase

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/subx/internal/http/respond"
	"github.com/MrJamesThe3rd/subx/internal/logging"
	"github.com/MrJamesThe3rd/subx/internal/plot"
	"github.com/MrJamesThe3rd/subx/internal/purchase"
)

type Handler struct {
	svc    *purchase.Service
	logger *zap.Logger
}

func NewHandler(svc *purchase.Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logging.OrNop(logger)}
}

// Routes mounts the purchase endpoints. limit wraps the reserve endpoint only.
func (h *Handler) Routes(r chi.Router, limit func(http.Handler) http.Handler) {
	r.With(limit).Post("/reserve", h.reserve)
	r.Get("/{id}", h.get)
	r.Post("/{id}/cancel", h.cancel)
}

type reserveRequest struct {
	BuyerID string      `json:"buyerId"`
	PlotID  string      `json:"plotId"`
	Sqm     json.Number `json:"sqm"`
	Email   string      `json:"email,omitempty"`
}

type reserveResponse struct {
	ReservationID      uuid.UUID       `json:"reservationId"`
	PaymentReference   string          `json:"paymentReference"`
	Amount             decimal.Decimal `json:"amount"`
	PaymentRedirectURL string          `json:"paymentRedirectUrl"`
	ExpiresAt          time.Time       `json:"expiresAt"`
}

type insufficientResponse struct {
	Error     string `json:"error"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

func (h *Handler) reserve(w http.ResponseWriter, r *http.Request) {
	var req reserveRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "InvalidRequestBody")
		return
	}

	plotID, err := uuid.Parse(req.PlotID)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "InvalidPlotId")
		return
	}

	sqm, err := strconv.Atoi(req.Sqm.String())
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "InvalidSqm")
		return
	}

	res, err := h.svc.Reserve(r.Context(), purchase.ReserveParams{
		PlotID:  plotID,
		BuyerID: req.BuyerID,
		Sqm:     sqm,
		Email:   req.Email,
	})
	if err != nil {
		h.writeReserveError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, reserveResponse{
		ReservationID:      res.Reservation.ID,
		PaymentReference:   res.Reservation.PaymentReference,
		Amount:             res.Reservation.AmountExpected,
		PaymentRedirectURL: res.PaymentRedirectURL,
		ExpiresAt:          res.Reservation.ExpiresAt,
	})
}

func (h *Handler) writeReserveError(w http.ResponseWriter, err error) {
	var insufficient *purchase.InsufficientSqmError

	switch {
	case errors.As(err, &insufficient):
		respond.JSON(w, http.StatusBadRequest, insufficientResponse{
			Error:     "InsufficientSqmAvailable",
			Requested: insufficient.Requested,
			Available: insufficient.Available,
		})
	case errors.Is(err, purchase.ErrInvalidSqm):
		respond.Error(w, http.StatusBadRequest, "InvalidSqm")
	case errors.Is(err, purchase.ErrInvalidBuyer):
		respond.Error(w, http.StatusBadRequest, "InvalidBuyerId")
	case errors.Is(err, plot.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "PlotNotFound")
	case errors.Is(err, purchase.ErrPaymentInitFailed):
		respond.Error(w, http.StatusBadGateway, "PaymentInitFailed")
	default:
		h.logger.Error("reserve failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "InternalError")
	}
}

type reservationResponse struct {
	ID               uuid.UUID       `json:"id"`
	PlotID           uuid.UUID       `json:"plotId"`
	BuyerID          string          `json:"buyerId"`
	Sqm              int             `json:"sqm"`
	AmountExpected   decimal.Decimal `json:"amountExpected"`
	Status           purchase.Status `json:"status"`
	PaymentReference string          `json:"paymentReference"`
	CreatedAt        time.Time       `json:"createdAt"`
	ExpiresAt        time.Time       `json:"expiresAt"`
}

func toResponse(res *purchase.Reservation) reservationResponse {
	return reservationResponse{
		ID:               res.ID,
		PlotID:           res.PlotID,
		BuyerID:          res.BuyerID,
		Sqm:              res.Sqm,
		AmountExpected:   res.AmountExpected,
		Status:           res.Status,
		PaymentReference: res.PaymentReference,
		CreatedAt:        res.CreatedAt,
		ExpiresAt:        res.ExpiresAt,
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "InvalidReservationId")
		return
	}

	res, err := h.svc.GetReservation(r.Context(), id)
	if err != nil {
		if errors.Is(err, purchase.ErrReservationNotFound) {
			respond.Error(w, http.StatusNotFound, "ReservationNotFound")
			return
		}

		h.logger.Error("get reservation failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "InternalError")

		return
	}

	respond.JSON(w, http.StatusOK, toResponse(res))
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "InvalidReservationId")
		return
	}

	res, err := h.svc.Cancel(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, purchase.ErrReservationNotFound):
			respond.Error(w, http.StatusNotFound, "ReservationNotFound")
		case errors.Is(err, purchase.ErrReservationNotActive):
			respond.Error(w, http.StatusConflict, "ReservationNotActive")
		default:
			h.logger.Error("cancel reservation failed", zap.Error(err))
			respond.Error(w, http.StatusInternalServerError, "InternalError")
		}

		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{"reservationId": res.ID, "status": res.Status})
}
