package webhook

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/subx/internal/http/respond"
	"github.com/MrJamesThe3rd/subx/internal/logging"
	"github.com/MrJamesThe3rd/subx/internal/payment"
	"github.com/MrJamesThe3rd/subx/internal/purchase"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	verifier  *payment.WebhookVerifier
	purchases *purchase.Service
	logger    *zap.Logger
}

func NewHandler(verifier *payment.WebhookVerifier, purchases *purchase.Service, logger *zap.Logger) *Handler {
	return &Handler{verifier: verifier, purchases: purchases, logger: logging.OrNop(logger)}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/payment", h.payment)
}

type ackResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// payment acknowledges with 200 whenever retrying cannot change the outcome, so the
// gateway only retries on 5xx. Signature and payload errors are the only 400s.
func (h *Handler) payment(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "MalformedPayload")
		return
	}

	ev, err := h.verifier.VerifyAndParse(body, r.Header.Get(payment.SignatureHeader))
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			h.logger.Warn("webhook signature rejected", zap.String("remote", r.RemoteAddr))
			respond.Error(w, http.StatusBadRequest, "InvalidSignature")

			return
		}

		h.logger.Warn("signed webhook payload rejected", zap.Error(err))
		respond.Error(w, http.StatusBadRequest, "MalformedPayload")

		return
	}

	if !ev.Recognized {
		h.logger.Debug("ignoring webhook event", zap.String("type", ev.Type), zap.String("reference", ev.Reference))
		respond.JSON(w, http.StatusOK, ackResponse{Success: true})

		return
	}

	result, err := h.purchases.Finalize(r.Context(), ev.Reference, ev.Amount)
	if err != nil {
		if purchase.NeedsManualReview(err) {
			respond.JSON(w, http.StatusOK, ackResponse{Success: false, Error: errorCode(err)})
			return
		}

		h.logger.Error("finalizing payment failed", zap.String("reference", ev.Reference), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "InternalError")

		return
	}

	if result.AlreadyFinalized {
		h.logger.Info("duplicate payment notification", zap.String("reference", ev.Reference))
	}

	respond.JSON(w, http.StatusOK, ackResponse{Success: true})
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, purchase.ErrReservationNotFound):
		return "ReservationNotFound"
	case errors.Is(err, purchase.ErrPaymentAmountMismatch):
		return "PaymentAmountMismatch"
	default:
		return "IntegrityConflict"
	}
}
