package referrals

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
	"github.com/MrJamesThe3rd/subx/internal/referral"
)

type Handler struct {
	svc    *referral.Service
	logger *zap.Logger
}

func NewHandler(svc *referral.Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logging.OrNop(logger)}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.register)
	r.Post("/rewards/{id}/pay", h.markPaid)
}

// UserRoutes mounts the referrer's views under /users.
func (h *Handler) UserRoutes(r chi.Router) {
	r.Get("/{id}/wallet", h.wallet)
	r.Get("/{id}/rewards", h.rewards)
}

type registerRequest struct {
	ReferrerID     string `json:"referrerId"`
	ReferredUserID string `json:"referredUserId"`
}

type linkResponse struct {
	ReferrerID     string    `json:"referrerId"`
	ReferredUserID string    `json:"referredUserId"`
	CreatedAt      time.Time `json:"createdAt"`
}

type rewardResponse struct {
	ID                uuid.UUID             `json:"id"`
	ReferredUserID    string                `json:"referredUserId"`
	PurchaseReference string                `json:"purchaseReference"`
	Commission        decimal.Decimal       `json:"commission"`
	Status            referral.RewardStatus `json:"status"`
	CreatedAt         time.Time             `json:"createdAt"`
	PaidAt            *time.Time            `json:"paidAt,omitempty"`
}

type walletResponse struct {
	UserID  string          `json:"userId"`
	Balance decimal.Decimal `json:"balance"`
}

func toRewardResponse(rw *referral.Reward) rewardResponse {
	return rewardResponse{
		ID:                rw.ID,
		ReferredUserID:    rw.ReferredUserID,
		PurchaseReference: rw.PurchaseReference,
		Commission:        rw.Commission,
		Status:            rw.Status,
		CreatedAt:         rw.CreatedAt,
		PaidAt:            rw.PaidAt,
	}
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "InvalidRequestBody")
		return
	}

	link, err := h.svc.Register(r.Context(), req.ReferrerID, req.ReferredUserID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, linkResponse{
		ReferrerID:     link.ReferrerID,
		ReferredUserID: link.ReferredUserID,
		CreatedAt:      link.CreatedAt,
	})
}

func (h *Handler) markPaid(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "InvalidRewardId")
		return
	}

	reward, err := h.svc.MarkPaid(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toRewardResponse(reward))
}

func (h *Handler) wallet(w http.ResponseWriter, r *http.Request) {
	wallet, err := h.svc.Wallet(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, walletResponse{UserID: wallet.UserID, Balance: wallet.Balance})
}

func (h *Handler) rewards(w http.ResponseWriter, r *http.Request) {
	rewards, err := h.svc.ListRewards(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := make([]rewardResponse, 0, len(rewards))
	for _, rw := range rewards {
		resp = append(resp, toRewardResponse(rw))
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, referral.ErrInvalidUser):
		respond.Error(w, http.StatusBadRequest, "InvalidUserId")
	case errors.Is(err, referral.ErrSelfReferral):
		respond.Error(w, http.StatusBadRequest, "SelfReferral")
	case errors.Is(err, referral.ErrAlreadyReferred):
		respond.Error(w, http.StatusConflict, "AlreadyReferred")
	case errors.Is(err, referral.ErrRewardNotFound):
		respond.Error(w, http.StatusNotFound, "RewardNotFound")
	case errors.Is(err, referral.ErrRewardAlreadyPaid):
		respond.Error(w, http.StatusConflict, "RewardAlreadyPaid")
	default:
		h.logger.Error("referral request failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "InternalError")
	}
}
