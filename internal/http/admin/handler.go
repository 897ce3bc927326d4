package admin

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/subx/internal/http/respond"
	"github.com/MrJamesThe3rd/subx/internal/logging"
	"github.com/MrJamesThe3rd/subx/internal/purchase"
	"github.com/MrJamesThe3rd/subx/internal/reconcile"
)

// Handler exposes operator actions. It is mounted behind the operator network only.
type Handler struct {
	job       *reconcile.Job
	purchases *purchase.Service
	logger    *zap.Logger
}

func NewHandler(job *reconcile.Job, purchases *purchase.Service, logger *zap.Logger) *Handler {
	return &Handler{job: job, purchases: purchases, logger: logging.OrNop(logger)}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/reconcile", h.reconcile)
	r.Get("/reports", h.reports)
	r.Post("/expire", h.expire)
	r.Get("/incidents", h.incidents)
}

type incidentResponse struct {
	ID               uuid.UUID             `json:"id"`
	PaymentReference string                `json:"paymentReference"`
	Kind             purchase.IncidentKind `json:"kind"`
	Detail           string                `json:"detail"`
	CreatedAt        time.Time             `json:"createdAt"`
}

func (h *Handler) reconcile(w http.ResponseWriter, r *http.Request) {
	report, err := h.job.Run(r.Context())
	if err != nil {
		if errors.Is(err, reconcile.ErrAlreadyRunning) {
			respond.Error(w, http.StatusConflict, "ReconciliationRunning")
			return
		}

		h.logger.Error("reconciliation failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "InternalError")

		return
	}

	respond.JSON(w, http.StatusOK, report)
}

func (h *Handler) reports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.job.Reports(r.Context(), limitParam(r))
	if err != nil {
		h.logger.Error("listing reconciliation reports failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "InternalError")

		return
	}

	respond.JSON(w, http.StatusOK, reports)
}

func (h *Handler) expire(w http.ResponseWriter, r *http.Request) {
	n, err := h.purchases.ExpireStale(r.Context())
	if err != nil {
		// Partial sweeps still count what they expired.
		h.logger.Error("expiry sweep failed", zap.Int("expired", n), zap.Error(err))
		respond.JSON(w, http.StatusInternalServerError, map[string]any{"error": "InternalError", "expired": n})

		return
	}

	respond.JSON(w, http.StatusOK, map[string]int{"expired": n})
}

func (h *Handler) incidents(w http.ResponseWriter, r *http.Request) {
	incidents, err := h.purchases.ListIncidents(r.Context(), limitParam(r))
	if err != nil {
		h.logger.Error("listing incidents failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "InternalError")

		return
	}

	resp := make([]incidentResponse, 0, len(incidents))
	for _, inc := range incidents {
		resp = append(resp, incidentResponse{
			ID:               inc.ID,
			PaymentReference: inc.PaymentReference,
			Kind:             inc.Kind,
			Detail:           inc.Detail,
			CreatedAt:        inc.CreatedAt,
		})
	}

	respond.JSON(w, http.StatusOK, resp)
}

// limitParam reads ?limit=, leaving out-of-range values for the service to clamp.
func limitParam(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return 0
	}

	return n
}
