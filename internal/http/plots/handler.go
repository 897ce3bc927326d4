package plots

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/subx/internal/http/respond"
	"github.com/MrJamesThe3rd/subx/internal/importer"
	"github.com/MrJamesThe3rd/subx/internal/logging"
	"github.com/MrJamesThe3rd/subx/internal/plot"
)

type Handler struct {
	svc       *plot.Service
	importSvc *importer.Service
	logger    *zap.Logger
}

func NewHandler(svc *plot.Service, importSvc *importer.Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, importSvc: importSvc, logger: logging.OrNop(logger)}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Post("/import", h.importRegister)
	r.Get("/{id}", h.get)
	r.Get("/{id}/status", h.status)
}

type createPlotRequest struct {
	Name        string          `json:"name"`
	TotalSqm    int             `json:"totalSqm"`
	PricePerSqm decimal.Decimal `json:"pricePerSqm"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createPlotRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "InvalidRequestBody")
		return
	}

	p, err := h.svc.Create(r.Context(), plot.CreateParams{
		Name:        req.Name,
		TotalSqm:    req.TotalSqm,
		PricePerSqm: req.PricePerSqm,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(p))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	plots, err := h.svc.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponses(plots))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "InvalidPlotId")
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(p))
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "InvalidPlotId")
		return
	}

	s, err := h.svc.Status(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, statusResponse{
		PlotID:         s.PlotID,
		Name:           s.Name,
		TotalSqm:       s.TotalSqm,
		AvailableSqm:   s.AvailableSqm,
		SoldPercentage: s.SoldPercentage,
	})
}

// importRegister takes a multipart "file" field; .yaml and .yml are read as YAML, anything else as CSV.
func (h *Handler) importRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		respond.Error(w, http.StatusBadRequest, "InvalidRequestBody")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "MissingFile")
		return
	}
	defer file.Close()

	plots, err := h.importSvc.Import(r.Context(), importer.FormatFromFilename(header.Filename), file)
	if err != nil {
		if errors.Is(err, plot.ErrDuplicateName) {
			respond.Error(w, http.StatusConflict, "DuplicatePlotName")
			return
		}

		h.logger.Warn("plot import rejected", zap.String("file", header.Filename), zap.Error(err))
		respond.Error(w, http.StatusBadRequest, "InvalidRegister")

		return
	}

	respond.JSON(w, http.StatusCreated, importResponse{Imported: len(plots), Plots: toResponses(plots)})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, plot.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "PlotNotFound")
	case errors.Is(err, plot.ErrInvalidPlot):
		respond.Error(w, http.StatusBadRequest, "InvalidPlot")
	case errors.Is(err, plot.ErrDuplicateName):
		respond.Error(w, http.StatusConflict, "DuplicatePlotName")
	default:
		h.logger.Error("plot request failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "InternalError")
	}
}
