package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/subx/internal/http/admin"
	"github.com/MrJamesThe3rd/subx/internal/http/plots"
	"github.com/MrJamesThe3rd/subx/internal/http/purchase"
	"github.com/MrJamesThe3rd/subx/internal/http/referrals"
	"github.com/MrJamesThe3rd/subx/internal/http/respond"
	"github.com/MrJamesThe3rd/subx/internal/http/users"
	"github.com/MrJamesThe3rd/subx/internal/http/webhook"
	"github.com/MrJamesThe3rd/subx/internal/logging"
)

type Handlers struct {
	Plots     *plots.Handler
	Purchases *purchase.Handler
	Webhook   *webhook.Handler
	Users     *users.Handler
	Referrals *referrals.Handler
	Admin     *admin.Handler
}

type Options struct {
	AllowedOrigins []string
	Timeout        time.Duration
	// ReserveLimit guards the reservation endpoint. Nil means no limit.
	ReserveLimit func(http.Handler) http.Handler
	Logger       *zap.Logger
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(logging.OrNop(opts.Logger)))
	router.Use(middleware.Recoverer)

	if len(opts.AllowedOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders: []string{"Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
			MaxAge:         300,
		}))
	}

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	limit := opts.ReserveLimit
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// The gateway posts raw signed bytes, so no content-type filter here.
	router.Route("/webhook", h.Webhook.Routes)

	router.Route("/plots", h.Plots.Routes)

	router.Route("/purchases", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		h.Purchases.Routes(r, limit)
	})

	router.Route("/users", func(r chi.Router) {
		h.Users.Routes(r)
		h.Referrals.UserRoutes(r)
	})

	router.Route("/referrals", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		h.Referrals.Routes(r)
	})

	router.Route("/admin", h.Admin.Routes)

	return router
}
