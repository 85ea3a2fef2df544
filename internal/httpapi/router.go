package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

const requestTimeout = 30 * time.Second

// NewRouter mounts the dashboard API under /api.
func NewRouter(dashboard DashboardService, logger *zap.Logger, allowedOrigins []string) http.Handler {
	if dashboard == nil {
		panic("nil DashboardService provided to NewRouter")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	h := &handlers{dashboard: dashboard, logger: logger.Named("http-handler")}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(h.logger), middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.health)

	r.Route("/api", func(api chi.Router) {
		api.Get("/regions", h.regions)
		api.Get("/catalog", h.catalog)
		api.Post("/catalog/invalidate", h.invalidateCatalog)

		api.Route("/charts", func(c chi.Router) {
			c.Get("/bar", serve(h, "GetBarChart", dashboard.GetBarChart))
			c.Get("/heatmap", serve(h, "GetHeatmap", dashboard.GetHeatmap))
			c.Get("/radar", serve(h, "GetRadarChart", dashboard.GetRadarChart))
			c.Get("/sub-radar", serve(h, "GetSubCompetencyRadar", dashboard.GetSubCompetencyRadar))
			c.Get("/sub-chart", serve(h, "GetSubCompetencyChart", dashboard.GetSubCompetencyChart))
			c.Get("/bubble", serve(h, "GetBubbleMatrix", dashboard.GetBubbleMatrix))
			c.Get("/distribution", serve(h, "GetTalentDistribution", dashboard.GetTalentDistribution))
		})

		api.Post("/transform/{view}", h.transform)
	})

	return r
}

// requestLogger logs one line per request through zap.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("remote_addr", r.RemoteAddr))
		})
	}
}
