package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/godilite/competency-dashboard/internal/filter"
	"github.com/godilite/competency-dashboard/internal/service"
	"go.uber.org/zap"
)

const maxPayloadBytes = 10 << 20

type envelope struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

type handlers struct {
	dashboard DashboardService
	logger    *zap.Logger
}

func writeJSON(w http.ResponseWriter, code int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func (h *handlers) ok(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, envelope{Status: "success", Data: service.Render(v)})
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	code, msg := http.StatusInternalServerError, "internal error"
	switch {
	case errors.Is(err, context.Canceled):
		// client went away; nobody reads the body
		code, msg = 499, "request canceled"
	case errors.Is(err, context.DeadlineExceeded):
		code, msg = http.StatusGatewayTimeout, "request timed out"
	case errors.Is(err, service.ErrInvalidQuery):
		code, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrUnknownCompetency):
		code, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrStorageFailure):
		msg = "database error"
	}

	fields := []zap.Field{
		zap.String("op", op),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Int("status", code),
		zap.Error(err),
	}
	if code >= http.StatusInternalServerError {
		h.logger.Error("request failed", fields...)
	} else {
		h.logger.Info("request rejected", fields...)
	}
	writeJSON(w, code, envelope{Status: "error", Message: msg})
}

// parseQuery reads the view filters from the URL. Units and regions repeat
// (?units=ICU&units=Ward+A); section and topic ids may also be comma separated.
func parseQuery(r *http.Request) service.Query {
	v := r.URL.Query()
	return service.Query{
		Selection: filter.Selection{
			Regions: v["regions"],
			Units:   v["units"],
		},
		Sections: splitIDs(v["sections"]),
		Topics:   splitIDs(v["topics"]),
		Section:  strings.TrimSpace(v.Get("section")),
		Metric:   strings.TrimSpace(v.Get("metric")),
	}
}

func splitIDs(values []string) []string {
	var out []string
	for _, v := range values {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				out = append(out, id)
			}
		}
	}
	return out
}

func serve[T any](h *handlers, op string, fetch func(context.Context, service.Query) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := fetch(r.Context(), parseQuery(r))
		if err != nil {
			h.fail(w, r, op, err)
			return
		}
		h.ok(w, v)
	}
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, envelope{Status: "success", Data: map[string]string{"health": "ok"}})
}

func (h *handlers) regions(w http.ResponseWriter, r *http.Request) {
	regions, err := h.dashboard.GetRegions(r.Context())
	if err != nil {
		h.fail(w, r, "GetRegions", err)
		return
	}
	h.ok(w, regions)
}

func (h *handlers) catalog(w http.ResponseWriter, r *http.Request) {
	comps, err := h.dashboard.GetCatalog(r.Context())
	if err != nil {
		h.fail(w, r, "GetCatalog", err)
		return
	}
	h.ok(w, comps)
}

func (h *handlers) invalidateCatalog(w http.ResponseWriter, r *http.Request) {
	if err := h.dashboard.InvalidateCatalog(r.Context()); err != nil {
		h.fail(w, r, "InvalidateCatalog", err)
		return
	}
	h.ok(w, map[string]bool{"invalidated": true})
}

func (h *handlers) transform(w http.ResponseWriter, r *http.Request) {
	view := chi.URLParam(r, "view")
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, envelope{Status: "error", Message: "payload too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, envelope{Status: "error", Message: "unreadable body"})
		return
	}

	v, err := h.dashboard.Transform(r.Context(), view, payload, parseQuery(r))
	if err != nil {
		h.fail(w, r, "Transform", err)
		return
	}
	h.ok(w, v)
}
