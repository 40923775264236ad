// Package http binds the dispatcher to net/http. It builds the
// read-only request view from the transport, runs the dispatcher, and
// emits the rendered response. The core never touches net/http types.
package http

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/strutkit/strut/adapters/metrics"
	"github.com/strutkit/strut/app"
	"github.com/strutkit/strut/domain/route"
)

// Handler serves an app.Router over net/http.
type Handler struct {
	router    *app.Router
	logger    zerolog.Logger
	collector *metrics.Collector
}

// NewHandler creates a transport handler. collector may be nil.
func NewHandler(router *app.Router, logger zerolog.Logger, collector *metrics.Collector) *Handler {
	return &Handler{router: router, logger: logger, collector: collector}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := uuid.NewString()
	done := h.collector.TrackInFlight()
	defer done()

	req, err := buildRequest(r)
	if err != nil {
		// Methods outside the supported set can never match a route.
		h.logger.Warn().
			Err(err).
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("unroutable request")
		writeStatus(w, http.StatusNotFound)
		h.collector.Observe(r.Method, http.StatusNotFound, time.Since(start).Seconds())
		return
	}

	resp := h.router.Serve(r.Context(), req)

	for k, v := range resp.Header {
		w.Header().Set(k, v)
	}
	w.Header().Set("Content-Type", resp.ContentType)
	w.WriteHeader(resp.Status)
	if len(resp.Body) > 0 {
		w.Write(resp.Body)
	}

	h.collector.Observe(string(req.Method), resp.Status, time.Since(start).Seconds())
	h.logger.Info().
		Str("request_id", requestID).
		Str("method", string(req.Method)).
		Str("path", req.Path).
		Int("status", resp.Status).
		Dur("duration", time.Since(start)).
		Msg("request")
}

// buildRequest converts the transport request into the immutable domain
// view. Route paths carry no leading slash, so the mask "items/:id"
// matches the URL path "/items/7".
func buildRequest(r *http.Request) (*route.Request, error) {
	method, err := route.ParseMethod(r.Method)
	if err != nil {
		return nil, err
	}

	req := &route.Request{
		Method: method,
		Path:   strings.TrimPrefix(r.URL.Path, "/"),
		Proto:  r.Proto,
		Query:  r.URL.Query(),
	}

	switch method {
	case route.POST:
		if err := r.ParseForm(); err == nil {
			req.Form = r.PostForm
		}
	case route.PUT:
		body, err := io.ReadAll(r.Body)
		if err == nil {
			if values, err := url.ParseQuery(string(body)); err == nil {
				req.Put = values
			}
		}
	}

	return req, nil
}

func writeStatus(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(status)
	fmt.Fprintf(w, "%d %s", status, http.StatusText(status))
}

// Mount assembles the demo server surface: the framework handler at the
// root, a liveness endpoint, and the Prometheus exposition endpoint.
func Mount(h *Handler, metricsPath string) http.Handler {
	mux := chi.NewRouter()
	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"status":"ok"}`)
	})
	if metricsPath != "" {
		mux.Handle(metricsPath, promhttp.Handler())
	}
	mux.Handle("/*", h)
	return mux
}
