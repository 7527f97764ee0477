package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yutaro-sakamoto/github-activity-metrics/internal/config"
	"github.com/yutaro-sakamoto/github-activity-metrics/internal/metrics"
	"github.com/yutaro-sakamoto/github-activity-metrics/internal/normalize"
	"github.com/yutaro-sakamoto/github-activity-metrics/internal/pipeline"
	"github.com/yutaro-sakamoto/github-activity-metrics/internal/sink"
	"github.com/yutaro-sakamoto/github-activity-metrics/internal/stream"
)

// maxBodyBytes caps webhook bodies. GitHub caps payloads at 25 MB; anything
// larger is not a webhook.
const maxBodyBytes = 25 << 20

// Handler holds all HTTP handler dependencies.
type Handler struct {
	pipe   *pipeline.Pipeline
	loader *config.Loader
	hub    *stream.Hub // nil when the live tail is disabled
	filter *originFilter
	mux    *http.ServeMux
}

// New creates an HTTP handler and registers all routes.
func New(pipe *pipeline.Pipeline, loader *config.Loader, hub *stream.Hub) http.Handler {
	cfg := loader.Config()
	h := &Handler{
		pipe:   pipe,
		loader: loader,
		hub:    hub,
		filter: newOriginFilter(cfg.Webhook.AllowedCIDRs, cfg.Webhook.TrustForwardedFor),
		mux:    http.NewServeMux(),
	}
	loader.OnChange(func(cfg *config.Config) {
		h.filter.SetRanges(cfg.Webhook.AllowedCIDRs)
	})

	h.mux.HandleFunc("POST /webhooks", h.ingestWebhook)
	h.mux.HandleFunc("POST /v1/config/reload", h.reloadConfig)
	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.HandleFunc("GET /readyz", h.readyz)
	h.mux.Handle("GET /metrics", promhttp.Handler())
	if hub != nil {
		h.mux.HandleFunc("GET /ws", hub.ServeWS)
	}

	return loggingMiddleware(h.mux)
}

// POST /webhooks — the single ingestion route.
func (h *Handler) ingestWebhook(w http.ResponseWriter, r *http.Request) {
	if !h.filter.Allow(r) {
		metrics.DeliveriesForbidden.Inc()
		writeError(w, http.StatusForbidden, "origin not allowed", "")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body", err.Error())
		return
	}
	if len(body) > maxBodyBytes {
		writeError(w, http.StatusBadRequest, "body too large", "")
		return
	}
	if r.Header.Get(normalize.HeaderDelivery) == "" {
		// Custom-data clients may not assign delivery ids; every record
		// still gets one so duplicates stay distinguishable downstream.
		r.Header.Set(normalize.HeaderDelivery, uuid.New().String())
	}

	req := normalize.InboundRequest{
		Body:   body,
		Header: r.Header,
		Base64: strings.EqualFold(r.Header.Get("Content-Transfer-Encoding"), "base64"),
	}

	res, err := h.pipe.Handle(r.Context(), req)
	if err != nil {
		h.writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ingestResponse{Message: "ok", EventType: res.EventType})
}

// writePipelineError maps the pipeline's error taxonomy onto HTTP statuses:
// authentication failures are 401, malformed input 400, sink failures 500.
func (h *Handler) writePipelineError(w http.ResponseWriter, err error) {
	if ne, ok := err.(*normalize.Error); ok {
		switch ne.Kind {
		case normalize.KindUnauthorized:
			metrics.DeliveriesUnauthorized.Inc()
			writeError(w, http.StatusUnauthorized, "signature verification failed", "")
		default:
			metrics.DeliveriesMalformed.Inc()
			writeError(w, http.StatusBadRequest, ne.Msg, detailOf(ne))
		}
		return
	}
	if sink.IsTransient(err) {
		writeError(w, http.StatusInternalServerError, "record write failed, delivery may be retried", err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "record write failed", err.Error())
}

func detailOf(ne *normalize.Error) string {
	if ne.Err != nil {
		return ne.Err.Error()
	}
	return ""
}

// POST /v1/config/reload — re-read the config file on demand.
func (h *Handler) reloadConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.loader.Reload()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "reload failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reloaded":      true,
		"allowed_cidrs": len(cfg.Webhook.AllowedCIDRs),
	})
}

// GET /healthz — always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz — readiness probe. The pipeline is stateless, so readiness
// means the process is up and configured.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
