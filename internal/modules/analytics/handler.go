package analytics

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/stockdesk/internal/modules/gateway"
	"github.com/georgemunganga/stockdesk/internal/modules/guard"
	"github.com/georgemunganga/stockdesk/internal/modules/session"
	"github.com/georgemunganga/stockdesk/internal/web"
)

// Handler exposes the admin analytics page and its JSON feed.
type Handler struct {
	service  Service
	connect  Connector
	console  *web.Console
	renderer *web.Renderer
	logger   *slog.Logger
}

func NewHandler(service Service, connect Connector, console *web.Console, renderer *web.Renderer, logger *slog.Logger) *Handler {
	return &Handler{service: service, connect: connect, console: console, renderer: renderer, logger: logger}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(guard.Middleware(h.console, guard.RequireRole(session.RoleAdmin)))
		r.Get("/admin/analytics", h.page)
		r.Get("/admin/analytics.json", h.feed)
	})
}

type pageData struct {
	Charts []Chart
	Error  string
}

func (h *Handler) page(w http.ResponseWriter, r *http.Request) {
	sess, _ := guard.FromContext(r.Context())
	var data pageData
	charts, err := h.service.Charts(r.Context(), h.connect(sess.Token))
	if err != nil {
		h.logger.Warn("loading analytics", "error", err)
		data.Error = gateway.ErrorMessage(err)
	}
	data.Charts = charts
	h.renderer.Render(w, http.StatusOK, "analytics", h.console.Page(w, r, "Analytics", data))
}

func (h *Handler) feed(w http.ResponseWriter, r *http.Request) {
	sess, _ := guard.FromContext(r.Context())
	charts, err := h.service.Charts(r.Context(), h.connect(sess.Token))
	if err != nil {
		respond(w, http.StatusBadGateway, map[string]string{"message": gateway.ErrorMessage(err)})
		return
	}
	respond(w, http.StatusOK, charts)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
