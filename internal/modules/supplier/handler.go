package supplier

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/stockdesk/internal/modules/gateway"
	"github.com/georgemunganga/stockdesk/internal/modules/guard"
	"github.com/georgemunganga/stockdesk/internal/modules/inlineedit"
	"github.com/georgemunganga/stockdesk/internal/modules/session"
	"github.com/georgemunganga/stockdesk/internal/web"
)

const savedMessage = "Item updated successfully!"

// Handler exposes the supplier dashboard and its inline edit actions.
type Handler struct {
	connect  Connector
	console  *web.Console
	renderer *web.Renderer
	edits    *session.Scoped[*inlineedit.Machine]
	tables   *session.Scoped[*gateway.Table]
	pageSize int
	logger   *slog.Logger
}

func NewHandler(connect Connector, console *web.Console, renderer *web.Renderer, pageSize int, logger *slog.Logger) *Handler {
	svc := console.Sessions()
	return &Handler{
		connect:  connect,
		console:  console,
		renderer: renderer,
		edits:    session.NewScoped(svc, inlineedit.New, nil),
		tables:   session.NewScoped(svc, func() *gateway.Table { return &gateway.Table{} }, nil),
		pageSize: pageSize,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(guard.Middleware(h.console, guard.RequireRole(session.RoleSupplier)))

		r.Get(guard.SupplierDashboardPath, h.dashboard)
		r.Post("/supplier/items/{id}/edit", h.beginEdit)
		r.Post("/supplier/edit/save", h.saveEdit)
		r.Post("/supplier/edit/cancel", h.cancelEdit)
	})
}

type dashboardData struct {
	Search string
	Rows   []Row
	Pager  web.Pager
	Error  string
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	sess, _ := guard.FromContext(r.Context())
	page, search := web.TableQuery(r)
	query := gateway.ItemQuery{
		PageNumber: page,
		PageSize:   h.pageSize,
		SearchTerm: search,
	}
	edit := h.edits.Get(sess.ID).State()
	data := h.tableView(gateway.Snapshot{Query: query}, edit)

	tbl := h.tables.Get(sess.ID)
	ticket := tbl.Begin()
	result, err := h.connect(sess.Token).ListSupplierItems(r.Context(), query)
	if err != nil {
		h.logger.Warn("listing supplier items", "username", sess.Username, "error", err)
		data.Error = gateway.ErrorMessage(err)
	} else {
		shown, applied := tbl.Resolve(ticket, query, result)
		if !applied {
			h.logger.Debug("discarding stale supplier page", "ticket", ticket)
		}
		data = h.tableView(shown, edit)
	}

	h.renderer.Render(w, http.StatusOK, "supplier_dashboard", h.console.Page(w, r, "My Items", data))
}

// tableView renders a snapshot; rows, pager and the return link of every
// cell come from the same query.
func (h *Handler) tableView(snap gateway.Snapshot, edit inlineedit.State) dashboardData {
	q := snap.Query
	data := dashboardData{
		Search: q.SearchTerm,
		Pager:  web.NewPager(guard.SupplierDashboardPath, q.PageNumber, h.pageSize, 0, q.SearchTerm),
	}
	if snap.Page != nil {
		self := web.TableURL(guard.SupplierDashboardPath, q.PageNumber, q.SearchTerm)
		data.Rows = buildRows(snap.Page.Items, edit, self)
		data.Pager = web.NewPager(guard.SupplierDashboardPath, q.PageNumber, h.pageSize, snap.Page.TotalCount, q.SearchTerm)
	}
	return data
}

// beginEdit opens a cell. The committed values come from the row the user
// clicked, as rendered.
func (h *Handler) beginEdit(w http.ResponseWriter, r *http.Request) {
	sess, _ := guard.FromContext(r.Context())
	back := web.SafeReturn(r.PostFormValue("return"), guard.SupplierDashboardPath)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid item id", http.StatusBadRequest)
		return
	}
	field, err := inlineedit.ParseField(r.URL.Query().Get("field"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	price, err := strconv.ParseFloat(r.PostFormValue("price"), 64)
	if err != nil {
		http.Error(w, "invalid price", http.StatusBadRequest)
		return
	}
	qty, err := strconv.Atoi(r.PostFormValue("quantity"))
	if err != nil {
		http.Error(w, "invalid quantity", http.StatusBadRequest)
		return
	}

	h.edits.Get(sess.ID).Begin(inlineedit.Row{ID: id, Price: price, Quantity: qty}, field)
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func (h *Handler) saveEdit(w http.ResponseWriter, r *http.Request) {
	sess, _ := guard.FromContext(r.Context())
	back := web.SafeReturn(r.PostFormValue("return"), guard.SupplierDashboardPath)
	m := h.edits.Get(sess.ID)

	m.SetDraft(r.PostFormValue("draft"))
	outcome, err := m.Save(r.Context(), h.connect(sess.Token))
	switch outcome {
	case inlineedit.Saved:
		h.console.Flash(w, r, web.SeveritySuccess, savedMessage)
	case inlineedit.Failed:
		h.logger.Warn("supplier update failed", "username", sess.Username, "error", err)
		h.console.Flash(w, r, web.SeverityError, gateway.ErrorMessage(err))
	case inlineedit.Invalid, inlineedit.NotEditing:
		// The validation error is rendered under the cell.
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func (h *Handler) cancelEdit(w http.ResponseWriter, r *http.Request) {
	sess, _ := guard.FromContext(r.Context())
	h.edits.Get(sess.ID).Cancel()
	http.Redirect(w, r, web.SafeReturn(r.PostFormValue("return"), guard.SupplierDashboardPath), http.StatusSeeOther)
}
