package inventory

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/stockdesk/internal/modules/gateway"
	"github.com/georgemunganga/stockdesk/internal/modules/guard"
	"github.com/georgemunganga/stockdesk/internal/modules/itemform"
	"github.com/georgemunganga/stockdesk/internal/modules/session"
	"github.com/georgemunganga/stockdesk/internal/web"
)

const maxUploadBytes = 10 << 20

// Handler exposes the admin inventory views.
type Handler struct {
	connect  Connector
	console  *web.Console
	renderer *web.Renderer
	tables   *session.Scoped[*gateway.Table]
	pageSize int
	logger   *slog.Logger
}

func NewHandler(connect Connector, console *web.Console, renderer *web.Renderer, pageSize int, logger *slog.Logger) *Handler {
	return &Handler{
		connect:  connect,
		console:  console,
		renderer: renderer,
		tables:   session.NewScoped(console.Sessions(), func() *gateway.Table { return &gateway.Table{} }, nil),
		pageSize: pageSize,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(guard.Middleware(h.console, guard.RequireRole(session.RoleAdmin)))

		r.Get(guard.AdminDashboardPath, h.dashboard)
		r.Post("/admin/items/{id}/delete", h.deleteItem)

		r.Get("/admin/item/new", h.itemForm)
		r.Post("/admin/item/new", h.submitItem)
		r.Get("/admin/item/edit/{id}", h.itemForm)
		r.Post("/admin/item/edit/{id}", h.submitItem)
	})
}

type dashboardData struct {
	Search string
	Self   string
	Rows   []Row
	Pager  web.Pager
	Error  string
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	sess, _ := guard.FromContext(r.Context())
	api := h.connect(sess.Token)
	page, search := web.TableQuery(r)
	query := gateway.ItemQuery{
		PageNumber:  page,
		PageSize:    h.pageSize,
		SearchTerm:  search,
		SearchField: SearchField,
	}
	data := h.tableView(api, gateway.Snapshot{Query: query})

	tbl := h.tables.Get(sess.ID)
	ticket := tbl.Begin()
	result, err := api.ListItems(r.Context(), query)
	if err != nil {
		h.logger.Warn("listing items", "error", err)
		data.Error = gateway.ErrorMessage(err)
	} else {
		shown, applied := tbl.Resolve(ticket, query, result)
		if !applied {
			h.logger.Debug("discarding stale item page", "ticket", ticket)
		}
		data = h.tableView(api, shown)
	}

	h.renderer.Render(w, http.StatusOK, "admin_dashboard", h.console.Page(w, r, "Inventory", data))
}

// tableView renders a snapshot. Search box, rows and pager all come from
// the snapshot so they describe the same page.
func (h *Handler) tableView(api API, snap gateway.Snapshot) dashboardData {
	q := snap.Query
	data := dashboardData{
		Search: q.SearchTerm,
		Self:   web.TableURL(guard.AdminDashboardPath, q.PageNumber, q.SearchTerm),
		Pager:  web.NewPager(guard.AdminDashboardPath, q.PageNumber, h.pageSize, 0, q.SearchTerm),
	}
	if snap.Page != nil {
		data.Rows = rows(api, snap.Page.Items)
		data.Pager = web.NewPager(guard.AdminDashboardPath, q.PageNumber, h.pageSize, snap.Page.TotalCount, q.SearchTerm)
	}
	return data
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	sess, _ := guard.FromContext(r.Context())
	back := web.SafeReturn(r.PostFormValue("return"), guard.AdminDashboardPath)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.console.Flash(w, r, web.SeverityError, "Invalid item id.")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	if err := h.connect(sess.Token).DeleteItem(r.Context(), id); err != nil {
		h.logger.Error("delete failed", "item_id", id, "error", gateway.ErrorMessage(err))
		h.console.Flash(w, r, web.SeverityError, gateway.ErrorMessage(err))
	} else {
		h.console.Flash(w, r, web.SeveritySuccess, "Item deleted.")
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// openForm builds and loads the form controller for the request. The
// caller must Close it.
func (h *Handler) openForm(w http.ResponseWriter, r *http.Request) (*itemform.Controller, bool) {
	sess, _ := guard.FromContext(r.Context())
	form, err := itemform.New(h.connect(sess.Token), chi.URLParam(r, "id"))
	if err != nil {
		http.Redirect(w, r, guard.AdminDashboardPath, http.StatusSeeOther)
		return nil, false
	}
	form.Load(r.Context())
	if r.Context().Err() != nil {
		form.Close()
		return nil, false
	}
	return form, true
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, form *itemform.Controller) {
	view := form.View()
	title := "Create Item"
	if view.Editing {
		title = "Edit Item"
	}
	h.renderer.Render(w, status, "item_form", h.console.Page(w, r, title, view))
}

func (h *Handler) itemForm(w http.ResponseWriter, r *http.Request) {
	form, ok := h.openForm(w, r)
	if !ok {
		return
	}
	defer form.Close()
	h.renderForm(w, r, http.StatusOK, form)
}

func (h *Handler) submitItem(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	form, ok := h.openForm(w, r)
	if !ok {
		return
	}
	defer form.Close()

	supplierID, _ := strconv.Atoi(r.PostFormValue("supplierID"))
	form.SetValues(itemform.Values{
		Name:       r.PostFormValue("name"),
		Price:      r.PostFormValue("price"),
		Quantity:   r.PostFormValue("quantity"),
		SupplierID: supplierID,
	})

	img, err := uploadedImage(r)
	if err != nil {
		http.Error(w, "invalid upload", http.StatusBadRequest)
		return
	}
	if img != nil && !form.AttachImage(*img) {
		h.renderForm(w, r, http.StatusUnprocessableEntity, form)
		return
	}

	if err := form.Submit(r.Context()); err != nil {
		h.logger.Info("item form rejected", "error", err)
		h.renderForm(w, r, http.StatusUnprocessableEntity, form)
		return
	}
	h.console.Flash(w, r, web.SeveritySuccess, "Item saved.")
	http.Redirect(w, r, guard.AdminDashboardPath, http.StatusSeeOther)
}

func uploadedImage(r *http.Request) (*gateway.Image, error) {
	file, hdr, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return &gateway.Image{
		Filename:    hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
