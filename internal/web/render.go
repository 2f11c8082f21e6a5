package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/georgemunganga/stockdesk/internal/modules/session"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

var pageNames = []string{
	"login",
	"register",
	"admin_dashboard",
	"item_form",
	"analytics",
	"supplier_dashboard",
}

// Page is the data every template receives.
type Page struct {
	Title   string
	User    *session.Session
	Flashes []Flash
	Data    interface{}
}

// Renderer executes the embedded page templates inside the shared layout.
type Renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

func NewRenderer(logger *slog.Logger) (*Renderer, error) {
	funcs := template.FuncMap{
		"money": func(v float64) string { return fmt.Sprintf("₹%.2f", v) },
		"add":   func(a, b int) int { return a + b },
		"pct": func(v, max int) int {
			if max <= 0 {
				return 0
			}
			return v * 100 / max
		},
	}
	rd := &Renderer{pages: make(map[string]*template.Template), logger: logger}
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.gohtml", "templates/"+name+".gohtml")
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", name, err)
		}
		rd.pages[name] = t
	}
	return rd, nil
}

// Render writes the page with status. The template runs into a buffer
// first so a failing template never leaves a half-written page.
func (rd *Renderer) Render(w http.ResponseWriter, status int, name string, p Page) {
	t, ok := rd.pages[name]
	if !ok {
		http.Error(w, "unknown page "+name, http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		rd.logger.Error("rendering page", "page", name, "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// Page builds the template data for the current request and consumes its
// flashes. It must run before anything is written to w.
func (c *Console) Page(w http.ResponseWriter, r *http.Request, title string, data interface{}) Page {
	user, _ := c.SessionFor(r)
	return Page{
		Title:   title,
		User:    user,
		Flashes: c.TakeFlashes(w, r),
		Data:    data,
	}
}
