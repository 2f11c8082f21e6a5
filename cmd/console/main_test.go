package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/stockdesk/internal/config"
	"github.com/georgemunganga/stockdesk/internal/modules/gateway"
	"github.com/georgemunganga/stockdesk/internal/modules/session"
)

// fakeAPI is an in-process stand-in for the inventory API.
type fakeAPI struct {
	mu        sync.Mutex
	items     map[int]gateway.Item
	updates   []gateway.SupplierUpdate
	rejectPUT bool
	created   int
	replaced  int
	lastQuery url.Values
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{items: map[int]gateway.Item{
		1: {ID: 1, Name: "Widget", Price: 10, Quantity: 5, SupplierID: 7, SupplierName: "sam"},
		2: {ID: 2, Name: "Gadget", Price: 2.5, Quantity: 40, SupplierID: 7, SupplierName: "sam"},
	}}
}

func token(t *testing.T, username, role string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"unique_name": username,
		"nameid":      "7",
		"role":        role,
		"exp":         time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("api-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (f *fakeAPI) page() gateway.Page {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]int, 0, len(f.items))
	for id := range f.items {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	p := gateway.Page{TotalCount: len(ids)}
	for _, id := range ids {
		p.Items = append(p.Items, f.items[id])
	}
	return p
}

func (f *fakeAPI) item(id int) (gateway.Item, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[id]
	return it, ok
}

func (f *fakeAPI) query() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastQuery
}

func (f *fakeAPI) recorded() ([]gateway.SupplierUpdate, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]gateway.SupplierUpdate(nil), f.updates...), f.created
}

func itemID(r *http.Request) int {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	return id
}

func (f *fakeAPI) routes(t *testing.T) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var c struct{ Username, Password string }
		json.NewDecoder(r.Body).Decode(&c)
		switch c.Username {
		case "ann":
			writeJSON(w, http.StatusOK, map[string]string{"token": token(t, "ann", "Admin")})
		case "sam":
			writeJSON(w, http.StatusOK, map[string]string{"token": token(t, "sam", "Supplier")})
		default:
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid username or password."})
		}
	})
	r.Post("/api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		var c struct{ Username, Password string }
		json.NewDecoder(r.Body).Decode(&c)
		if c.Username == "ann" {
			w.WriteHeader(http.StatusConflict)
			io.WriteString(w, "Username already exists.")
			return
		}
		w.WriteHeader(http.StatusCreated)
	})
	r.Get("/api/items", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.lastQuery = r.URL.Query()
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, f.page())
	})
	r.Get("/api/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		it, ok := f.item(itemID(r))
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Item not found."})
			return
		}
		writeJSON(w, http.StatusOK, it)
	})
	r.Put("/api/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("update item: %v", err)
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		id := itemID(r)
		it := f.items[id]
		it.Name = r.FormValue("name")
		it.Quantity, _ = strconv.Atoi(r.FormValue("quantity"))
		f.items[id] = it
		f.replaced++
		writeJSON(w, http.StatusOK, it)
	})
	r.Delete("/api/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		id := itemID(r)
		if _, ok := f.items[id]; !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Item not found."})
			return
		}
		delete(f.items, id)
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/api/items/supplier", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, f.page())
	})
	r.Get("/api/items/suppliers", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []gateway.Supplier{{UserID: 7, Username: "sam"}})
	})
	r.Put("/api/items/supplier/{id}", func(w http.ResponseWriter, r *http.Request) {
		var u gateway.SupplierUpdate
		json.NewDecoder(r.Body).Decode(&u)
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.rejectPUT {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Item is locked."})
			return
		}
		f.updates = append(f.updates, u)
		it := f.items[1]
		it.Price, it.Quantity = u.Price, int(u.Quantity)
		f.items[1] = it
		writeJSON(w, http.StatusOK, it)
	})
	r.Post("/api/items", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("create item: %v", err)
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		f.created++
		id := 100 + f.created
		f.items[id] = gateway.Item{ID: id, Name: r.FormValue("name"), SupplierID: 7}
		writeJSON(w, http.StatusCreated, f.items[id])
	})
	r.Get("/api/analytics/least-stock-items", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []gateway.StockLevel{{Name: "Widget", Quantity: 5}})
	})
	r.Get("/api/analytics/least-supplier-stock", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []gateway.SupplierStock{{Username: "sam", TotalQuantity: 45}})
	})
	return r
}

type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func newConsole(t *testing.T, f *fakeAPI) *browser {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	api := httptest.NewServer(f.routes(t))
	t.Cleanup(api.Close)

	cfg := &config.Config{
		APIBaseURL:    api.URL + "/api",
		ImageBaseURL:  api.URL,
		APITimeout:    5 * time.Second,
		PageSize:      5,
		SessionSecret: "test-secret",
	}
	sessions := session.NewService(session.NewMemoryRepository(), logger)
	router, err := newRouter(cfg, sessions, gateway.NewClient(cfg.APIBaseURL, cfg.ImageBaseURL, cfg.APITimeout, logger), logger)
	if err != nil {
		t.Fatalf("newRouter: %v", err)
	}
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return newBrowser(t, srv.URL)
}

func newBrowser(t *testing.T, base string) *browser {
	jar, _ := cookiejar.New(nil)
	return &browser{t: t, base: base, client: &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}}
}

// cookies returns the console cookies the browser currently holds.
func (b *browser) cookies() []*http.Cookie {
	u, _ := url.Parse(b.base)
	return b.client.Jar.Cookies(u)
}

// plant makes the browser send the given cookies from now on.
func (b *browser) plant(cookies []*http.Cookie) {
	u, _ := url.Parse(b.base)
	b.client.Jar.SetCookies(u, cookies)
}

func (b *browser) do(req *http.Request) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.client.Do(req)
	if err != nil {
		b.t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func (b *browser) get(path string) (*http.Response, string) {
	req, _ := http.NewRequest(http.MethodGet, b.base+path, nil)
	return b.do(req)
}

func (b *browser) post(path string, form url.Values) (*http.Response, string) {
	req, _ := http.NewRequest(http.MethodPost, b.base+path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) login(username string) {
	b.t.Helper()
	resp, _ := b.post("/login", url.Values{"username": {username}, "password": {"pw"}})
	if resp.StatusCode != http.StatusSeeOther {
		b.t.Fatalf("login %s: status %d", username, resp.StatusCode)
	}
}

func expectRedirect(t *testing.T, resp *http.Response, want string) {
	t.Helper()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
	if got := resp.Header.Get("Location"); got != want {
		t.Fatalf("Location = %q, want %q", got, want)
	}
}

func TestAnonymousIsSentToLogin(t *testing.T) {
	b := newConsole(t, newFakeAPI())

	for _, path := range []string{"/", "/admin/dashboard", "/admin/item/new", "/supplier/dashboard", "/admin/analytics"} {
		resp, _ := b.get(path)
		expectRedirect(t, resp, "/login")
	}
	resp, body := b.get("/login")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `name="password"`) {
		t.Fatalf("login page: %d", resp.StatusCode)
	}
}

func TestLandingFollowsRole(t *testing.T) {
	admin := newConsole(t, newFakeAPI())
	admin.login("ann")
	resp, _ := admin.get("/")
	expectRedirect(t, resp, "/admin/dashboard")
	resp, _ = admin.get("/supplier/dashboard")
	expectRedirect(t, resp, "/login")

	resp, body := admin.get("/admin/dashboard")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Widget") || !strings.Contains(body, "ann") {
		t.Fatalf("admin dashboard: %d %s", resp.StatusCode, body)
	}

	supplier := newConsole(t, newFakeAPI())
	supplier.login("sam")
	resp, _ = supplier.get("/")
	expectRedirect(t, resp, "/supplier/dashboard")
	resp, _ = supplier.get("/admin/dashboard")
	expectRedirect(t, resp, "/login")
}

func TestFailedLoginShowsAPIMessage(t *testing.T) {
	b := newConsole(t, newFakeAPI())
	resp, body := b.post("/login", url.Values{"username": {"mallory"}, "password": {"x"}})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Invalid username or password.") {
		t.Fatalf("missing API message in %s", body)
	}
	resp, _ = b.get("/admin/dashboard")
	expectRedirect(t, resp, "/login")
}

func TestLogoutRevokesAccess(t *testing.T) {
	b := newConsole(t, newFakeAPI())
	b.login("ann")
	resp, _ := b.post("/logout", nil)
	expectRedirect(t, resp, "/login")
	resp, _ = b.get("/admin/dashboard")
	expectRedirect(t, resp, "/login")
}

func beginEdit(b *browser, field string) {
	b.t.Helper()
	resp, _ := b.post("/supplier/items/1/edit?field="+field, url.Values{
		"price":    {"10"},
		"quantity": {"5"},
		"return":   {"/supplier/dashboard"},
	})
	expectRedirect(b.t, resp, "/supplier/dashboard")
}

func TestSupplierInlineEdit(t *testing.T) {
	f := newFakeAPI()
	b := newConsole(t, f)
	b.login("sam")

	beginEdit(b, "price")
	_, body := b.get("/supplier/dashboard")
	if !strings.Contains(body, `name="draft"`) {
		t.Fatalf("price cell not in edit mode: %s", body)
	}

	resp, _ := b.post("/supplier/edit/save", url.Values{"draft": {"-1"}, "return": {"/supplier/dashboard"}})
	expectRedirect(t, resp, "/supplier/dashboard")
	_, body = b.get("/supplier/dashboard")
	if !strings.Contains(body, "Value cannot be negative.") {
		t.Fatalf("validation error not shown: %s", body)
	}
	if updates, _ := f.recorded(); len(updates) != 0 {
		t.Fatalf("invalid draft reached the API: %v", updates)
	}

	resp, _ = b.post("/supplier/edit/save", url.Values{"draft": {"12.5"}, "return": {"/supplier/dashboard"}})
	expectRedirect(t, resp, "/supplier/dashboard")
	_, body = b.get("/supplier/dashboard")
	if !strings.Contains(body, "Item updated successfully!") {
		t.Fatalf("success flash missing: %s", body)
	}
	if strings.Contains(body, `name="draft"`) {
		t.Fatal("cell still in edit mode after save")
	}
	updates, _ := f.recorded()
	if len(updates) != 1 || updates[0] != (gateway.SupplierUpdate{Price: 12.5, Quantity: 5}) {
		t.Fatalf("updates = %+v", updates)
	}
}

func TestSupplierFailedSaveKeepsEditing(t *testing.T) {
	f := newFakeAPI()
	f.rejectPUT = true
	b := newConsole(t, f)
	b.login("sam")

	beginEdit(b, "quantity")
	b.post("/supplier/edit/save", url.Values{"draft": {"9"}, "return": {"/supplier/dashboard"}})
	_, body := b.get("/supplier/dashboard")
	if !strings.Contains(body, "Item is locked.") {
		t.Fatalf("error flash missing: %s", body)
	}
	if !strings.Contains(body, `value="9"`) {
		t.Fatalf("draft not kept after failed save: %s", body)
	}

	b.post("/supplier/edit/cancel", url.Values{"return": {"/supplier/dashboard"}})
	_, body = b.get("/supplier/dashboard")
	if strings.Contains(body, `name="draft"`) {
		t.Fatal("cell still in edit mode after cancel")
	}
}

func multipartItem(t *testing.T, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("name", "Sprocket")
	mw.WriteField("price", "3.5")
	mw.WriteField("quantity", "12")
	mw.WriteField("supplierID", "7")
	if data != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="pic"`)
		h.Set("Content-Type", contentType)
		part, _ := mw.CreatePart(h)
		part.Write(data)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestItemFormRejectsNonPNG(t *testing.T) {
	f := newFakeAPI()
	b := newConsole(t, f)
	b.login("ann")

	body, ct := multipartItem(t, "image/jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0x10, 'J', 'F', 'I', 'F'})
	req, _ := http.NewRequest(http.MethodPost, b.base+"/admin/item/new", body)
	req.Header.Set("Content-Type", ct)
	resp, page := b.do(req)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(page, "Only PNG images are allowed.") {
		t.Fatalf("PNG error missing: %s", page)
	}
	if _, created := f.recorded(); created != 0 {
		t.Fatal("item created despite rejected image")
	}
}

func TestItemFormCreates(t *testing.T) {
	f := newFakeAPI()
	b := newConsole(t, f)
	b.login("ann")

	body, ct := multipartItem(t, "", nil)
	req, _ := http.NewRequest(http.MethodPost, b.base+"/admin/item/new", body)
	req.Header.Set("Content-Type", ct)
	resp, _ := b.do(req)
	expectRedirect(t, resp, "/admin/dashboard")
	if _, created := f.recorded(); created != 1 {
		t.Fatalf("created = %d", created)
	}
	_, page := b.get("/admin/dashboard")
	if !strings.Contains(page, "Sprocket") || !strings.Contains(page, "Item saved.") {
		t.Fatalf("new item or flash missing: %s", page)
	}
}

func TestAnalyticsFeed(t *testing.T) {
	b := newConsole(t, newFakeAPI())
	b.login("ann")

	resp, body := b.get("/admin/analytics.json")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Top 5 Items with Least Stock") || !strings.Contains(body, "Widget") {
		t.Fatalf("feed = %s", body)
	}
}

func TestLoginIssuesFreshConsoleCookie(t *testing.T) {
	attacker := newConsole(t, newFakeAPI())
	attacker.post("/login", url.Values{"username": {"mallory"}, "password": {"x"}})
	planted := attacker.cookies()
	if len(planted) == 0 {
		t.Fatal("failed login should still leave a console cookie")
	}

	victim := newBrowser(t, attacker.base)
	victim.plant(planted)
	victim.login("ann")

	resp, _ := attacker.get("/admin/dashboard")
	expectRedirect(t, resp, "/login")
	resp, _ = victim.get("/admin/dashboard")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("signed-in browser got %d", resp.StatusCode)
	}
}

func TestLogoutRetiresConsoleCookie(t *testing.T) {
	b := newConsole(t, newFakeAPI())
	b.login("ann")
	signedIn := b.cookies()

	b.post("/logout", nil)
	replay := newBrowser(t, b.base)
	replay.plant(signedIn)
	resp, _ := replay.get("/admin/dashboard")
	expectRedirect(t, resp, "/login")
}

func TestLoginRequiresCredentials(t *testing.T) {
	b := newConsole(t, newFakeAPI())
	resp, body := b.post("/login", url.Values{"username": {"ann"}, "password": {""}})
	if resp.StatusCode != http.StatusUnauthorized || !strings.Contains(body, "Username and password are required.") {
		t.Fatalf("status = %d body = %s", resp.StatusCode, body)
	}
}

func TestRegister(t *testing.T) {
	b := newConsole(t, newFakeAPI())

	resp, body := b.post("/register", url.Values{"username": {"newbie"}, "password": {"secret1"}})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Registration successful! You will be redirected to log in.") {
		t.Fatalf("success message missing: %s", body)
	}
	if !strings.Contains(body, `http-equiv="refresh"`) || !strings.Contains(body, "url=/login") {
		t.Fatalf("redirect to login missing: %s", body)
	}

	resp, body = b.post("/register", url.Values{"username": {"ann"}, "password": {"secret1"}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Username already exists.") || strings.Contains(body, `http-equiv="refresh"`) {
		t.Fatalf("API error not shown: %s", body)
	}
}

func TestAdminDeleteItem(t *testing.T) {
	f := newFakeAPI()
	b := newConsole(t, f)
	b.login("ann")

	resp, _ := b.post("/admin/items/1/delete", url.Values{"return": {"/admin/dashboard"}})
	expectRedirect(t, resp, "/admin/dashboard")
	if _, ok := f.item(1); ok {
		t.Fatal("item 1 still exists")
	}
	_, body := b.get("/admin/dashboard")
	if !strings.Contains(body, "Item deleted.") || strings.Contains(body, "Widget") {
		t.Fatalf("delete not reflected: %s", body)
	}

	resp, _ = b.post("/admin/items/99/delete", url.Values{"return": {"/admin/dashboard?page=2"}})
	expectRedirect(t, resp, "/admin/dashboard?page=2")
	_, body = b.get("/admin/dashboard")
	if !strings.Contains(body, "Item not found.") {
		t.Fatalf("failure flash missing: %s", body)
	}
}

func TestAdminEditItem(t *testing.T) {
	f := newFakeAPI()
	b := newConsole(t, f)
	b.login("ann")

	resp, body := b.get("/admin/item/edit/1")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Edit Item") || !strings.Contains(body, `value="Widget"`) {
		t.Fatalf("edit form: %d %s", resp.StatusCode, body)
	}

	form, ct := multipartItem(t, "", nil)
	req, _ := http.NewRequest(http.MethodPost, b.base+"/admin/item/edit/1", form)
	req.Header.Set("Content-Type", ct)
	resp, _ = b.do(req)
	expectRedirect(t, resp, "/admin/dashboard")

	it, _ := f.item(1)
	if it.Name != "Sprocket" || it.Quantity != 12 {
		t.Fatalf("item 1 = %+v, want the submitted values", it)
	}
	f.mu.Lock()
	replaced, created := f.replaced, f.created
	f.mu.Unlock()
	if replaced != 1 || created != 0 {
		t.Fatalf("replaced = %d created = %d, want one update and no create", replaced, created)
	}
}

func TestAdminDashboardForwardsQuery(t *testing.T) {
	f := newFakeAPI()
	b := newConsole(t, f)
	b.login("ann")

	b.get("/admin/dashboard")
	q := f.query()
	if q.Get("pageNumber") != "1" || q.Get("pageSize") != "5" || q.Get("searchField") != "ItemName" || q.Get("searchTerm") != "" {
		t.Fatalf("default query = %v", q)
	}

	b.get("/admin/dashboard?page=3&q=widget")
	q = f.query()
	if q.Get("pageNumber") != "3" || q.Get("searchTerm") != "widget" || q.Get("searchField") != "ItemName" {
		t.Fatalf("query = %v", q)
	}
}
