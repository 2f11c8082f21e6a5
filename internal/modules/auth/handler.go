package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/georgemunganga/stockdesk/internal/modules/gateway"
	"github.com/georgemunganga/stockdesk/internal/modules/guard"
	"github.com/georgemunganga/stockdesk/internal/web"
)

const (
	registeredMessage         = "Registration successful! You will be redirected to log in."
	missingCredentialsMessage = "Username and password are required."
)

// Handler serves the sign-in, sign-up and sign-out pages.
type Handler struct {
	service  Service
	console  *web.Console
	renderer *web.Renderer
	logger   *slog.Logger
}

func NewHandler(service Service, console *web.Console, renderer *web.Renderer, logger *slog.Logger) *Handler {
	return &Handler{service: service, console: console, renderer: renderer, logger: logger}
}

func (h *Handler) RegisterRoutes(router *chi.Mux) {
	router.Get("/", guard.Home(h.console))
	router.Get("/login", h.loginPage)
	router.Post("/login", h.login)
	router.Get("/register", h.registerPage)
	router.Post("/register", h.register)
	router.Post("/logout", h.logout)
}

type formData struct {
	Username string
	Error    string
	Success  string
}

func (h *Handler) loginPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "login", h.console.Page(w, r, "Sign In", formData{}))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	username := r.PostForm.Get("username")

	consoleID, prev, err := h.console.Rotate(w, r)
	if err != nil {
		h.logger.Error("issuing console id", "error", err)
		http.Error(w, "could not start a session", http.StatusInternalServerError)
		return
	}
	h.endSession(r, prev)

	sess, err := h.service.Login(r.Context(), consoleID, username, r.PostForm.Get("password"))
	if err != nil {
		h.logger.Info("login failed", "username", username, "error", err)
		data := formData{Username: username, Error: errorMessage(err)}
		h.renderer.Render(w, http.StatusUnauthorized, "login", h.console.Page(w, r, "Sign In", data))
		return
	}
	h.logger.Info("login succeeded", "username", sess.Username, "role", sess.Role.String())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) registerPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "register", h.console.Page(w, r, "Sign Up", formData{}))
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	username := r.PostForm.Get("username")
	if err := h.service.Register(r.Context(), username, r.PostForm.Get("password")); err != nil {
		data := formData{Username: username, Error: errorMessage(err)}
		h.renderer.Render(w, http.StatusBadRequest, "register", h.console.Page(w, r, "Sign Up", data))
		return
	}
	h.logger.Info("user registered", "username", username)
	h.renderer.Render(w, http.StatusCreated, "register", h.console.Page(w, r, "Sign Up", formData{Success: registeredMessage}))
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	_, prev, err := h.console.Rotate(w, r)
	if err != nil {
		h.logger.Error("rotating console id", "error", err)
	}
	h.endSession(r, prev)
	http.Redirect(w, r, guard.LoginPath, http.StatusSeeOther)
}

// endSession logs out a console id the browser no longer carries.
func (h *Handler) endSession(r *http.Request, consoleID uuid.UUID) {
	if consoleID == uuid.Nil {
		return
	}
	if err := h.service.Logout(r.Context(), consoleID); err != nil {
		h.logger.Error("logout", "console_id", consoleID, "error", err)
	}
}

func errorMessage(err error) string {
	if errors.Is(err, ErrMissingCredentials) {
		return missingCredentialsMessage
	}
	return gateway.ErrorMessage(err)
}
