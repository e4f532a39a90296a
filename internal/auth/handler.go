package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/condofacil/condofacil/internal/platform/httpx"
	"github.com/condofacil/condofacil/internal/shared"
	"github.com/condofacil/condofacil/internal/users"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		sessionManager: sessions,
		csrfManager:    csrf,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/me", h.handleMe)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"senha" validate:"required,min=8"`
}

type sessionResponse struct {
	ID        string `json:"id"`
	Nome      string `json:"nome"`
	Email     string `json:"email"`
	Papel     string `json:"papel"`
	CSRFToken string `json:"csrfToken,omitempty"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Dados inválidos", "corpo JSON inválido")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Dados inválidos", "email e senha são obrigatórios")
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "Não autenticado", "Email ou senha inválidos.")
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		httpx.Problem(w, http.StatusInternalServerError, "Erro interno", "")
		return
	}
	sess.SetUser(user.ID.String())

	expiresAt := time.Now().Add(h.sessionManager.TTL())
	if err := h.service.RegisterSession(r.Context(), sess.ID, user.ID, expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
		h.logger.Warn("register session", slog.Any("error", err))
	}

	token, _ := h.csrfManager.EnsureToken(r.Context(), sess)
	httpx.JSON(w, http.StatusOK, sessionResponse{
		ID:        user.ID.String(),
		Nome:      user.Nome,
		Email:     user.Email,
		Papel:     string(user.Papel),
		CSRFToken: token,
	})
}

type registerRequest struct {
	Nome     string `json:"nome" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"senha" validate:"required,min=8"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Dados inválidos", "corpo JSON inválido")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Dados inválidos", "nome, email e senha (mínimo 8 caracteres) são obrigatórios")
		return
	}

	user, err := h.service.Register(r.Context(), RegisterInput{Nome: req.Nome, Email: req.Email, Password: req.Password})
	if err != nil {
		h.logger.Warn("register user", slog.Any("error", err))
		httpx.Problem(w, http.StatusConflict, "Cadastro não realizado", "Este email já está cadastrado.")
		return
	}
	httpx.JSON(w, http.StatusCreated, sessionResponse{
		ID:    user.ID.String(),
		Nome:  user.Nome,
		Email: user.Email,
		Papel: string(user.Papel),
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
		h.sessionManager.Destroy(sess)
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleMe returns the signed-in user, or 401 when the session is anonymous.
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	raw, ok := shared.CurrentUserID(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Não autenticado", "")
		return
	}
	user, err := h.lookup(r, raw)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	token, _ := h.csrfManager.EnsureToken(r.Context(), sess)
	httpx.JSON(w, http.StatusOK, sessionResponse{
		ID:        user.ID.String(),
		Nome:      user.Nome,
		Email:     user.Email,
		Papel:     string(user.Papel),
		CSRFToken: token,
	})
}

func (h *Handler) lookup(r *http.Request, raw string) (users.User, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return users.User{}, shared.ErrUnauthenticated
	}
	return h.service.users.Get(r.Context(), id)
}
