package reminders

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/condofacil/condofacil/internal/platform/httpx"
)

// Handler exposes the reminder endpoints of one condominium.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers reminder routes under a condominium scope.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Delete("/{id}", h.remove)
}

type reminderResponse struct {
	ID             string `json:"id"`
	Titulo         string `json:"titulo"`
	Descricao      string `json:"descricao,omitempty"`
	Tipo           string `json:"tipo"`
	Prioridade     string `json:"prioridade"`
	DataVencimento string `json:"dataVencimento"`
	DataCriacao    string `json:"dataCriacao"`
}

func toResponse(rem Reminder) reminderResponse {
	return reminderResponse{
		ID:             rem.ID.String(),
		Titulo:         rem.Titulo,
		Descricao:      rem.Descricao,
		Tipo:           string(rem.Tipo),
		Prioridade:     string(rem.Prioridade),
		DataVencimento: rem.DataVencimento.Format("2006-01-02T15:04:05Z07:00"),
		DataCriacao:    rem.DataCriacao.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func condoParam(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "condoID"))
	return id, err == nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	condoID, ok := condoParam(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Dados inválidos", "condomínio inválido")
		return
	}
	listing, err := h.service.List(r.Context(), condoID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	ativos := make([]reminderResponse, len(listing.Ativos))
	for i, rem := range listing.Ativos {
		ativos[i] = toResponse(rem)
	}
	passados := make([]reminderResponse, len(listing.Passados))
	for i, rem := range listing.Passados {
		passados[i] = toResponse(rem)
	}
	httpx.JSON(w, http.StatusOK, map[string][]reminderResponse{
		"ativos":   ativos,
		"passados": passados,
	})
}

type createRequest struct {
	Titulo         string `json:"titulo" validate:"required"`
	Descricao      string `json:"descricao"`
	Tipo           string `json:"tipo" validate:"required,oneof=manutencao seguranca evento pagamento geral"`
	Prioridade     string `json:"prioridade" validate:"required,oneof=alta media baixa"`
	DataVencimento string `json:"dataVencimento" validate:"required"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	condoID, ok := condoParam(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Dados inválidos", "condomínio inválido")
		return
	}
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Dados inválidos", "corpo JSON inválido")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Dados inválidos", "titulo, tipo, prioridade e dataVencimento são obrigatórios")
		return
	}
	vencimento, err := time.Parse(time.RFC3339, req.DataVencimento)
	if err != nil {
		vencimento, err = time.Parse("2006-01-02", req.DataVencimento)
	}
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Dados inválidos", "dataVencimento fora do formato esperado")
		return
	}
	rem, err := h.service.Create(r.Context(), condoID, CreateInput{
		Titulo:         req.Titulo,
		Descricao:      req.Descricao,
		Tipo:           Tipo(req.Tipo),
		Prioridade:     Prioridade(req.Prioridade),
		DataVencimento: vencimento,
	})
	if err != nil {
		h.logger.Info("create reminder refused", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(rem))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	condoID, ok := condoParam(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Dados inválidos", "condomínio inválido")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Dados inválidos", "id inválido")
		return
	}
	if err := h.service.Delete(r.Context(), condoID, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
