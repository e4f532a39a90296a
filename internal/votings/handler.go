package votings

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/condofacil/condofacil/internal/platform/httpx"
)

// Handler exposes the voting endpoints of one condominium.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers voting routes under a condominium scope.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Post("/{id}/votos", h.vote)
	r.Get("/{id}/resultados", h.results)
	r.Put("/{id}/encerrar", h.closeVoting)
}

type votingResponse struct {
	ID          string   `json:"id"`
	Titulo      string   `json:"titulo"`
	Descricao   string   `json:"descricao,omitempty"`
	Tipo        string   `json:"tipo"`
	Opcoes      []string `json:"opcoes"`
	DataFim     string   `json:"dataFim"`
	Status      string   `json:"status"`
	DataCriacao string   `json:"dataCriacao"`
}

func toResponse(v Voting) votingResponse {
	return votingResponse{
		ID:          v.ID.String(),
		Titulo:      v.Titulo,
		Descricao:   v.Descricao,
		Tipo:        string(v.Tipo),
		Opcoes:      v.Opcoes,
		DataFim:     v.DataFim.Format("2006-01-02T15:04:05Z07:00"),
		Status:      string(v.Status),
		DataCriacao: v.DataCriacao.Format("2006-01-02T15:04:05Z07:00"),
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
	list, err := h.service.List(r.Context(), condoID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out := make([]votingResponse, len(list))
	for i, v := range list {
		out[i] = toResponse(v)
	}
	httpx.JSON(w, http.StatusOK, out)
}

type createRequest struct {
	Titulo    string   `json:"titulo" validate:"required"`
	Descricao string   `json:"descricao"`
	Tipo      string   `json:"tipo" validate:"required,oneof=sim-nao multipla-escolha"`
	Opcoes    []string `json:"opcoes"`
	DataFim   string   `json:"dataFim" validate:"required"`
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
		httpx.Problem(w, http.StatusBadRequest, "Dados inválidos", "titulo, tipo e dataFim são obrigatórios")
		return
	}
	fim, err := time.Parse(time.RFC3339, req.DataFim)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Dados inválidos", "dataFim fora do formato esperado")
		return
	}
	v, err := h.service.Create(r.Context(), condoID, CreateInput{
		Titulo:    req.Titulo,
		Descricao: req.Descricao,
		Tipo:      Tipo(req.Tipo),
		Opcoes:    req.Opcoes,
		DataFim:   fim,
	})
	if err != nil {
		h.logger.Info("create voting refused", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(v))
}

type voteRequest struct {
	Opcao string `json:"opcao" validate:"required"`
}

func (h *Handler) vote(w http.ResponseWriter, r *http.Request) {
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
	var req voteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Dados inválidos", "corpo JSON inválido")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Dados inválidos", "opcao é obrigatória")
		return
	}
	if err := h.service.Vote(r.Context(), condoID, id, req.Opcao); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) results(w http.ResponseWriter, r *http.Request) {
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
	results, err := h.service.ResultsFor(r.Context(), condoID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"total":     results.Total,
		"porOpcao":  results.PorOpcao,
		"encerrada": results.Encerrada,
	})
}

func (h *Handler) closeVoting(w http.ResponseWriter, r *http.Request) {
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
	if err := h.service.Close(r.Context(), condoID, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
