package communications

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/condofacil/condofacil/internal/platform/httpx"
	"github.com/condofacil/condofacil/internal/shared"
)

// Handler exposes the announcement endpoints of one condominium.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers communication routes under a condominium scope.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.remove)
}

type communicationResponse struct {
	ID          string `json:"id"`
	Titulo      string `json:"titulo"`
	Mensagem    string `json:"mensagem"`
	Tipo        string `json:"tipo"`
	Autor       string `json:"autor"`
	DataCriacao string `json:"dataCriacao"`
}

func toResponse(com Communication) communicationResponse {
	return communicationResponse{
		ID:          com.ID.String(),
		Titulo:      com.Titulo,
		Mensagem:    com.Mensagem,
		Tipo:        string(com.Tipo),
		Autor:       com.AutorNome,
		DataCriacao: com.DataCriacao.Format("2006-01-02T15:04:05Z07:00"),
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
	page, _ := strconv.Atoi(r.URL.Query().Get("pagina"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("porPagina"))
	meta := shared.NewPagination(page, perPage, len(list))
	start, end := meta.Window(len(list))
	out := make([]communicationResponse, 0, end-start)
	for _, com := range list[start:end] {
		out = append(out, toResponse(com))
	}
	httpx.JSON(w, http.StatusOK, listResponse{
		Comunicados: out,
		Pagina:      meta.Page,
		PorPagina:   meta.PerPage,
		Total:       meta.Total,
		Paginas:     meta.TotalPages,
	})
}

type listResponse struct {
	Comunicados []communicationResponse `json:"comunicados"`
	Pagina      int                     `json:"pagina"`
	PorPagina   int                     `json:"porPagina"`
	Total       int                     `json:"total"`
	Paginas     int                     `json:"paginas"`
}

type createRequest struct {
	Titulo   string `json:"titulo" validate:"required"`
	Mensagem string `json:"mensagem" validate:"required"`
	Tipo     string `json:"tipo" validate:"required,oneof=aviso urgente manutencao evento"`
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
		httpx.Problem(w, http.StatusBadRequest, "Dados inválidos", "titulo, mensagem e tipo são obrigatórios")
		return
	}
	com, err := h.service.Create(r.Context(), condoID, CreateInput{
		Titulo:   req.Titulo,
		Mensagem: req.Mensagem,
		Tipo:     Tipo(req.Tipo),
	})
	if err != nil {
		h.logger.Info("create communication refused", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(com))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
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
	com, err := h.service.Get(r.Context(), condoID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(com))
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
