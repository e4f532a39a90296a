package accounts

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/condofacil/condofacil/internal/platform/httpx"
)

// Handler exposes the ledger endpoints of one condominium.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers ledger routes under a condominium scope.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.remove)
	r.Get("/resumo", h.summary)
	r.Get("/exportar", h.exportCSV)
	r.Get("/categorias", h.categories)
}

type entryResponse struct {
	ID          string  `json:"id"`
	Tipo        string  `json:"tipo"`
	Categoria   string  `json:"categoria"`
	Descricao   string  `json:"descricao"`
	Valor       float64 `json:"valor"`
	Data        string  `json:"data"`
	DataCriacao string  `json:"dataCriacao"`
}

func toResponse(e Entry) entryResponse {
	return entryResponse{
		ID:          e.ID.String(),
		Tipo:        string(e.Tipo),
		Categoria:   e.Categoria,
		Descricao:   e.Descricao,
		Valor:       e.Valor,
		Data:        e.Data.Format("2006-01-02"),
		DataCriacao: e.DataCriacao.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func condoParam(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "condoID"))
	return id, err == nil
}

// monthParam reads ?mes=AAAA-MM, defaulting to the current month.
func monthParam(r *http.Request) string {
	if mes := r.URL.Query().Get("mes"); mes != "" {
		return mes
	}
	return time.Now().UTC().Format("2006-01")
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	condoID, ok := condoParam(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Dados inválidos", "condomínio inválido")
		return
	}
	from, to, err := MonthPeriod(monthParam(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	entries, err := h.service.ListPeriod(r.Context(), condoID, from, to)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out := make([]entryResponse, len(entries))
	for i, e := range entries {
		out[i] = toResponse(e)
	}
	httpx.JSON(w, http.StatusOK, out)
}

type entryRequest struct {
	Tipo      string  `json:"tipo" validate:"required,oneof=receita despesa"`
	Categoria string  `json:"categoria" validate:"required"`
	Descricao string  `json:"descricao" validate:"required"`
	Valor     float64 `json:"valor" validate:"required,gt=0"`
	Data      string  `json:"data" validate:"required"`
}

func (h *Handler) decodeEntry(r *http.Request) (EntryInput, error) {
	var req entryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return EntryInput{}, fmt.Errorf("corpo JSON inválido")
	}
	if err := h.validator.Struct(req); err != nil {
		return EntryInput{}, fmt.Errorf("tipo, categoria, descricao, valor e data são obrigatórios")
	}
	data, err := time.Parse("2006-01-02", req.Data)
	if err != nil {
		return EntryInput{}, fmt.Errorf("data fora do formato AAAA-MM-DD")
	}
	return EntryInput{
		Tipo:      Tipo(req.Tipo),
		Categoria: req.Categoria,
		Descricao: req.Descricao,
		Valor:     req.Valor,
		Data:      data,
	}, nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	condoID, ok := condoParam(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Dados inválidos", "condomínio inválido")
		return
	}
	input, err := h.decodeEntry(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Dados inválidos", err.Error())
		return
	}
	e, err := h.service.Create(r.Context(), condoID, input)
	if err != nil {
		h.logger.Info("create ledger entry refused", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(e))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
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
	input, err := h.decodeEntry(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Dados inválidos", err.Error())
		return
	}
	e, err := h.service.Update(r.Context(), condoID, id, input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(e))
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

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	condoID, ok := condoParam(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Dados inválidos", "condomínio inválido")
		return
	}
	mes := monthParam(r)
	from, to, err := MonthPeriod(mes)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	summary, err := h.service.SummaryFor(r.Context(), condoID, from, to)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"mes":           mes,
		"totalReceitas": summary.TotalReceitas,
		"totalDespesas": summary.TotalDespesas,
		"saldo":         summary.Saldo,
		"porCategoria":  summary.PorCategoria,
	})
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	condoID, ok := condoParam(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Dados inválidos", "condomínio inválido")
		return
	}
	mes := monthParam(r)
	from, to, err := MonthPeriod(mes)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	entries, err := h.service.ListPeriod(r.Context(), condoID, from, to)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="prestacao-contas-%s.csv"`, mes))
	if err := WriteLedgerCSV(w, mes, entries, Summarize(entries)); err != nil {
		h.logger.Error("stream ledger csv", slog.Any("error", err))
	}
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string][]string{
		"receita": Categorias(TipoReceita),
		"despesa": Categorias(TipoDespesa),
	})
}
