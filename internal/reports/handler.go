package reports

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/condofacil/condofacil/internal/platform/httpx"
)

// Handler exposes consolidated report endpoints of one condominium.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers report routes under a condominium scope.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.overview)
	r.Get("/exportar", h.exportCSV)
	r.Get("/pdf", h.exportPDF)
}

func condoParam(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "condoID"))
	return id, err == nil
}

func (h *Handler) overview(w http.ResponseWriter, r *http.Request) {
	condoID, ok := condoParam(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Dados inválidos", "condomínio inválido")
		return
	}
	overview, err := h.service.OverviewFor(r.Context(), condoID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, overview)
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	condoID, ok := condoParam(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Dados inválidos", "condomínio inválido")
		return
	}
	overview, err := h.service.OverviewFor(r.Context(), condoID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="relatorio-%s.csv"`, time.Now().UTC().Format("2006-01-02")))
	if err := WriteOverviewCSV(w, overview); err != nil {
		h.logger.Error("stream overview csv", slog.Any("error", err))
	}
}

func (h *Handler) exportPDF(w http.ResponseWriter, r *http.Request) {
	condoID, ok := condoParam(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Dados inválidos", "condomínio inválido")
		return
	}
	pdf, err := h.service.RenderPDF(r.Context(), condoID)
	if err != nil {
		h.logger.Warn("render report pdf", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="relatorio-%s.pdf"`, time.Now().UTC().Format("2006-01-02")))
	_, _ = w.Write(pdf)
}
