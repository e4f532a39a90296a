package authz

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/condofacil/condofacil/internal/platform/httpx"
)

// Handler exposes the capability table of the signed-in user. The client uses
// it to hide or disable gated elements; the server-side guards remain the real
// boundary.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers authz routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/capabilities", h.currentCapabilities)
}

func (h *Handler) currentCapabilities(w http.ResponseWriter, r *http.Request) {
	table := h.service.CurrentTable(r.Context())
	httpx.JSON(w, http.StatusOK, table)
}
