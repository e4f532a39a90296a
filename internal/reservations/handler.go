package reservations

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/condofacil/condofacil/internal/platform/httpx"
	"github.com/condofacil/condofacil/internal/shared"
)

// Handler exposes the reservation endpoints of one condominium.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers reservation routes under a condominium scope.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/minhas", h.listMine)
	r.Get("/disponibilidade", h.availability)
	r.Put("/{id}/aprovar", h.approve)
	r.Put("/{id}/rejeitar", h.reject)
	r.Delete("/{id}", h.cancel)
}

type reservationResponse struct {
	ID             string `json:"id"`
	Local          string `json:"local"`
	LocalNome      string `json:"localNome"`
	DataCompleta   string `json:"dataCompleta"`
	UsuarioID      string `json:"usuarioId"`
	Status         string `json:"status"`
	DataCriacao    string `json:"dataCriacao"`
	AprovadoPor    string `json:"aprovadoPor,omitempty"`
	RejeitadoPor   string `json:"rejeitadoPor,omitempty"`
	MotivoRejeicao string `json:"motivoRejeicao,omitempty"`
	DecididoEm     string `json:"decididoEm,omitempty"`
}

func toResponse(res Reservation) reservationResponse {
	out := reservationResponse{
		ID:             res.ID.String(),
		Local:          res.Local,
		LocalNome:      AreaDisplayName(res.Local),
		DataCompleta:   res.DataCompleta,
		UsuarioID:      res.UsuarioID.String(),
		Status:         string(res.Status),
		DataCriacao:    res.DataCriacao.Format("2006-01-02T15:04:05Z07:00"),
		AprovadoPor:    res.AprovadoPor,
		RejeitadoPor:   res.RejeitadoPor,
		MotivoRejeicao: res.MotivoRejeicao,
	}
	if !res.DecididoEm.IsZero() {
		out.DecididoEm = res.DecididoEm.Format("2006-01-02T15:04:05Z07:00")
	}
	return out
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
	list, err := h.service.ListAll(r.Context(), condoID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out := make([]reservationResponse, len(list))
	for i, res := range list {
		out[i] = toResponse(res)
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	condoID, ok := condoParam(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Dados inválidos", "condomínio inválido")
		return
	}
	list, err := h.service.ListMine(r.Context(), condoID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out := make([]reservationResponse, len(list))
	for i, res := range list {
		out[i] = toResponse(res)
	}
	httpx.JSON(w, http.StatusOK, out)
}

type createRequest struct {
	Local        string `json:"local" validate:"required"`
	DataCompleta string `json:"dataCompleta" validate:"required"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	condoID, ok := condoParam(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Dados inválidos", "condomínio inválido")
		return
	}
	actor, ok := shared.CurrentUserID(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	userID, err := uuid.Parse(actor)
	if err != nil {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Dados inválidos", "corpo JSON inválido")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Dados inválidos", "local e dataCompleta são obrigatórios")
		return
	}
	res, err := h.service.Create(r.Context(), condoID, CreateInput{
		Local:        req.Local,
		DataCompleta: req.DataCompleta,
		UsuarioID:    userID,
	})
	if err != nil {
		h.logger.Info("create reservation refused", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(res))
}

// availability answers whether a local+slot pair is still free. The UI calls
// it before submitting; the answer is advisory, creation re-checks.
func (h *Handler) availability(w http.ResponseWriter, r *http.Request) {
	condoID, ok := condoParam(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Dados inválidos", "condomínio inválido")
		return
	}
	local := r.URL.Query().Get("local")
	slot := r.URL.Query().Get("dataCompleta")
	if local == "" || slot == "" {
		httpx.Problem(w, http.StatusBadRequest, "Dados inválidos", "local e dataCompleta são obrigatórios")
		return
	}
	var excludeID uuid.UUID
	if raw := r.URL.Query().Get("excluir"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Dados inválidos", "excluir inválido")
			return
		}
		excludeID = id
	}
	conflict, err := h.service.HasConflict(r.Context(), condoID, local, slot, excludeID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"disponivel": !conflict})
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
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
	res, err := h.service.Approve(r.Context(), condoID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(res))
}

type rejectRequest struct {
	Motivo string `json:"motivo" validate:"required"`
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
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
	var req rejectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Dados inválidos", "corpo JSON inválido")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Dados inválidos", "motivo é obrigatório")
		return
	}
	res, err := h.service.Reject(r.Context(), condoID, id, req.Motivo)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(res))
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
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
	if err := h.service.Cancel(r.Context(), condoID, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
