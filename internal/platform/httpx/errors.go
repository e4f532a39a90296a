package httpx

import (
	"errors"
	"net/http"

	"github.com/condofacil/condofacil/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	var denied *shared.DeniedError
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Não encontrado", err.Error())
	case errors.Is(err, shared.ErrConflict):
		Problem(w, http.StatusConflict, "Conflito de reserva", "Já existe uma reserva para este local e horário. Escolha outra data ou horário.")
	case errors.As(err, &denied):
		Problem(w, http.StatusForbidden, "Acesso negado", denied.Message)
	case errors.Is(err, shared.ErrPermissionDenied):
		Problem(w, http.StatusForbidden, "Acesso negado", "")
	case errors.Is(err, shared.ErrUnauthenticated), errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusUnauthorized, "Não autenticado", "")
	case errors.Is(err, shared.ErrInvalidInput):
		Problem(w, http.StatusBadRequest, "Dados inválidos", err.Error())
	case errors.Is(err, shared.ErrCSRFTokenMissing), errors.Is(err, shared.ErrCSRFTokenMismatch):
		Problem(w, http.StatusForbidden, "Token CSRF inválido", "")
	default:
		Problem(w, http.StatusInternalServerError, "Erro interno", "Tente novamente em instantes.")
	}
}
