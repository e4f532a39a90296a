package reminders

import (
	"time"

	"github.com/google/uuid"
)

// Tipo classifies a reminder.
type Tipo string

const (
	TipoManutencao Tipo = "manutencao"
	TipoSeguranca  Tipo = "seguranca"
	TipoEvento     Tipo = "evento"
	TipoPagamento  Tipo = "pagamento"
	TipoGeral      Tipo = "geral"
)

// Valid reports whether the value belongs to the known set.
func (t Tipo) Valid() bool {
	switch t {
	case TipoManutencao, TipoSeguranca, TipoEvento, TipoPagamento, TipoGeral:
		return true
	}
	return false
}

// Prioridade orders reminders in listings and notification digests.
type Prioridade string

const (
	PrioridadeAlta  Prioridade = "alta"
	PrioridadeMedia Prioridade = "media"
	PrioridadeBaixa Prioridade = "baixa"
)

// Valid reports whether the value belongs to the known set.
func (p Prioridade) Valid() bool {
	switch p {
	case PrioridadeAlta, PrioridadeMedia, PrioridadeBaixa:
		return true
	}
	return false
}

// Reminder is a dated task or notice for the administration.
type Reminder struct {
	ID             uuid.UUID
	CondoID        uuid.UUID
	Titulo         string
	Descricao      string
	Tipo           Tipo
	Prioridade     Prioridade
	DataVencimento time.Time
	CriadoPor      uuid.UUID
	DataCriacao    time.Time
}

// Ativo reports whether the reminder is still due at the reference instant.
// Past reminders stay listed under a separate heading until deleted.
func (r Reminder) Ativo(now time.Time) bool {
	return !r.DataVencimento.Before(now)
}
