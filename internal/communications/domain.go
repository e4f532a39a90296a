package communications

import (
	"time"

	"github.com/google/uuid"
)

// Tipo classifies an announcement for display ordering and styling.
type Tipo string

const (
	TipoAviso      Tipo = "aviso"
	TipoUrgente    Tipo = "urgente"
	TipoManutencao Tipo = "manutencao"
	TipoEvento     Tipo = "evento"
)

// Valid reports whether the value belongs to the known set.
func (t Tipo) Valid() bool {
	switch t {
	case TipoAviso, TipoUrgente, TipoManutencao, TipoEvento:
		return true
	}
	return false
}

// Communication is an announcement from the administration to residents.
type Communication struct {
	ID          uuid.UUID
	CondoID     uuid.UUID
	Titulo      string
	Mensagem    string
	Tipo        Tipo
	AutorID     uuid.UUID
	AutorNome   string
	DataCriacao time.Time
}
