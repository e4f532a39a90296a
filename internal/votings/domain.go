package votings

import (
	"time"

	"github.com/google/uuid"
)

// Tipo selects the ballot shape.
type Tipo string

const (
	// TipoSimNao gets the fixed Sim/Não option pair.
	TipoSimNao Tipo = "sim-nao"
	// TipoMultiplaEscolha carries caller-defined options.
	TipoMultiplaEscolha Tipo = "multipla-escolha"
)

// Valid reports whether the value belongs to the known set.
func (t Tipo) Valid() bool {
	return t == TipoSimNao || t == TipoMultiplaEscolha
}

// Status tracks the voting lifecycle.
type Status string

const (
	StatusAtiva     Status = "ativa"
	StatusEncerrada Status = "encerrada"
)

// Voting is a poll among residents.
type Voting struct {
	ID          uuid.UUID
	CondoID     uuid.UUID
	Titulo      string
	Descricao   string
	Tipo        Tipo
	Opcoes      []string
	DataFim     time.Time
	Status      Status
	CriadoPor   uuid.UUID
	DataCriacao time.Time
}

// Aberta reports whether ballots are still accepted at the reference instant.
func (v Voting) Aberta(now time.Time) bool {
	return v.Status == StatusAtiva && now.Before(v.DataFim)
}

// HasOption reports whether the option belongs to the ballot.
func (v Voting) HasOption(opcao string) bool {
	for _, o := range v.Opcoes {
		if o == opcao {
			return true
		}
	}
	return false
}

// Results aggregates ballots per option.
type Results struct {
	Total     int
	PorOpcao  map[string]int
	Encerrada bool
}
