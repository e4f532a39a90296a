package accounts

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Tipo separates money coming in from money going out.
type Tipo string

const (
	TipoReceita Tipo = "receita"
	TipoDespesa Tipo = "despesa"
)

// Valid reports whether the value belongs to the known set.
func (t Tipo) Valid() bool {
	return t == TipoReceita || t == TipoDespesa
}

// Category lists are fixed per entry type; custom categories are not
// accepted.
var (
	categoriasReceita = []string{
		"taxa-condominio",
		"fundo-reserva",
		"multa",
		"aluguel-espaco",
		"outros",
	}
	categoriasDespesa = []string{
		"manutencao",
		"limpeza",
		"seguranca",
		"agua",
		"energia",
		"funcionarios",
		"administrativa",
		"outros",
	}
)

// Categorias returns the allowed category list for the type.
func Categorias(tipo Tipo) []string {
	switch tipo {
	case TipoReceita:
		return slices.Clone(categoriasReceita)
	case TipoDespesa:
		return slices.Clone(categoriasDespesa)
	}
	return nil
}

// ValidCategoria reports whether the category belongs to the type's list.
func ValidCategoria(tipo Tipo, categoria string) bool {
	switch tipo {
	case TipoReceita:
		return slices.Contains(categoriasReceita, categoria)
	case TipoDespesa:
		return slices.Contains(categoriasDespesa, categoria)
	}
	return false
}

// Entry is one ledger line of the condominium finances.
type Entry struct {
	ID          uuid.UUID
	CondoID     uuid.UUID
	Tipo        Tipo
	Categoria   string
	Descricao   string
	Valor       float64
	Data        time.Time
	CriadoPor   uuid.UUID
	DataCriacao time.Time
}

// Summary aggregates a period of the ledger.
type Summary struct {
	TotalReceitas float64
	TotalDespesas float64
	Saldo         float64
	PorCategoria  map[string]float64
}
