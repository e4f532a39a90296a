package condos

import (
	"time"

	"github.com/google/uuid"
)

// Condo represents a managed condominium. Every reservation, communication,
// reminder, voting, account entry and settings document hangs off one condo.
type Condo struct {
	ID        uuid.UUID
	Nome      string
	Endereco  string
	CreatedAt time.Time
}
