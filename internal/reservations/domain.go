package reservations

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/condofacil/condofacil/internal/shared"
)

// Status tracks the reservation lifecycle. pendente is the only non-terminal
// state; aprovada, rejeitada and cancelada admit no further transitions.
type Status string

const (
	// StatusPendente is the initial state of every reservation.
	StatusPendente Status = "pendente"
	// StatusAprovada means an administrator accepted the request.
	StatusAprovada Status = "aprovada"
	// StatusRejeitada means an administrator refused the request.
	StatusRejeitada Status = "rejeitada"
	// StatusCancelada means the requester withdrew while still pending.
	StatusCancelada Status = "cancelada"
)

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool { return s != StatusPendente }

// Blocking reports whether the reservation occupies its slot for conflict
// purposes. Rejected and cancelled reservations never block.
func (s Status) Blocking() bool { return s == StatusPendente || s == StatusAprovada }

// DefaultAreas lists the shared amenities available for booking. Condominium
// settings may narrow this list but never extend it.
var DefaultAreas = []string{
	"salao-festas",
	"churrasqueira",
	"quadra",
	"piscina",
	"academia",
	"salao-jogos",
}

var areaNames = map[string]string{
	"salao-festas":  "Salão de Festas",
	"churrasqueira": "Churrasqueira",
	"quadra":        "Quadra Esportiva",
	"piscina":       "Piscina",
	"academia":      "Academia",
	"salao-jogos":   "Salão de Jogos",
}

// AreaDisplayName resolves a location id to its display name, degrading to
// the raw id for unknown areas.
func AreaDisplayName(local string) string {
	if name, ok := areaNames[local]; ok {
		return name
	}
	return local
}

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// CanonicalArea maps user supplied location names onto area ids. Display
// names ("Salão de Festas") and ids ("salao-festas") both resolve; anything
// else comes back unchanged for the validator to refuse.
func CanonicalArea(local string) string {
	slug := strings.TrimSpace(strings.ToLower(local))
	if plain, _, err := transform.String(stripAccents, slug); err == nil {
		slug = plain
	}
	slug = strings.ReplaceAll(slug, " ", "-")
	if _, ok := areaNames[slug]; ok {
		return slug
	}
	for id, name := range areaNames {
		flat, _, err := transform.String(stripAccents, strings.ToLower(name))
		if err != nil {
			continue
		}
		if strings.ReplaceAll(flat, " ", "-") == slug {
			return id
		}
	}
	return strings.TrimSpace(local)
}

// slotLayout is the single canonical slot representation: a combined
// date-time string without zone. Slots collide iff the strings are equal;
// no timezone conversion is ever applied to a slot (callers normalise).
const slotLayout = "2006-01-02T15:04"

// ErrInvalidSlot indicates a slot outside the canonical representation.
var ErrInvalidSlot = fmt.Errorf("%w: horário fora do formato AAAA-MM-DDTHH:MM", shared.ErrInvalidInput)

// ErrInvalidArea indicates a location outside the allowed area set.
var ErrInvalidArea = fmt.Errorf("%w: local não disponível para reserva", shared.ErrInvalidInput)

// ValidateSlot checks the canonical shape without altering the value.
func ValidateSlot(slot string) error {
	if _, err := time.Parse(slotLayout, slot); err != nil {
		return ErrInvalidSlot
	}
	return nil
}

// SlotTime parses the slot in the given zone for window checks only. The
// stored value and the collision comparison always use the verbatim string.
func SlotTime(slot string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(slotLayout, slot, loc)
	if err != nil {
		return time.Time{}, ErrInvalidSlot
	}
	return t, nil
}

// Reservation represents a booking of one shared amenity at one exact slot.
type Reservation struct {
	ID             uuid.UUID
	CondoID        uuid.UUID
	Local          string
	DataCompleta   string
	UsuarioID      uuid.UUID
	Status         Status
	DataCriacao    time.Time
	AprovadoPor    string
	RejeitadoPor   string
	MotivoRejeicao string
	DecididoEm     time.Time
}
