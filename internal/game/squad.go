package game

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// SquadID is the GUID identifying a squad.
type SquadID = uuid.UUID

// SquadKind is the squad's role.
type SquadKind uint8

const (
	SquadRifle SquadKind = iota
	SquadAssault
	SquadMarksman
)

func (k SquadKind) String() string {
	switch k {
	case SquadRifle:
		return "rifle"
	case SquadAssault:
		return "assault"
	case SquadMarksman:
		return "marksman"
	default:
		return "unknown"
	}
}

// DisplayName is the label shown next to a squad marker.
func (k SquadKind) DisplayName() string {
	switch k {
	case SquadRifle:
		return "Rifle Squad"
	case SquadAssault:
		return "Assault Squad"
	case SquadMarksman:
		return "Marksman Squad"
	default:
		return "unspecified squad type!"
	}
}

// ParseSquadKind maps a config name ("rifle", "assault", "marksman") to a kind.
func ParseSquadKind(s string) (SquadKind, error) {
	for _, k := range []SquadKind{SquadRifle, SquadAssault, SquadMarksman} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("squad kind %q: %w", s, ErrNotFound)
}

// Squad is immutable once created.
type Squad struct {
	ID   SquadID
	Kind SquadKind
}

// NewSquad returns a squad with a fresh random id.
func NewSquad(kind SquadKind) Squad {
	return Squad{ID: uuid.New(), Kind: kind}
}

// Label is a short, stable handle for logs: kind initial plus the first
// eight hex digits of the id.
func (s Squad) Label() string {
	initial := "?"
	if name := s.Kind.String(); name != "unknown" {
		initial = strings.ToUpper(name[:1])
	}
	return initial + "-" + s.ID.String()[:8]
}

// Army is the player's roster.
type Army struct {
	squads []Squad
}

// NewArmy creates one squad per kind, in order.
func NewArmy(kinds ...SquadKind) *Army {
	a := &Army{squads: make([]Squad, 0, len(kinds))}
	for _, k := range kinds {
		a.squads = append(a.squads, NewSquad(k))
	}
	return a
}

// DefaultArmy is the starting roster: one rifle, one assault and one
// marksman squad.
func DefaultArmy() *Army {
	return NewArmy(SquadRifle, SquadAssault, SquadMarksman)
}

// Add appends an existing squad (used when ids must be fixed, e.g. in tests).
func (a *Army) Add(s Squad) {
	a.squads = append(a.squads, s)
}

// Squads returns the roster in creation order.
func (a *Army) Squads() []Squad {
	out := make([]Squad, len(a.squads))
	copy(out, a.squads)
	return out
}

// Squad looks up a squad by id.
func (a *Army) Squad(id SquadID) (Squad, error) {
	for _, s := range a.squads {
		if s.ID == id {
			return s, nil
		}
	}
	return Squad{}, fmt.Errorf("squad %s: %w", id, ErrNotFound)
}

// Label returns the squad's log label, or the raw id if it is not in the
// roster.
func (a *Army) Label(id SquadID) string {
	if s, err := a.Squad(id); err == nil {
		return s.Label()
	}
	return id.String()[:8]
}
