package game

import (
	"fmt"
	"strings"
)

// Report renders a plain-text snapshot of the simulation: phase, network,
// buildings, pending orders and squads on the move.
func (s *Simulation) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- Supply network report ---\n")
	fmt.Fprintf(&b, "tick=%d mode=%s input=%s nodes=%d edges=%d pending_orders=%d moving=%d\n\n",
		s.tick, s.mode, s.Input.State(), s.Network.Len(), len(s.Network.Edges()), s.Orders.Len(), len(s.resolvers))

	b.WriteString("== nodes ==\n")
	for _, n := range s.Network.Nodes() {
		adj := s.Network.neighbours(n.ID)
		fmt.Fprintf(&b, "%4d %-18s adj=%v", n.ID, n.Position, adj)
		if occ := s.Occupancy.Occupants(n.ID); len(occ) > 0 {
			labels := make([]string, len(occ))
			for i, id := range occ {
				labels[i] = s.Army.Label(id)
			}
			fmt.Fprintf(&b, " squads=[%s]", strings.Join(labels, ", "))
		}
		b.WriteByte('\n')
	}

	if len(s.buildings) > 0 {
		b.WriteString("\n== buildings ==\n")
		for _, bl := range s.buildings {
			h := s.byEntry[firstOr(bl.Entries, -1)]
			count := 0
			if h != nil {
				count = len(h.Squads())
			}
			fmt.Fprintf(&b, "%-12s origin=%s entries=%v squads=%d\n", bl.Name, bl.Origin, bl.Entries, count)
		}
	}

	if pending := s.Orders.Pending(); len(pending) > 0 {
		b.WriteString("\n== pending orders ==\n")
		for _, o := range pending {
			fmt.Fprintf(&b, "%-10s %s path=%v cost=%d %s -> %s\n",
				s.Army.Label(o.Squad), o.Command, o.Path, s.Network.PathCost(o.Path), o.StartPosition, o.EndPosition)
		}
	}

	if len(s.resolvers) > 0 {
		b.WriteString("\n== moving ==\n")
		for _, r := range s.resolvers {
			fmt.Fprintf(&b, "%-10s %s at %s next=%d\n", s.Army.Label(r.Squad()), r.State(), r.Position(), r.NextNode())
		}
	}
	return b.String()
}

func firstOr(ids []NodeID, fallback NodeID) NodeID {
	if len(ids) == 0 {
		return fallback
	}
	return ids[0]
}
