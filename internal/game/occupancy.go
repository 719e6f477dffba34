package game

import (
	"fmt"
	"slices"

	"github.com/rs/zerolog"
)

// OccupancyTracker records which squads sit at which node. A squad is listed
// at no more than one node at a time.
type OccupancyTracker struct {
	net       *Network
	occupants map[NodeID][]SquadID
	location  map[SquadID]NodeID
	log       zerolog.Logger
}

// NewOccupancyTracker returns an empty tracker over nw.
func NewOccupancyTracker(nw *Network) *OccupancyTracker {
	return &OccupancyTracker{
		net:       nw,
		occupants: make(map[NodeID][]SquadID),
		location:  make(map[SquadID]NodeID),
		log:       zerolog.Nop(),
	}
}

// OnArrival appends squad to the node's occupant list. A squad still listed
// elsewhere is detached from that node first.
func (ot *OccupancyTracker) OnArrival(node NodeID, squad SquadID) error {
	if !ot.net.Has(node) {
		return fmt.Errorf("arrival of %s at %d: %w", squad, node, ErrNotFound)
	}
	if prev, ok := ot.location[squad]; ok {
		if prev == node {
			return nil
		}
		ot.OnDeparture(prev, squad)
	}
	ot.occupants[node] = append(ot.occupants[node], squad)
	ot.location[squad] = node
	return nil
}

// OnDeparture removes squad from the node's occupant list. Departing a node
// the squad is not listed at is a no-op.
func (ot *OccupancyTracker) OnDeparture(node NodeID, squad SquadID) {
	list := ot.occupants[node]
	i := slices.Index(list, squad)
	if i < 0 {
		return
	}
	list = slices.Delete(list, i, i+1)
	if len(list) == 0 {
		delete(ot.occupants, node)
	} else {
		ot.occupants[node] = list
	}
	if ot.location[squad] == node {
		delete(ot.location, squad)
	}
}

// ContainsSquad reports whether squad is listed at node.
func (ot *OccupancyTracker) ContainsSquad(node NodeID, squad SquadID) bool {
	return slices.Contains(ot.occupants[node], squad)
}

// OccupantCount returns how many squads are listed at node.
func (ot *OccupancyTracker) OccupantCount(node NodeID) int {
	return len(ot.occupants[node])
}

// Occupants returns a copy of the node's occupant list in arrival order.
func (ot *OccupancyTracker) Occupants(node NodeID) []SquadID {
	return slices.Clone(ot.occupants[node])
}

// Locate returns the node a squad is listed at.
func (ot *OccupancyTracker) Locate(squad SquadID) (NodeID, bool) {
	n, ok := ot.location[squad]
	return n, ok
}

// Node returns the network node with its current occupants filled in.
func (ot *OccupancyTracker) Node(id NodeID) (Node, error) {
	n, err := ot.net.NodeByID(id)
	if err != nil {
		return Node{}, err
	}
	n.Occupants = ot.Occupants(id)
	return n, nil
}

// arrive records a resolver arrival. Arrivals at unknown nodes are dropped.
func (ot *OccupancyTracker) arrive(ev MovementEvent) {
	if err := ot.OnArrival(ev.Node, ev.Squad); err != nil {
		ot.log.Debug().Err(err).Int("tick", ev.Tick).Msg("Arrival not recorded")
	}
}

// Housing is anything that can hold squads: a single network node or a
// building with one or more entry nodes.
type Housing interface {
	ContainsSquad(squad SquadID) bool
	ContainsNode(node NodeID) bool
	NodeIDs() []NodeID
	HandleArrival(ev MovementEvent)
	HandleDeparture(ev MovementEvent)
}

// NodeHousing is the housing formed by one bare network node.
type NodeHousing struct {
	id      NodeID
	tracker *OccupancyTracker
}

func (h *NodeHousing) ContainsSquad(squad SquadID) bool { return h.tracker.ContainsSquad(h.id, squad) }
func (h *NodeHousing) ContainsNode(node NodeID) bool    { return node == h.id }
func (h *NodeHousing) NodeIDs() []NodeID                { return []NodeID{h.id} }

func (h *NodeHousing) HandleArrival(ev MovementEvent) {
	if ev.Node == h.id {
		h.tracker.arrive(ev)
	}
}

func (h *NodeHousing) HandleDeparture(ev MovementEvent) {
	if ev.Node == h.id {
		h.tracker.OnDeparture(ev.Node, ev.Squad)
	}
}

// BuildingHousing houses squads at any of a building's entry nodes.
type BuildingHousing struct {
	building *Building
	tracker  *OccupancyTracker
}

// Building returns the building this housing wraps.
func (h *BuildingHousing) Building() *Building { return h.building }

func (h *BuildingHousing) ContainsSquad(squad SquadID) bool {
	for _, n := range h.building.Entries {
		if h.tracker.ContainsSquad(n, squad) {
			return true
		}
	}
	return false
}

func (h *BuildingHousing) ContainsNode(node NodeID) bool {
	return slices.Contains(h.building.Entries, node)
}

func (h *BuildingHousing) NodeIDs() []NodeID { return slices.Clone(h.building.Entries) }

func (h *BuildingHousing) HandleArrival(ev MovementEvent) {
	if h.ContainsNode(ev.Node) {
		h.tracker.arrive(ev)
	}
}

func (h *BuildingHousing) HandleDeparture(ev MovementEvent) {
	if h.ContainsNode(ev.Node) {
		h.tracker.OnDeparture(ev.Node, ev.Squad)
	}
}

// Squads lists every squad inside the building, entry node by entry node.
func (h *BuildingHousing) Squads() []SquadID {
	var out []SquadID
	for _, n := range h.building.Entries {
		out = append(out, h.tracker.occupants[n]...)
	}
	return out
}
