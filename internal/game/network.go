package game

import (
	"fmt"
	"slices"
)

// NodeID identifies a node in the supply network. Ids are dense: a network
// with N nodes holds exactly the ids 0..N-1.
type NodeID int

// Node is a point of the supply network. Occupants are owned by the
// OccupancyTracker; the copy returned by NodeByID is a snapshot.
type Node struct {
	ID        NodeID
	Position  Vec2
	Occupants []SquadID
}

// NetworkListener is notified after the network grows. Implementations are
// presentation collaborators (scene placement); the network does not depend
// on them observing anything.
type NetworkListener interface {
	NodeCreated(n Node)
	EdgeCreated(a, b Node)
}

// Network is the supply network graph: node positions plus an undirected,
// always-symmetric adjacency relation. Nodes and edges are never removed.
type Network struct {
	positions []Vec2
	adjacency map[NodeID]map[NodeID]struct{}
	listeners []NetworkListener
}

// NewNetwork returns an empty network. Most callers seed it with one node
// straight away, since AddWaypoint needs an anchor.
func NewNetwork() *Network {
	return &Network{
		adjacency: make(map[NodeID]map[NodeID]struct{}),
	}
}

// Subscribe registers a listener for node and edge creation.
func (nw *Network) Subscribe(l NetworkListener) {
	nw.listeners = append(nw.listeners, l)
}

// Len returns the number of nodes.
func (nw *Network) Len() int { return len(nw.positions) }

// CreateNode appends a node at pos. The new id is the current node count.
func (nw *Network) CreateNode(pos Vec2) NodeID {
	id := NodeID(len(nw.positions))
	nw.positions = append(nw.positions, pos)
	n := Node{ID: id, Position: pos}
	for _, l := range nw.listeners {
		l.NodeCreated(n)
	}
	return id
}

// Has reports whether id names an existing node.
func (nw *Network) Has(id NodeID) bool {
	return id >= 0 && int(id) < len(nw.positions)
}

// Position returns the position of node id.
func (nw *Network) Position(id NodeID) (Vec2, error) {
	if !nw.Has(id) {
		return Vec2{}, fmt.Errorf("node %d: %w", id, ErrNotFound)
	}
	return nw.positions[id], nil
}

// NodeByID returns the node with the given id (occupants are not filled in;
// use OccupancyTracker.Node for that).
func (nw *Network) NodeByID(id NodeID) (Node, error) {
	pos, err := nw.Position(id)
	if err != nil {
		return Node{}, err
	}
	return Node{ID: id, Position: pos}, nil
}

// Connect adds the undirected edge a-b. It is idempotent: connecting an
// existing edge is a no-op and notifies nobody. Self-loops are ignored.
func (nw *Network) Connect(a, b NodeID) error {
	if !nw.Has(a) {
		return fmt.Errorf("connect %d-%d: node %d: %w", a, b, a, ErrNotFound)
	}
	if !nw.Has(b) {
		return fmt.Errorf("connect %d-%d: node %d: %w", a, b, b, ErrNotFound)
	}
	if a == b {
		return nil
	}
	added := nw.link(a, b)
	// Both directions are written every time so a half-written pair heals.
	added = nw.link(b, a) || added
	if added {
		na := Node{ID: a, Position: nw.positions[a]}
		nb := Node{ID: b, Position: nw.positions[b]}
		for _, l := range nw.listeners {
			l.EdgeCreated(na, nb)
		}
	}
	return nil
}

func (nw *Network) link(from, to NodeID) bool {
	set, ok := nw.adjacency[from]
	if !ok {
		set = make(map[NodeID]struct{})
		nw.adjacency[from] = set
	}
	if _, ok := set[to]; ok {
		return false
	}
	set[to] = struct{}{}
	return true
}

// Connected reports whether the edge a-b exists.
func (nw *Network) Connected(a, b NodeID) bool {
	_, ok := nw.adjacency[a][b]
	return ok
}

// AdjacentIDs returns the neighbours of id in ascending id order.
func (nw *Network) AdjacentIDs(id NodeID) ([]NodeID, error) {
	if !nw.Has(id) {
		return nil, fmt.Errorf("adjacent of %d: %w", id, ErrNotFound)
	}
	return nw.neighbours(id), nil
}

func (nw *Network) neighbours(id NodeID) []NodeID {
	set := nw.adjacency[id]
	out := make([]NodeID, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Nodes returns every node in id order.
func (nw *Network) Nodes() []Node {
	out := make([]Node, len(nw.positions))
	for i, p := range nw.positions {
		out[i] = Node{ID: NodeID(i), Position: p}
	}
	return out
}

// Edge is an undirected connection, normalised so that A < B.
type Edge struct {
	A, B NodeID
}

// Edges returns every edge once, sorted by (A, B).
func (nw *Network) Edges() []Edge {
	var out []Edge
	for a := range nw.positions {
		for _, b := range nw.neighbours(NodeID(a)) {
			if NodeID(a) < b {
				out = append(out, Edge{A: NodeID(a), B: b})
			}
		}
	}
	return out
}
