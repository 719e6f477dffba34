package viewer

import "github.com/Garsondee/supply-lines/internal/game"

// flashFrames is how long a freshly created node, edge or arrival stays
// highlighted.
const flashFrames = 45

// overlays collects what the simulation announces through its listener
// interfaces and keeps it around for drawing.
type overlays struct {
	freshNodes map[game.NodeID]int
	freshEdges map[game.Edge]int
	arrivals   map[game.NodeID]int
	orders     map[game.SquadID]game.Order
}

func newOverlays() *overlays {
	return &overlays{
		freshNodes: make(map[game.NodeID]int),
		freshEdges: make(map[game.Edge]int),
		arrivals:   make(map[game.NodeID]int),
		orders:     make(map[game.SquadID]game.Order),
	}
}

func (o *overlays) NodeCreated(n game.Node) { o.freshNodes[n.ID] = flashFrames }

func (o *overlays) EdgeCreated(a, b game.Node) {
	e := game.Edge{A: a.ID, B: b.ID}
	if e.A > e.B {
		e.A, e.B = e.B, e.A
	}
	o.freshEdges[e] = flashFrames
}

func (o *overlays) OrderSubmitted(ord game.Order, pending int) { o.orders[ord.Squad] = ord }

func (o *overlays) OrderWithdrawn(ord game.Order, pending int) {
	if cur, ok := o.orders[ord.Squad]; ok && cur.Target() == ord.Target() {
		delete(o.orders, ord.Squad)
	}
}

func (o *overlays) HandleMovement(ev game.MovementEvent) {
	if ev.Kind == game.SquadArrived {
		o.arrivals[ev.Node] = flashFrames
	}
}

// ModeChanged drops the order previews once they have been committed.
func (o *overlays) ModeChanged(from, to game.GameMode, tick int) {
	if to == game.ModeAction {
		clear(o.orders)
	}
}

// decay counts every flash down by one frame.
func (o *overlays) decay() {
	decayMap(o.freshNodes)
	decayMap(o.freshEdges)
	decayMap(o.arrivals)
}

func decayMap[K comparable](m map[K]int) {
	for k, v := range m {
		if v <= 1 {
			delete(m, k)
			continue
		}
		m[k] = v - 1
	}
}

// flash returns the remaining highlight as a 0..1 fraction.
func flash(frames int) float64 { return float64(frames) / flashFrames }
