package game

import (
	"fmt"
	"math"
)

const (
	// DefaultUnitSpeed is how far a moving squad travels per tick.
	DefaultUnitSpeed = 0.01
	// DefaultArrivalThreshold is the distance at which a squad counts as
	// being at a node.
	DefaultArrivalThreshold = 0.01
)

// MovementEventKind distinguishes departures from arrivals.
type MovementEventKind uint8

const (
	SquadDeparted MovementEventKind = iota
	SquadArrived
)

func (k MovementEventKind) String() string {
	switch k {
	case SquadDeparted:
		return "departed"
	case SquadArrived:
		return "arrived"
	default:
		return "unknown"
	}
}

// MovementEvent is emitted by a resolver when a squad leaves its start node
// or reaches its destination.
type MovementEvent struct {
	Kind  MovementEventKind
	Node  NodeID
	Squad SquadID
	Tick  int
}

// MovementListener consumes resolver events after the housing at the event's
// node has applied them.
type MovementListener interface {
	HandleMovement(ev MovementEvent)
}

// ResolverState is the lifecycle of a MovementResolver.
type ResolverState uint8

const (
	ResolverIdle ResolverState = iota
	ResolverTravelling
	ResolverArrived
)

func (s ResolverState) String() string {
	switch s {
	case ResolverIdle:
		return "idle"
	case ResolverTravelling:
		return "travelling"
	case ResolverArrived:
		return "arrived"
	default:
		return "unknown"
	}
}

// MovementResolver walks one squad along a node path, one tick at a time.
type MovementResolver struct {
	squad     SquadID
	path      []NodeID
	waypoints []Vec2
	index     int
	pos       Vec2
	speed     float64
	threshold float64
	state     ResolverState
}

// NewMovementResolver prepares a resolver for order o. The squad starts at
// the position of the first path node.
func NewMovementResolver(nw *Network, o Order, speed, threshold float64) (*MovementResolver, error) {
	if len(o.Path) == 0 {
		return nil, fmt.Errorf("resolver for %s: %w", o.Squad, ErrInvalidOrder)
	}
	if speed <= 0 {
		speed = DefaultUnitSpeed
	}
	if threshold <= 0 {
		threshold = DefaultArrivalThreshold
	}
	wps := make([]Vec2, len(o.Path))
	for i, id := range o.Path {
		p, err := nw.Position(id)
		if err != nil {
			return nil, fmt.Errorf("resolver for %s: %w", o.Squad, err)
		}
		wps[i] = p
	}
	return &MovementResolver{
		squad:     o.Squad,
		path:      o.Path,
		waypoints: wps,
		pos:       wps[0],
		speed:     speed,
		threshold: threshold,
	}, nil
}

func (r *MovementResolver) Squad() SquadID       { return r.squad }
func (r *MovementResolver) Position() Vec2       { return r.pos }
func (r *MovementResolver) State() ResolverState { return r.state }
func (r *MovementResolver) Done() bool           { return r.state == ResolverArrived }

// NextNode is the node the squad is currently heading for.
func (r *MovementResolver) NextNode() NodeID { return r.path[r.index] }

// Tick advances the squad by one step and returns any events it produced.
// The first tick always departs path[0]; the tick that finds the squad
// within threshold of the last node arrives and ends the resolver.
func (r *MovementResolver) Tick() []MovementEvent {
	if r.state == ResolverArrived {
		return nil
	}
	var events []MovementEvent
	if r.state == ResolverIdle {
		events = append(events, MovementEvent{Kind: SquadDeparted, Node: r.path[0], Squad: r.squad})
		r.state = ResolverTravelling
	}

	last := len(r.path) - 1
	dist := r.pos.DistTo(r.waypoints[r.index])
	if r.index < last && dist < r.threshold {
		r.index++
		dist = r.pos.DistTo(r.waypoints[r.index])
	}
	if r.index == last && dist < r.threshold {
		events = append(events, MovementEvent{Kind: SquadArrived, Node: r.path[last], Squad: r.squad})
		r.state = ResolverArrived
		return events
	}

	// The step is clamped so the squad lands on the node, never past it.
	dir := r.waypoints[r.index].Sub(r.pos).Unit()
	r.pos = r.pos.Add(dir.Scale(math.Min(r.speed, dist)))
	return events
}
