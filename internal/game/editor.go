package game

import (
	"fmt"
	"math"
)

const (
	// DefaultMaxEdgeLength caps the distance between a new waypoint and the
	// node it hangs off.
	DefaultMaxEdgeLength = 0.5
	// DefaultBridgeThreshold is the distance under which a new waypoint is
	// also connected to the second-nearest node.
	DefaultBridgeThreshold = 0.25
)

// Editor grows a Network one waypoint at a time.
type Editor struct {
	net             *Network
	maxEdgeLength   float64
	bridgeThreshold float64
}

// NewEditor wraps nw with the given edge cap and bridge threshold. Zero
// values fall back to the defaults.
func NewEditor(nw *Network, maxEdgeLength, bridgeThreshold float64) *Editor {
	if maxEdgeLength <= 0 {
		maxEdgeLength = DefaultMaxEdgeLength
	}
	if bridgeThreshold <= 0 {
		bridgeThreshold = DefaultBridgeThreshold
	}
	return &Editor{net: nw, maxEdgeLength: maxEdgeLength, bridgeThreshold: bridgeThreshold}
}

// WaypointResult describes what AddWaypoint did.
type WaypointResult struct {
	ID       NodeID
	Position Vec2 // where the node was actually placed
	Anchor   NodeID
	Bridged  bool
	BridgeTo NodeID // only meaningful when Bridged
	Capped   bool   // true when Position differs from the requested target
}

// AddWaypoint places a new node toward target, hanging off the nearest
// existing node. The new node sits at most maxEdgeLength away from that
// anchor, so it is not necessarily at target. If the second-nearest node
// lies within bridgeThreshold of the placed node, it is connected too.
func (e *Editor) AddWaypoint(target Vec2) (WaypointResult, error) {
	nearest := e.net.NearestNodes(target, 2)
	if len(nearest) == 0 {
		return WaypointResult{}, fmt.Errorf("add waypoint at %s: %w", target, ErrEmptyGraph)
	}
	anchor := nearest[0]
	anchorPos := e.net.positions[anchor]

	offset := target.Sub(anchorPos)
	dist := offset.Len()
	step := math.Min(dist, e.maxEdgeLength)
	actual := anchorPos.Add(offset.Unit().Scale(step))

	res := WaypointResult{
		Anchor:   anchor,
		Position: actual,
		Capped:   dist > e.maxEdgeLength,
	}
	res.ID = e.net.CreateNode(actual)
	if err := e.net.Connect(anchor, res.ID); err != nil {
		return res, err
	}

	if len(nearest) > 1 {
		second := nearest[1]
		if e.net.positions[second].DistTo(actual) < e.bridgeThreshold {
			if err := e.net.Connect(second, res.ID); err != nil {
				return res, err
			}
			res.Bridged = true
			res.BridgeTo = second
		}
	}
	return res, nil
}

// RegisterEntryPoints creates one unconnected node per position, with
// sequential ids, and returns them in input order. Buildings call this once
// at level load.
func (e *Editor) RegisterEntryPoints(positions []Vec2) []NodeID {
	ids := make([]NodeID, len(positions))
	for i, p := range positions {
		ids[i] = e.net.CreateNode(p)
	}
	return ids
}
