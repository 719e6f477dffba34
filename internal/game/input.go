package game

import "fmt"

// InputEvent is one discrete UI event. The set of implementations is closed:
// Click, WaypointButtonPressed, ClicksOnSquad, ReleasesMouseDown and
// CommitOrders.
type InputEvent interface {
	fmt.Stringer
	inputEvent()
}

// Click is a plain mouse press on the map.
type Click struct {
	WorldPosition  Vec2
	CameraPosition Vec2
}

// WaypointButtonPressed toggles supply-line definition.
type WaypointButtonPressed struct{}

// ClicksOnSquad is a mouse press on a squad marker; it starts a drag.
type ClicksOnSquad struct {
	Squad         SquadID
	WorldPosition Vec2
}

// ReleasesMouseDown is the mouse release ending a gesture. When the input
// collaborator already resolved what lies under the pointer it sets Target
// and HasTarget; otherwise the state machine picks from WorldPosition.
type ReleasesMouseDown struct {
	WorldPosition Vec2
	Target        NodeID
	HasTarget     bool
}

// CommitOrders is the "go" signal ending the command phase.
type CommitOrders struct{}

func (Click) inputEvent()                 {}
func (WaypointButtonPressed) inputEvent() {}
func (ClicksOnSquad) inputEvent()         {}
func (ReleasesMouseDown) inputEvent()     {}
func (CommitOrders) inputEvent()          {}

func (e Click) String() string               { return "click " + e.WorldPosition.String() }
func (WaypointButtonPressed) String() string { return "waypoint_button" }
func (e ClicksOnSquad) String() string       { return "squad_click " + e.Squad.String()[:8] }
func (CommitOrders) String() string          { return "commit" }

func (e ReleasesMouseDown) String() string {
	if e.HasTarget {
		return fmt.Sprintf("release %s -> node %d", e.WorldPosition, e.Target)
	}
	return "release " + e.WorldPosition.String()
}

// ReleaseOn is a release whose target node is already known.
func ReleaseOn(target NodeID, pos Vec2) ReleasesMouseDown {
	return ReleasesMouseDown{WorldPosition: pos, Target: target, HasTarget: true}
}
