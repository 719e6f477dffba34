package game

import (
	"errors"
	"fmt"
)

// GameMode is the overall turn phase.
type GameMode uint8

const (
	ModeBlank GameMode = iota
	ModeCommand
	ModeAction
)

func (m GameMode) String() string {
	switch m {
	case ModeBlank:
		return "blank"
	case ModeCommand:
		return "command"
	case ModeAction:
		return "action"
	default:
		return "unknown"
	}
}

// InputState is the gesture sub-state. It only means something while the
// game is in ModeCommand.
type InputState uint8

const (
	InputBlank InputState = iota
	InputDefineSupplyLinesStart
	InputDefineSupplyLine
	InputSquadStartDrag
)

func (s InputState) String() string {
	switch s {
	case InputBlank:
		return "blank"
	case InputDefineSupplyLinesStart:
		return "define_supply_lines_start"
	case InputDefineSupplyLine:
		return "define_supply_line"
	case InputSquadStartDrag:
		return "squad_start_drag"
	default:
		return "unknown"
	}
}

// PreviewEdge is the in-progress supply line drawn while the player places
// waypoints. Valid is owned by the presentation side (it goes false while the
// preview overlaps something it must not cross) and gates waypoint placement.
type PreviewEdge struct {
	Active  bool
	Anchor  NodeID
	Pointer Vec2
	Valid   bool
}

// Geometry returns the preview's start and end points, its heading in
// degrees from +x and its length.
func (p PreviewEdge) Geometry(nw *Network) (start, end Vec2, angle, length float64) {
	start, err := nw.Position(p.Anchor)
	if err != nil {
		return Vec2{}, Vec2{}, 0, 0
	}
	d := p.Pointer.Sub(start)
	return start, p.Pointer, d.Angle(), d.Len()
}

// Picker resolves a world position to a node, standing in for a raycast
// against node and building colliders.
type Picker interface {
	Pick(nw *Network, pos Vec2) (NodeID, bool)
}

// NearestPicker picks the L1-nearest node among those lying within Radius
// (Euclidean) of the release point.
type NearestPicker struct {
	Radius float64
}

func (p NearestPicker) Pick(nw *Network, pos Vec2) (NodeID, bool) {
	for _, id := range nw.NearestNodes(pos, nw.Len()) {
		if nw.positions[id].DistTo(pos) <= p.Radius {
			return id, true
		}
	}
	return 0, false
}

type dragState struct {
	squad SquadID
	from  NodeID
	valid map[NodeID]struct{}
}

// StateMachine turns input events into network edits and orders.
type StateMachine struct {
	sim     *Simulation
	state   InputState
	picker  Picker
	preview PreviewEdge
	drag    *dragState
}

func newStateMachine(sim *Simulation, picker Picker) *StateMachine {
	return &StateMachine{sim: sim, picker: picker}
}

// State returns the current input sub-state.
func (sm *StateMachine) State() InputState { return sm.state }

// Preview returns the current preview edge.
func (sm *StateMachine) Preview() PreviewEdge { return sm.preview }

// SetPreviewValid sets the preview validity flag.
func (sm *StateMachine) SetPreviewValid(valid bool) { sm.preview.Valid = valid }

// TrackPointer moves the free end of the preview edge.
func (sm *StateMachine) TrackPointer(pos Vec2) { sm.preview.Pointer = pos }

// DragSquad returns the squad being dragged, if any.
func (sm *StateMachine) DragSquad() (SquadID, bool) {
	if sm.drag == nil {
		return SquadID{}, false
	}
	return sm.drag.squad, true
}

// ValidDestinations returns the nodes the dragged squad may be dropped on.
func (sm *StateMachine) ValidDestinations() map[NodeID]struct{} {
	if sm.drag == nil {
		return nil
	}
	return sm.drag.valid
}

// HandleEvent applies one input event. On a failed transition the machine
// is already back in InputBlank when the error is returned.
func (sm *StateMachine) HandleEvent(ev InputEvent) error {
	if sm.sim.mode != ModeCommand {
		sm.sim.log.Debug().Str("event", ev.String()).Stringer("mode", sm.sim.mode).Msg("Input ignored outside command mode")
		return nil
	}
	if _, ok := ev.(CommitOrders); ok {
		sm.reset()
		return sm.sim.Commit()
	}

	from := sm.state
	var err error
	switch sm.state {
	case InputBlank:
		err = sm.fromBlank(ev)
	case InputDefineSupplyLinesStart:
		err = sm.fromSupplyLinesStart(ev)
	case InputDefineSupplyLine:
		err = sm.fromSupplyLine(ev)
	case InputSquadStartDrag:
		err = sm.fromSquadDrag(ev)
	default:
		err = fmt.Errorf("input state %d: %w", sm.state, ErrNotFound)
	}
	if err != nil {
		sm.reset()
		sm.sim.record("", CatInput, "rejected", fmt.Sprintf("%s: %v", ev, err), 0)
		sm.sim.log.Debug().Err(err).Str("event", ev.String()).Stringer("from", from).Msg("Input transition aborted")
		return err
	}
	if sm.state != from {
		sm.sim.record("", CatInput, "state", fmt.Sprintf("%s -> %s", from, sm.state), 0)
		sm.sim.log.Debug().Stringer("from", from).Stringer("to", sm.state).Str("event", ev.String()).Msg("Input state changed")
	}
	return nil
}

func (sm *StateMachine) reset() {
	sm.state = InputBlank
	sm.preview.Active = false
	sm.drag = nil
}

func (sm *StateMachine) fromBlank(ev InputEvent) error {
	switch e := ev.(type) {
	case WaypointButtonPressed:
		sm.state = InputDefineSupplyLinesStart
	case ClicksOnSquad:
		return sm.beginDrag(e.Squad)
	case Click, ReleasesMouseDown:
	default:
		return fmt.Errorf("unhandled input event %T", ev)
	}
	return nil
}

func (sm *StateMachine) beginDrag(squad SquadID) error {
	housing, err := sm.sim.HousingOf(squad)
	if err != nil {
		return err
	}
	valid, err := sm.sim.Network.ConnectedSet(housing.NodeIDs()...)
	if err != nil {
		return err
	}
	from, ok := sm.sim.Occupancy.Locate(squad)
	if !ok {
		return fmt.Errorf("drag %s: not housed: %w", squad, ErrInvalidOrder)
	}
	sm.drag = &dragState{squad: squad, from: from, valid: valid}
	sm.state = InputSquadStartDrag
	return nil
}

func (sm *StateMachine) fromSupplyLinesStart(ev InputEvent) error {
	if _, ok := ev.(WaypointButtonPressed); ok {
		sm.preview.Active = false
		sm.state = InputBlank
		return nil
	}
	if sm.sim.Network.Len() == 0 {
		return ErrEmptyGraph
	}
	sm.preview = PreviewEdge{Active: true, Anchor: 0, Pointer: sm.preview.Pointer, Valid: true}
	sm.state = InputDefineSupplyLine
	return nil
}

func (sm *StateMachine) fromSupplyLine(ev InputEvent) error {
	switch e := ev.(type) {
	case WaypointButtonPressed:
		sm.preview.Active = false
		sm.state = InputBlank
	case ReleasesMouseDown:
		if !sm.preview.Valid {
			sm.sim.record("", CatInput, "preview_blocked", e.WorldPosition.String(), 0)
			return nil
		}
		res, err := sm.sim.Editor.AddWaypoint(e.WorldPosition)
		if err != nil {
			return err
		}
		sm.preview.Anchor = res.ID
		sm.sim.recordWaypoint(res)
	case Click, ClicksOnSquad:
	default:
		return fmt.Errorf("unhandled input event %T", ev)
	}
	return nil
}

func (sm *StateMachine) fromSquadDrag(ev InputEvent) error {
	switch e := ev.(type) {
	case ReleasesMouseDown:
		d := sm.drag
		sm.drag = nil
		sm.state = InputBlank
		return sm.issueMove(d, e)
	case Click, WaypointButtonPressed, ClicksOnSquad:
	default:
		return fmt.Errorf("unhandled input event %T", ev)
	}
	return nil
}

func (sm *StateMachine) issueMove(d *dragState, e ReleasesMouseDown) error {
	if d == nil {
		return fmt.Errorf("release without drag: %w", ErrInvalidOrder)
	}
	target, ok := e.Target, e.HasTarget
	if !ok {
		target, ok = sm.picker.Pick(sm.sim.Network, e.WorldPosition)
	}
	if !ok {
		return fmt.Errorf("release at %s: no target: %w", e.WorldPosition, ErrInvalidOrder)
	}
	if _, reachable := d.valid[target]; !reachable {
		return fmt.Errorf("target %d unreachable from %d: %w", target, d.from, ErrInvalidOrder)
	}
	if sm.sim.HousingAt(target).ContainsSquad(d.squad) {
		return fmt.Errorf("target %d already houses %s: %w", target, d.squad, ErrInvalidOrder)
	}
	path, err := sm.sim.Network.ShortestPath(d.from, target)
	if err != nil {
		return err
	}
	order, err := NewMoveOrder(sm.sim.Network, d.squad, path)
	if err != nil {
		return err
	}
	label := sm.sim.Army.Label(d.squad)
	if n := sm.sim.Orders.Withdraw(d.squad); n > 0 {
		sm.sim.record(label, CatOrder, "withdrawn", fmt.Sprintf("%d earlier order(s)", n), float64(n))
	}
	sm.sim.Orders.Submit(order)
	sm.sim.record(label, CatOrder, "submitted", fmt.Sprintf("%v", path), float64(len(path)))
	return nil
}

// IsRejection reports whether err is one of the expected gesture failures
// (unknown node, empty network, no path, invalid order).
func IsRejection(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrEmptyGraph) ||
		errors.Is(err, ErrNoPath) || errors.Is(err, ErrInvalidOrder)
}
