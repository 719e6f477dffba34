package game

import (
	"fmt"

	"github.com/rs/zerolog"
)

// ActionPolicy decides when the action phase hands control back to the
// command phase.
type ActionPolicy uint8

const (
	// ActionTimer ends the action phase after a fixed number of ticks.
	ActionTimer ActionPolicy = iota
	// ActionSettled ends it once every moving squad has arrived.
	ActionSettled
)

func (p ActionPolicy) String() string {
	switch p {
	case ActionTimer:
		return "timer"
	case ActionSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// DefaultActionPhaseTicks is the action phase length under ActionTimer.
const DefaultActionPhaseTicks = 240

// DefaultPickRadius is how close a release must land to a node to target it.
const DefaultPickRadius = 0.15

// Tuning holds the simulation's numeric knobs.
type Tuning struct {
	MaxEdgeLength    float64
	BridgeThreshold  float64
	PickRadius       float64
	UnitSpeed        float64
	ArrivalThreshold float64
	ActionPolicy     ActionPolicy
	ActionPhaseTicks int
}

// DefaultTuning returns the stock values.
func DefaultTuning() Tuning {
	return Tuning{
		MaxEdgeLength:    DefaultMaxEdgeLength,
		BridgeThreshold:  DefaultBridgeThreshold,
		PickRadius:       DefaultPickRadius,
		UnitSpeed:        DefaultUnitSpeed,
		ArrivalThreshold: DefaultArrivalThreshold,
		ActionPolicy:     ActionTimer,
		ActionPhaseTicks: DefaultActionPhaseTicks,
	}
}

// PhaseListener is told about every GameMode change.
type PhaseListener interface {
	ModeChanged(from, to GameMode, tick int)
}

// Simulation is the context object owning every piece of mutable game
// state. It is driven by the caller one Step at a time and is not safe for
// concurrent use.
type Simulation struct {
	Network   *Network
	Editor    *Editor
	Occupancy *OccupancyTracker
	Orders    *OrderQueue
	Input     *StateMachine
	Army      *Army
	SimLog    *SimLog

	tuning      Tuning
	log         zerolog.Logger
	picker      Picker
	mode        GameMode
	tick        int
	actionStart int
	resolvers   []*MovementResolver
	buildings   []*Building
	byEntry     map[NodeID]*BuildingHousing

	movementListeners []MovementListener
	phaseListeners    []PhaseListener
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithLogger sets the diagnostics logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Simulation) { s.log = l }
}

// WithTuning replaces the default tuning.
func WithTuning(t Tuning) Option {
	return func(s *Simulation) { s.tuning = t }
}

// WithArmy sets the roster. The default is DefaultArmy.
func WithArmy(a *Army) Option {
	return func(s *Simulation) { s.Army = a }
}

// WithSimLog sets the event record.
func WithSimLog(sl *SimLog) Option {
	return func(s *Simulation) { s.SimLog = sl }
}

// WithPicker replaces the release-target picker.
func WithPicker(p Picker) Option {
	return func(s *Simulation) { s.picker = p }
}

// NewSimulation builds a simulation whose network is seeded with node 0 at
// start. It begins in ModeBlank; call Begin once the level is set up.
func NewSimulation(start Vec2, opts ...Option) *Simulation {
	s := &Simulation{
		tuning:  DefaultTuning(),
		log:     zerolog.Nop(),
		byEntry: make(map[NodeID]*BuildingHousing),
	}
	for _, o := range opts {
		o(s)
	}
	if s.Army == nil {
		s.Army = DefaultArmy()
	}
	if s.SimLog == nil {
		s.SimLog = NewSimLog(false)
	}
	if s.picker == nil {
		radius := s.tuning.PickRadius
		if radius <= 0 {
			radius = DefaultPickRadius
		}
		s.picker = NearestPicker{Radius: radius}
	}
	s.Network = NewNetwork()
	s.Network.CreateNode(start)
	s.Editor = NewEditor(s.Network, s.tuning.MaxEdgeLength, s.tuning.BridgeThreshold)
	s.Occupancy = NewOccupancyTracker(s.Network)
	s.Occupancy.log = s.log
	s.Orders = NewOrderQueue()
	s.Input = newStateMachine(s, s.picker)
	return s
}

// Tuning returns the active tuning.
func (s *Simulation) Tuning() Tuning { return s.tuning }

// Mode returns the current game mode.
func (s *Simulation) Mode() GameMode { return s.mode }

// Tick returns the number of completed steps.
func (s *Simulation) Tick() int { return s.tick }

// Logger returns the diagnostics logger.
func (s *Simulation) Logger() zerolog.Logger { return s.log }

// SubscribeMovement registers a consumer of departure/arrival events.
func (s *Simulation) SubscribeMovement(l MovementListener) {
	s.movementListeners = append(s.movementListeners, l)
}

// SubscribePhase registers a consumer of game mode changes.
func (s *Simulation) SubscribePhase(l PhaseListener) {
	s.phaseListeners = append(s.phaseListeners, l)
}

// Begin opens the first command phase.
func (s *Simulation) Begin() {
	if s.mode == ModeBlank {
		s.setMode(ModeCommand)
	}
}

func (s *Simulation) setMode(m GameMode) {
	from := s.mode
	if from == m {
		return
	}
	s.mode = m
	s.record("", CatPhase, "mode", fmt.Sprintf("%s -> %s", from, m), 0)
	s.log.Info().Stringer("from", from).Stringer("to", m).Int("tick", s.tick).Msg("Game mode changed")
	for _, l := range s.phaseListeners {
		l.ModeChanged(from, m, s.tick)
	}
}

// Deploy places a squad at a node before play starts.
func (s *Simulation) Deploy(squad SquadID, node NodeID) error {
	if _, err := s.Army.Squad(squad); err != nil {
		return err
	}
	if err := s.Occupancy.OnArrival(node, squad); err != nil {
		return err
	}
	s.record(s.Army.Label(squad), CatMove, "deployed", fmt.Sprintf("node %d", node), float64(node))
	return nil
}

// Step runs one tick: the events are applied in order, every active
// resolver moves once, and the action phase is closed if its policy says so.
func (s *Simulation) Step(events ...InputEvent) {
	s.tick++
	for _, ev := range events {
		if err := s.Input.HandleEvent(ev); err != nil && !IsRejection(err) {
			s.log.Warn().Err(err).Str("event", ev.String()).Msg("Input event failed")
		}
	}
	s.advanceResolvers()
	s.checkActionPhase()
}

// Commit ends the command phase: every pending order is drained and handed
// to a new movement resolver.
func (s *Simulation) Commit() error {
	if s.mode != ModeCommand {
		return fmt.Errorf("commit in %s mode: %w", s.mode, ErrInvalidOrder)
	}
	orders := s.Orders.DrainAll()
	for _, o := range orders {
		r, err := NewMovementResolver(s.Network, o, s.tuning.UnitSpeed, s.tuning.ArrivalThreshold)
		if err != nil {
			s.log.Warn().Err(err).Str("squad", s.Army.Label(o.Squad)).Msg("Dropping unresolvable order")
			continue
		}
		s.resolvers = append(s.resolvers, r)
	}
	s.actionStart = s.tick
	s.record("", CatOrder, "committed", fmt.Sprintf("%d order(s)", len(orders)), float64(len(orders)))
	s.log.Info().Int("orders", len(orders)).Int("tick", s.tick).Msg("Orders committed")
	s.setMode(ModeAction)
	return nil
}

func (s *Simulation) advanceResolvers() {
	if len(s.resolvers) == 0 {
		return
	}
	live := s.resolvers[:0]
	for _, r := range s.resolvers {
		for _, ev := range r.Tick() {
			ev.Tick = s.tick
			s.publish(ev)
		}
		s.SimLog.AddVerbose(s.tick, s.Army.Label(r.Squad()), CatMove, "position", r.Position().String(), 0)
		if !r.Done() {
			live = append(live, r)
		}
	}
	for i := len(live); i < len(s.resolvers); i++ {
		s.resolvers[i] = nil
	}
	s.resolvers = live
}

func (s *Simulation) publish(ev MovementEvent) {
	s.record(s.Army.Label(ev.Squad), CatMove, ev.Kind.String(), fmt.Sprintf("node %d", ev.Node), float64(ev.Node))
	h := s.HousingAt(ev.Node)
	switch ev.Kind {
	case SquadDeparted:
		h.HandleDeparture(ev)
	case SquadArrived:
		h.HandleArrival(ev)
	}
	for _, l := range s.movementListeners {
		l.HandleMovement(ev)
	}
}

func (s *Simulation) checkActionPhase() {
	if s.mode != ModeAction {
		return
	}
	switch s.tuning.ActionPolicy {
	case ActionSettled:
		if len(s.resolvers) == 0 {
			s.setMode(ModeCommand)
		}
	default:
		ticks := s.tuning.ActionPhaseTicks
		if ticks <= 0 {
			ticks = DefaultActionPhaseTicks
		}
		if s.tick-s.actionStart >= ticks {
			s.setMode(ModeCommand)
		}
	}
}

// Resolvers returns the squads currently on the move.
func (s *Simulation) Resolvers() []*MovementResolver {
	out := make([]*MovementResolver, len(s.resolvers))
	copy(out, s.resolvers)
	return out
}

// Node returns a node with its occupants.
func (s *Simulation) Node(id NodeID) (Node, error) {
	return s.Occupancy.Node(id)
}

func (s *Simulation) record(squad, category, key, value string, num float64) {
	s.SimLog.Add(s.tick, squad, category, key, value, num)
}

func (s *Simulation) recordWaypoint(res WaypointResult) {
	detail := fmt.Sprintf("node %d at %s from %d", res.ID, res.Position, res.Anchor)
	if res.Capped {
		detail += " (capped)"
	}
	s.record("", CatNetwork, "waypoint", detail, float64(res.ID))
	if res.Bridged {
		s.record("", CatNetwork, "bridge", fmt.Sprintf("%d-%d", res.ID, res.BridgeTo), float64(res.BridgeTo))
	}
	s.log.Debug().Int("node", int(res.ID)).Int("anchor", int(res.Anchor)).Bool("capped", res.Capped).Bool("bridged", res.Bridged).Msg("Waypoint added")
}
