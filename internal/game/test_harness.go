package game

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TestSim is a headless harness around Simulation used by tests and the
// headless report. Input events are queued and delivered on the next tick,
// the way the viewer delivers them once per frame.
type TestSim struct {
	Sim    *Simulation
	SimLog *SimLog

	start    Vec2
	tuning   Tuning
	verbose  bool
	logger   zerolog.Logger
	squads   []Squad
	blocks   int
	deploy   string
	pending  []InputEvent
	building []testBuilding
}

type testBuilding struct {
	name   string
	origin Vec2
	width  float64
	doors  []Vec2
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra simOptionKind = iota // start, tuning, verbose, logger: applied first
	simOptLevel                      // squads and buildings: applied once the simulation exists
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithStart sets the position of node 0.
func WithStart(p Vec2) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.start = p }}
}

// WithSimTuning replaces the default tuning.
func WithSimTuning(t Tuning) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.tuning = t }}
}

// WithVerbose enables per-tick movement logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.verbose = v }}
}

// WithSimLogger routes diagnostics to l.
func WithSimLogger(l zerolog.Logger) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.logger = l }}
}

// WithCityBlocks lays out n standard city blocks east of the start node.
func WithCityBlocks(n int) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.blocks = n }}
}

// WithDeployIn starts every squad inside the named building instead of at
// node 0.
func WithDeployIn(building string) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.deploy = building }}
}

// WithSquad adds a squad with a fixed id so tests can refer to it.
func WithSquad(id SquadID, kind SquadKind) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.squads = append(ts.squads, Squad{ID: id, Kind: kind})
	}}
}

// WithBuilding adds a building with the given doors.
func WithBuilding(name string, origin Vec2, width float64, doors ...Vec2) SimOption {
	return SimOption{simOptLevel, func(ts *TestSim) {
		ts.building = append(ts.building, testBuilding{name: name, origin: origin, width: width, doors: doors})
	}}
}

// NewTestSim constructs a TestSim from the given options in ordered passes:
//  1. Infrastructure (start, tuning, roster, verbose)
//  2. Simulation, city blocks and extra buildings
//  3. Deployment, then Begin
func NewTestSim(opts ...SimOption) *TestSim {
	ts := &TestSim{
		tuning: DefaultTuning(),
		logger: zerolog.Nop(),
	}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(ts)
		}
	}
	for _, o := range opts {
		if o.kind == simOptLevel {
			o.fn(ts)
		}
	}

	army := &Army{}
	for _, sq := range ts.squads {
		army.Add(sq)
	}
	ts.SimLog = NewSimLog(ts.verbose)
	simOpts := []Option{
		WithArmy(army),
		WithTuning(ts.tuning),
		WithLogger(ts.logger),
		WithSimLog(ts.SimLog),
	}
	spec := LevelSpec{Start: ts.start, CityBlocks: ts.blocks}
	var err error
	ts.Sim, err = BuildLevel(spec, simOpts...)
	if err != nil {
		panic(err)
	}
	for _, b := range ts.building {
		ts.Sim.AddBuilding(b.name, b.origin, b.width, b.doors...)
	}
	if ts.deploy != "" {
		b, err := ts.Sim.Building(ts.deploy)
		if err != nil {
			panic(err)
		}
		for _, sq := range army.Squads() {
			if err := ts.Sim.Deploy(sq.ID, b.Entries[0]); err != nil {
				panic(err)
			}
		}
	}
	return ts
}

// NewSquadID returns a fresh random squad id; tests keep it to address the
// squad later.
func NewSquadID() SquadID { return uuid.New() }

// Send queues events for the next tick.
func (ts *TestSim) Send(events ...InputEvent) {
	ts.pending = append(ts.pending, events...)
}

// Step delivers the queued events and runs one tick.
func (ts *TestSim) Step() {
	events := ts.pending
	ts.pending = nil
	ts.Sim.Step(events...)
}

// RunTicks advances the simulation n ticks. Queued events go out on the
// first of them.
func (ts *TestSim) RunTicks(n int) {
	for i := 0; i < n; i++ {
		ts.Step()
	}
}

// RunUntil advances the simulation up to maxTicks, stopping early if predicate
// returns true. Returns the tick at which the predicate was satisfied, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		ts.Step()
		if predicate(ts) {
			return ts.Sim.Tick()
		}
	}
	return -1
}

// LayLine queues the full gesture for placing a chain of waypoints: the
// waypoint button, a click to open the preview, one release per target and
// the button again to finish.
func (ts *TestSim) LayLine(targets ...Vec2) {
	ts.Send(WaypointButtonPressed{}, Click{})
	for _, t := range targets {
		ts.Send(ReleasesMouseDown{WorldPosition: t})
	}
	ts.Send(WaypointButtonPressed{})
}

// OrderMove queues a drag of squad onto target.
func (ts *TestSim) OrderMove(squad SquadID, target NodeID) {
	pos, _ := ts.Sim.Network.Position(target)
	ts.Send(ClicksOnSquad{Squad: squad}, ReleaseOn(target, pos))
}

// Commit queues the go signal.
func (ts *TestSim) Commit() {
	ts.Send(CommitOrders{})
}

// Settled reports whether no squad is moving.
func (ts *TestSim) Settled() bool {
	return len(ts.Sim.resolvers) == 0
}
