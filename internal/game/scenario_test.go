package game

import (
	"strings"
	"testing"
)

// dumpLog prints the full SimLog to t.Log so it appears in `go test -v` output.
func dumpLog(t *testing.T, ts *TestSim) {
	t.Helper()
	entries := ts.SimLog.Entries()
	if len(entries) == 0 {
		t.Log("(no log entries)")
		return
	}
	for _, e := range entries {
		t.Log(e.String())
	}
}

type phaseSpy struct{ changes []string }

func (p *phaseSpy) ModeChanged(from, to GameMode, tick int) {
	p.changes = append(p.changes, from.String()+">"+to.String())
}

type moveSpy struct{ events []MovementEvent }

func (m *moveSpy) HandleMovement(ev MovementEvent) { m.events = append(m.events, ev) }

// --- Scenario: Supply Run ---

func TestScenario_SupplyRun(t *testing.T) {
	t.Log("=== TestScenario_SupplyRun ===")
	t.Log("--- Setup: one rifle squad at the origin, line laid 2 waypoints east ---")

	rifle := NewSquadID()
	ts := NewTestSim(WithSquad(rifle, SquadRifle))
	phases := &phaseSpy{}
	moves := &moveSpy{}
	ts.Sim.SubscribePhase(phases)
	ts.Sim.SubscribeMovement(moves)

	ts.LayLine(V(2, 0), V(1, 0))
	ts.Step()
	if ts.Sim.Network.Len() != 3 {
		t.Fatalf("expected 3 nodes after laying the line, got %d", ts.Sim.Network.Len())
	}
	if ts.Sim.Input.State() != InputBlank {
		t.Fatalf("expected input back to blank, got %s", ts.Sim.Input.State())
	}

	ts.OrderMove(rifle, 2)
	ts.Commit()
	ts.Step()
	commitTick := ts.Sim.Tick()
	if ts.Sim.Mode() != ModeAction {
		t.Fatalf("expected action mode after commit, got %s", ts.Sim.Mode())
	}
	if ts.Sim.Occupancy.ContainsSquad(0, rifle) {
		t.Fatal("squad should have departed node 0 on the commit tick")
	}

	arrived := ts.RunUntil(func(ts *TestSim) bool {
		return ts.Sim.Occupancy.ContainsSquad(2, rifle)
	}, 400)
	dumpLog(t, ts)
	if arrived < 0 {
		t.Fatal("squad never arrived at node 2")
	}
	// 1.0 world units at 0.01 per tick.
	if d := arrived - commitTick; d < 99 || d > 106 {
		t.Fatalf("expected arrival ~100 ticks after commit, took %d", d)
	}
	if ts.Sim.Mode() != ModeAction {
		t.Fatal("timer policy keeps the action phase open after arrival")
	}

	back := ts.RunUntil(func(ts *TestSim) bool { return ts.Sim.Mode() == ModeCommand }, 400)
	if back != commitTick+DefaultActionPhaseTicks {
		t.Fatalf("expected command mode at tick %d, got %d", commitTick+DefaultActionPhaseTicks, back)
	}

	wantPhases := []string{"command>action", "action>command"}
	if strings.Join(phases.changes, ",") != strings.Join(wantPhases, ",") {
		t.Fatalf("expected phases %v, got %v", wantPhases, phases.changes)
	}
	if len(moves.events) != 2 || moves.events[0].Kind != SquadDeparted || moves.events[1].Kind != SquadArrived {
		t.Fatalf("expected depart then arrive, got %v", moves.events)
	}
	if moves.events[1].Tick != arrived {
		t.Fatalf("arrival event stamped %d, expected %d", moves.events[1].Tick, arrived)
	}
}

// --- Scenario: Settled Policy ---

func TestScenario_SettledPolicyEndsOnArrival(t *testing.T) {
	tuning := DefaultTuning()
	tuning.ActionPolicy = ActionSettled
	rifle := NewSquadID()
	ts := NewTestSim(WithSquad(rifle, SquadRifle), WithSimTuning(tuning))

	ts.LayLine(V(0.5, 0))
	ts.Step()
	ts.OrderMove(rifle, 1)
	ts.Commit()

	arrivedAt := -1
	back := ts.RunUntil(func(ts *TestSim) bool {
		if arrivedAt < 0 && ts.Sim.Occupancy.ContainsSquad(1, rifle) {
			arrivedAt = ts.Sim.Tick()
		}
		return ts.Sim.Mode() == ModeCommand && ts.Sim.Tick() > 2
	}, 200)
	if back < 0 {
		t.Fatal("action phase never closed")
	}
	if back != arrivedAt {
		t.Fatalf("settled policy should close the phase on the arrival tick %d, closed at %d", arrivedAt, back)
	}
}

// --- Scenario: Timer Expires Mid-Move ---

func TestScenario_ResolversOutliveShortTimer(t *testing.T) {
	tuning := DefaultTuning()
	tuning.ActionPhaseTicks = 20
	rifle := NewSquadID()
	ts := NewTestSim(WithSquad(rifle, SquadRifle), WithSimTuning(tuning))

	ts.LayLine(V(0.5, 0))
	ts.Step()
	ts.OrderMove(rifle, 1)
	ts.Commit()
	ts.RunTicks(25)

	if ts.Sim.Mode() != ModeCommand {
		t.Fatalf("expected command mode after 20 ticks, got %s", ts.Sim.Mode())
	}
	if ts.Settled() {
		t.Fatal("squad should still be on the move")
	}

	// A squad in transit cannot be picked up.
	ts.Send(ClicksOnSquad{Squad: rifle})
	ts.Step()
	if ts.Sim.Input.State() != InputBlank {
		t.Fatalf("dragging a moving squad must be rejected, state %s", ts.Sim.Input.State())
	}

	if ts.RunUntil(func(ts *TestSim) bool { return ts.Settled() }, 100) < 0 {
		t.Fatal("squad never arrived")
	}
	if !ts.Sim.Occupancy.ContainsSquad(1, rifle) {
		t.Fatal("expected squad at node 1")
	}
}

// --- Scenario: Leaving a Building ---

func TestScenario_DeployInBuildingAndLeave(t *testing.T) {
	marksman := NewSquadID()
	ts := NewTestSim(
		WithSquad(marksman, SquadMarksman),
		WithCityBlocks(1),
		WithDeployIn("building01"),
	)
	b, err := ts.Sim.Building("building01")
	if err != nil {
		t.Fatalf("building: %v", err)
	}
	door := b.Entries[0]
	h, err := ts.Sim.HousingOf(marksman)
	if err != nil {
		t.Fatalf("housing: %v", err)
	}
	if bh, ok := h.(*BuildingHousing); !ok || bh.Building() != b {
		t.Fatalf("expected squad housed in building01, got %T", h)
	}
	if ts.Sim.Occupancy.ContainsSquad(0, marksman) {
		t.Fatal("redeployed squad must no longer be listed at node 0")
	}

	// The door starts unconnected: the only target is the squad's own building.
	ts.Send(ClicksOnSquad{Squad: marksman}, ReleaseOn(door, DoorPosition(b.Origin, b.Width)))
	ts.Step()
	if ts.Sim.Orders.Len() != 0 {
		t.Fatal("ordering a squad into its own building must be rejected")
	}

	// One waypoint south of the door hangs off it.
	ts.LayLine(V(0.6, -0.2))
	ts.Step()
	outside := NodeID(ts.Sim.Network.Len() - 1)
	if !ts.Sim.Network.Connected(door, outside) {
		t.Fatalf("expected node %d attached to the door %d", outside, door)
	}

	ts.OrderMove(marksman, outside)
	ts.Commit()
	if ts.RunUntil(func(ts *TestSim) bool { return ts.Settled() }, 200) < 0 {
		t.Fatal("squad never left the building")
	}
	dumpLog(t, ts)
	if !ts.Sim.Occupancy.ContainsSquad(outside, marksman) {
		t.Fatal("expected squad outside the building")
	}
	if len(ts.Sim.HousingAt(door).(*BuildingHousing).Squads()) != 0 {
		t.Fatal("building should be empty")
	}
}

// --- Scenario: Bridging Two Lines ---

func TestScenario_BridgeJoinsLines(t *testing.T) {
	ts := NewTestSim(WithSquad(NewSquadID(), SquadAssault))

	// Node 1 sits east of the origin. A waypoint dropped between the two,
	// nearer the origin, is bridged to node 1 as well.
	ts.LayLine(V(0.4, 0))
	ts.Step()
	ts.LayLine(V(0.18, 0.05))
	ts.Step()
	if !ts.SimLog.HasEntry(CatNetwork, "bridge", "") {
		dumpLog(t, ts)
		t.Fatal("expected a bridge to be recorded")
	}
	last := NodeID(ts.Sim.Network.Len() - 1)
	adj, _ := ts.Sim.Network.AdjacentIDs(last)
	if len(adj) != 2 {
		t.Fatalf("bridged node should have two neighbours, got %v", adj)
	}
}

func TestScenario_CommitWithNoOrders(t *testing.T) {
	ts := NewTestSim(WithSquad(NewSquadID(), SquadRifle))
	ts.Commit()
	ts.Step()
	if ts.Sim.Mode() != ModeAction {
		t.Fatalf("an empty commit still opens the action phase, got %s", ts.Sim.Mode())
	}
	if e, ok := ts.SimLog.LastOf(CatOrder, "committed"); !ok || e.NumVal != 0 {
		t.Fatalf("expected a zero-order commit entry, got %+v", e)
	}
}

func TestReport_ListsNetworkAndOrders(t *testing.T) {
	rifle := NewSquadID()
	ts := NewTestSim(WithSquad(rifle, SquadRifle), WithCityBlocks(1))
	ts.LayLine(V(-0.5, 0))
	ts.Step()
	ts.OrderMove(rifle, NodeID(ts.Sim.Network.Len()-1))
	ts.Step()

	report := ts.Sim.Report()
	for _, want := range []string{
		"mode=command",
		"== nodes ==",
		"== buildings ==",
		"building01",
		"== pending orders ==",
		"cost=10",
		ts.Sim.Army.Label(rifle),
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
	if strings.Contains(report, "== moving ==") {
		t.Error("nothing is moving before commit")
	}
}
