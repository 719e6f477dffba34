package game

import (
	"errors"
	"testing"
)

func TestBuildLevel_DefaultLayout(t *testing.T) {
	s, err := BuildLevel(DefaultLevelSpec())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if s.Mode() != ModeCommand {
		t.Fatalf("expected level to open in command mode, got %s", s.Mode())
	}
	buildings := s.Buildings()
	if len(buildings) != 16 {
		t.Fatalf("expected 4 blocks of 4 buildings, got %d", len(buildings))
	}
	// Node 0 plus one door per building.
	if s.Network.Len() != 17 {
		t.Fatalf("expected 17 nodes, got %d", s.Network.Len())
	}
	if len(s.Network.Edges()) != 0 {
		t.Fatalf("a fresh level has no supply lines, got %v", s.Network.Edges())
	}
	for _, sq := range s.Army.Squads() {
		if !s.Occupancy.ContainsSquad(0, sq.ID) {
			t.Errorf("%s should start at node 0", sq.Label())
		}
	}
}

func TestBuildLevel_BuildingGeometry(t *testing.T) {
	s, err := BuildLevel(LevelSpec{CityBlocks: 2})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	b, err := s.Building("building11")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	wantX := blockWidth + streetWidth + sidewalkWidth
	if !near(b.Origin, V(wantX, sidewalkWidth)) {
		t.Fatalf("expected building11 at (%.3f, %.3f), got %s", wantX, sidewalkWidth, b.Origin)
	}
	door, _ := s.Network.Position(b.Entries[0])
	if !near(door, DoorPosition(b.Origin, b.Width)) {
		t.Fatalf("door node at %s, expected %s", door, DoorPosition(b.Origin, b.Width))
	}
	if !b.Contains(b.Center()) || b.Contains(V(-1, -1)) {
		t.Fatal("Contains disagrees with the footprint")
	}
	if got, ok := s.BuildingAt(b.Center()); !ok || got != b {
		t.Fatal("BuildingAt should find the building under its center")
	}
	if _, ok := s.BuildingAt(V(-5, -5)); ok {
		t.Fatal("no building in the street")
	}
}

func TestBuildLevel_DeployInBuilding(t *testing.T) {
	spec := LevelSpec{CityBlocks: 1, Roster: []SquadKind{SquadRifle, SquadAssault}, Deploy: "building03"}
	s, err := BuildLevel(spec)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	b, _ := s.Building("building03")
	h, ok := s.HousingAt(b.Entries[0]).(*BuildingHousing)
	if !ok {
		t.Fatal("door node should resolve to the building housing")
	}
	if len(h.Squads()) != 2 {
		t.Fatalf("expected both squads inside, got %d", len(h.Squads()))
	}
}

func TestBuildLevel_UnknownDeployBuilding(t *testing.T) {
	_, err := BuildLevel(LevelSpec{CityBlocks: 1, Roster: []SquadKind{SquadRifle}, Deploy: "bunker"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHousingAt_BareNode(t *testing.T) {
	s := NewSimulation(V(0, 0))
	if _, ok := s.HousingAt(0).(*NodeHousing); !ok {
		t.Fatal("node 0 is not a door and should be its own housing")
	}
}

func TestAddBuilding_MultipleDoors(t *testing.T) {
	s := NewSimulation(V(0, 0))
	b := s.AddBuilding("warehouse", V(1, 1), 1, V(1.5, 1), V(2, 1.5))
	if len(b.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %v", b.Entries)
	}
	h0 := s.HousingAt(b.Entries[0])
	h1 := s.HousingAt(b.Entries[1])
	if h0 != h1 {
		t.Fatal("every door of a building resolves to the same housing")
	}
}

func TestSimulation_ArrivalHousedByBuilding(t *testing.T) {
	sq := NewSquadID()
	ts := NewTestSim(
		WithCityBlocks(1),
		WithSquad(sq, SquadRifle),
		WithSimTuning(Tuning{
			MaxEdgeLength:    DefaultMaxEdgeLength,
			BridgeThreshold:  DefaultBridgeThreshold,
			PickRadius:       DefaultPickRadius,
			UnitSpeed:        0.05,
			ArrivalThreshold: DefaultArrivalThreshold,
			ActionPolicy:     ActionSettled,
			ActionPhaseTicks: DefaultActionPhaseTicks,
		}),
	)
	b, err := ts.Sim.Building("building01")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	door := b.Entries[0]
	if err := ts.Sim.Network.Connect(0, door); err != nil {
		t.Fatalf("connect: %v", err)
	}

	ts.OrderMove(sq, door)
	ts.Commit()
	if tick := ts.RunUntil(func(ts *TestSim) bool { return ts.Settled() }, 200); tick < 0 {
		t.Fatalf("squad never arrived\n%s", ts.SimLog.Format())
	}

	h, err := ts.Sim.HousingOf(sq)
	if err != nil {
		t.Fatalf("housing: %v", err)
	}
	bh, ok := h.(*BuildingHousing)
	if !ok || bh.Building() != b {
		t.Fatalf("expected %s to house the squad, got %T", b.Name, h)
	}
	if ts.Sim.Occupancy.ContainsSquad(0, sq) {
		t.Fatal("the squad must have left node 0")
	}
}
