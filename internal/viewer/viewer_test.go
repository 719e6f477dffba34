package viewer

import (
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Garsondee/supply-lines/internal/game"
)

func near(a, b game.Vec2) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

// --- Camera ---

func TestCamera_RoundTrip(t *testing.T) {
	cam := Camera{X: 1.5, Y: -0.25, Zoom: 1.7}
	p := game.V(0.8, 2.1)
	sx, sy := cam.WorldToScreen(p, 1200, 900)
	back := cam.ScreenToWorld(float64(sx), float64(sy), 1200, 900)
	if math.Abs(back.X-p.X) > 1e-4 || math.Abs(back.Y-p.Y) > 1e-4 {
		t.Fatalf("round trip %v -> (%v,%v) -> %v", p, sx, sy, back)
	}
}

func TestCamera_YAxisPointsUp(t *testing.T) {
	cam := Camera{Zoom: 1}
	_, lowY := cam.WorldToScreen(game.V(0, 0), 800, 600)
	_, highY := cam.WorldToScreen(game.V(0, 1), 800, 600)
	if highY >= lowY {
		t.Fatalf("world y=1 should be drawn above y=0, got %v vs %v", highY, lowY)
	}
	if lowY != 300 {
		t.Fatalf("camera centre should map to viewport centre, got y=%v", lowY)
	}
}

func TestCamera_ZoomClamped(t *testing.T) {
	cam := Camera{Zoom: 1}
	cam.ZoomBy(100)
	if cam.Zoom != zoomMax {
		t.Fatalf("zoom = %v, want %v", cam.Zoom, zoomMax)
	}
	cam.ZoomBy(0.0001)
	if cam.Zoom != zoomMin {
		t.Fatalf("zoom = %v, want %v", cam.Zoom, zoomMin)
	}
}

func TestCamera_PanInPixels(t *testing.T) {
	cam := Camera{Zoom: 1}
	cam.Pan(pixelsPerUnit, -pixelsPerUnit)
	if !near(game.V(cam.X, cam.Y), game.V(1, 1)) {
		t.Fatalf("camera at (%v,%v), want (1,1)", cam.X, cam.Y)
	}
}

// --- Preview geometry ---

func TestSegmentHitsBuilding(t *testing.T) {
	b := &game.Building{Name: "b", Origin: game.V(0, 0), Width: 1}
	cases := []struct {
		name string
		a, c game.Vec2
		want bool
	}{
		{"straight through", game.V(-1, 0.5), game.V(2, 0.5), true},
		{"ends inside", game.V(0.5, 0.5), game.V(3, 3), true},
		{"leaves from door", game.V(0.5, 0), game.V(0.5, -1), false},
		{"passes above", game.V(-1, 2), game.V(2, 2), false},
		{"passes beside", game.V(1.5, -1), game.V(1.5, 2), false},
	}
	for _, tc := range cases {
		if got := segmentHitsBuilding(tc.a, tc.c, b); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestPreviewBlocked_AnyBuilding(t *testing.T) {
	bs := []*game.Building{
		{Name: "a", Origin: game.V(0, 0), Width: 1},
		{Name: "b", Origin: game.V(3, 0), Width: 1},
	}
	if !previewBlocked(game.V(2.5, 0.5), game.V(4.5, 0.5), bs) {
		t.Fatal("segment through the second building should be blocked")
	}
	if previewBlocked(game.V(1.5, 0.5), game.V(2.5, 0.5), bs) {
		t.Fatal("segment in the street between buildings should be clear")
	}
}

// --- Overlays ---

func TestOverlays_NetworkFlashesDecay(t *testing.T) {
	ov := newOverlays()
	nw := game.NewNetwork()
	nw.Subscribe(ov)
	a := nw.CreateNode(game.V(0, 0))
	b := nw.CreateNode(game.V(0.3, 0))
	if err := nw.Connect(b, a); err != nil {
		t.Fatalf("connect: %v", err)
	}

	if len(ov.freshNodes) != 2 {
		t.Fatalf("fresh nodes = %d, want 2", len(ov.freshNodes))
	}
	if _, ok := ov.freshEdges[game.Edge{A: a, B: b}]; !ok {
		t.Fatalf("edge not recorded in normalised order: %v", ov.freshEdges)
	}

	for i := 0; i < flashFrames-1; i++ {
		ov.decay()
	}
	if len(ov.freshNodes) != 2 || len(ov.freshEdges) != 1 {
		t.Fatal("flashes expired a frame early")
	}
	ov.decay()
	if len(ov.freshNodes) != 0 || len(ov.freshEdges) != 0 {
		t.Fatalf("flashes should be gone after %d frames", flashFrames)
	}
}

func TestOverlays_OrdersFollowQueueAndPhase(t *testing.T) {
	ov := newOverlays()
	sq := game.NewSquad(game.SquadRifle)
	first := game.Order{Squad: sq.ID, Path: []game.NodeID{0, 1}}
	second := game.Order{Squad: sq.ID, Path: []game.NodeID{0, 2}}

	ov.OrderSubmitted(first, 1)
	ov.OrderSubmitted(second, 2)
	ov.OrderWithdrawn(first, 1)
	if got, ok := ov.orders[sq.ID]; !ok || got.Target() != 2 {
		t.Fatalf("withdrawing a superseded order should keep the newer preview, got %+v", ov.orders)
	}

	ov.ModeChanged(game.ModeCommand, game.ModeAction, 10)
	if len(ov.orders) != 0 {
		t.Fatal("order previews should clear when the action phase starts")
	}
}

func TestOverlays_ArrivalOnly(t *testing.T) {
	ov := newOverlays()
	ov.HandleMovement(game.MovementEvent{Kind: game.SquadDeparted, Node: 3})
	ov.HandleMovement(game.MovementEvent{Kind: game.SquadArrived, Node: 4})
	if _, ok := ov.arrivals[3]; ok {
		t.Fatal("departures should not flash")
	}
	if ov.arrivals[4] != flashFrames {
		t.Fatalf("arrival flash = %d, want %d", ov.arrivals[4], flashFrames)
	}
}

// --- Event log ---

func TestEventLog_RingKeepsNewest(t *testing.T) {
	el := NewEventLog()
	for i := 0; i < logMaxEntries+5; i++ {
		el.Add(game.SimLogEntry{Tick: i})
	}
	recent := el.Recent()
	if len(recent) != logMaxEntries {
		t.Fatalf("len = %d, want %d", len(recent), logMaxEntries)
	}
	if recent[0].Tick != 5 || recent[len(recent)-1].Tick != logMaxEntries+4 {
		t.Fatalf("ring order wrong: first %d last %d", recent[0].Tick, recent[len(recent)-1].Tick)
	}
}

func TestEventLog_PullIsIncremental(t *testing.T) {
	sl := game.NewSimLog(false)
	el := NewEventLog()

	sl.Add(1, "", game.CatPhase, "mode", "command", 0)
	sl.Add(2, "", game.CatInput, "state", "supply_lines_start", 0)
	el.Pull(sl)
	el.Pull(sl)
	if n := len(el.Recent()); n != 2 {
		t.Fatalf("after repeated pull: %d entries, want 2", n)
	}

	sl.Add(3, "", game.CatNetwork, "node", "1", 0)
	el.Pull(sl)
	recent := el.Recent()
	if len(recent) != 3 || recent[2].Key != "node" {
		t.Fatalf("unexpected entries after second pull: %+v", recent)
	}
}

// --- Input translation ---

func newTestGame(t *testing.T) *Game {
	t.Helper()
	sim, err := game.BuildLevel(game.DefaultLevelSpec())
	if err != nil {
		t.Fatalf("build level: %v", err)
	}
	g := New(sim, zerolog.Nop())
	g.cam = Camera{Zoom: 1}
	return g
}

func TestGame_PressOnSquadMarker(t *testing.T) {
	g := newTestGame(t)
	markers := g.squadMarkers()
	if len(markers) != 3 {
		t.Fatalf("markers = %d, want one per squad", len(markers))
	}

	ev := g.pressEvent(markers[1].pos)
	click, ok := ev.(game.ClicksOnSquad)
	if !ok {
		t.Fatalf("press on marker gave %T", ev)
	}
	if click.Squad != markers[1].squad {
		t.Fatalf("picked %s, want %s", click.Squad, markers[1].squad)
	}
}

func TestGame_PressElsewhereIsClick(t *testing.T) {
	g := newTestGame(t)
	ev := g.pressEvent(game.V(-3, -3))
	click, ok := ev.(game.Click)
	if !ok {
		t.Fatalf("press on empty ground gave %T", ev)
	}
	if !near(click.WorldPosition, game.V(-3, -3)) {
		t.Fatalf("click position %v", click.WorldPosition)
	}
}

func TestGame_ReleaseInsideBuildingTargetsDoor(t *testing.T) {
	g := newTestGame(t)
	b, err := g.sim.Building("building01")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}

	ev := g.releaseEvent(b.Center())
	if !ev.HasTarget || ev.Target != b.Entries[0] {
		t.Fatalf("release in %s should target its door %d, got %+v", b.Name, b.Entries[0], ev)
	}

	open := g.releaseEvent(game.V(-3, -3))
	if open.HasTarget {
		t.Fatalf("release on open ground should not carry a target: %+v", open)
	}
}

func TestGame_DragToBuildingQueuesOrder(t *testing.T) {
	g := newTestGame(t)
	b, _ := g.sim.Building("building01")
	if err := g.sim.Network.Connect(0, b.Entries[0]); err != nil {
		t.Fatalf("connect: %v", err)
	}
	m := g.squadMarkers()[0]

	g.sim.Step(g.pressEvent(m.pos), g.releaseEvent(b.Center()))

	if g.sim.Orders.Len() != 1 {
		t.Fatalf("pending orders = %d, want 1", g.sim.Orders.Len())
	}
	if o, ok := g.ov.orders[m.squad]; !ok || o.Target() != b.Entries[0] {
		t.Fatalf("order preview missing or wrong: %+v", g.ov.orders)
	}
}
