package main

import (
	"strings"
	"testing"

	"github.com/Garsondee/supply-lines/internal/game"
)

func TestFirstTick(t *testing.T) {
	entries := []game.SimLogEntry{
		{Tick: 3, Category: game.CatPhase, Key: "mode", Value: "command -> action"},
		{Tick: 9, Category: game.CatPhase, Key: "mode", Value: "action -> command"},
		{Tick: 12, Category: game.CatPhase, Key: "mode", Value: "command -> action"},
	}
	if got := firstTick(entries, game.CatPhase, "mode", ""); got != 3 {
		t.Fatalf("first mode tick = %d, want 3", got)
	}
	if got := firstTick(entries, game.CatPhase, "mode", "action -> command"); got != 9 {
		t.Fatalf("first return to command = %d, want 9", got)
	}
	if got := firstTick(entries, game.CatMove, "arrived", ""); got != -1 {
		t.Fatalf("missing event should give -1, got %d", got)
	}
}

func TestRunScenario_SupplyRun(t *testing.T) {
	ts := newScenarioSim(game.DefaultTuning(), false)
	rs := runScenario(ts, "supply-run", scriptSupplyRun, 600)

	if rs.waypoints != 3 {
		t.Fatalf("waypoints = %d, want 3", rs.waypoints)
	}
	if rs.submitted != 1 || rs.rejected != 0 {
		t.Fatalf("submitted=%d rejected=%d, want 1 and 0", rs.submitted, rs.rejected)
	}
	if rs.arrivals != 1 || rs.departures != 1 {
		t.Fatalf("departed=%d arrived=%d, want 1 each", rs.departures, rs.arrivals)
	}
	if !(rs.firstCommitTick < rs.firstArriveTick && rs.firstArriveTick < rs.firstCommandTick) {
		t.Fatalf("phase markers out of order: commit=%d arrive=%d command=%d",
			rs.firstCommitTick, rs.firstArriveTick, rs.firstCommandTick)
	}
	if !rs.settled {
		t.Fatal("squad should have settled by the end of the run")
	}
	if !strings.Contains(rs.report, "mode=command") {
		t.Fatalf("report should show the command phase:\n%s", rs.report)
	}
}

func TestRunScenario_Bridge(t *testing.T) {
	ts := newScenarioSim(game.DefaultTuning(), false)
	rs := runScenario(ts, "bridge", scriptBridge, 600)

	if rs.bridges != 1 {
		t.Fatalf("bridges = %d, want 1", rs.bridges)
	}
	if rs.arrivals != 2 {
		t.Fatalf("arrived = %d, want both squads", rs.arrivals)
	}
}

func TestActionLog_CoversCommitToCommand(t *testing.T) {
	ts := newScenarioSim(game.DefaultTuning(), false)
	rs := runScenario(ts, "supply-run", scriptSupplyRun, 600)

	out := actionLog(ts.SimLog, rs, 600)
	if !strings.Contains(out, "committed") || !strings.Contains(out, "arrived") {
		t.Fatalf("action log should span commit to arrival:\n%s", out)
	}
	if strings.Contains(out, "waypoint") {
		t.Fatalf("waypoints were laid before the commit:\n%s", out)
	}

	if got := actionLog(ts.SimLog, runStats{firstCommitTick: -1}, 600); got != "" {
		t.Fatalf("no commit means no action log, got %q", got)
	}
}
