package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Garsondee/supply-lines/internal/config"
	"github.com/Garsondee/supply-lines/internal/game"
	"github.com/Garsondee/supply-lines/internal/logger"
)

var scenarios = map[string]func(*game.TestSim){
	"supply-run": scriptSupplyRun,
	"bridge":     scriptBridge,
}

type runStats struct {
	scenario string

	firstWaypointTick int
	firstCommitTick   int
	firstDepartTick   int
	firstArriveTick   int
	firstCommandTick  int // first return to the command phase

	waypoints  int
	bridges    int
	submitted  int
	withdrawn  int
	rejected   int
	departures int
	arrivals   int

	settled bool
	report  string
}

func main() {
	var ticks int
	var scenario string
	var cfgPath string
	var verbose bool

	flag.IntVar(&ticks, "ticks", 600, "ticks to run")
	flag.StringVar(&scenario, "scenario", "supply-run", "scenario name (supply-run, bridge)")
	flag.StringVar(&cfgPath, "config", "", "optional YAML config file")
	flag.BoolVar(&verbose, "verbose", false, "record per-tick positions and print the action phase log")
	flag.Parse()

	if ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		os.Exit(2)
	}
	script, ok := scenarios[scenario]
	if !ok {
		fmt.Printf("error: unsupported scenario %q (supported: supply-run, bridge)\n", scenario)
		os.Exit(2)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel, cfg.Dev)

	fmt.Printf("=== Headless Supply Report ===\n")
	fmt.Printf("scenario=%s ticks=%d policy=%s speed=%.3f\n\n", scenario, ticks, cfg.ActionPhase.Policy, cfg.Movement.Speed)

	ts := newScenarioSim(cfg.Tuning(), verbose)
	stats := runScenario(ts, scenario, script, ticks)
	printRun(stats)

	if verbose {
		fmt.Println("=== Action Phase Log ===")
		fmt.Print(actionLog(ts.SimLog, stats, ticks))
	}
}

func newScenarioSim(t game.Tuning, verbose bool) *game.TestSim {
	return game.NewTestSim(
		game.WithSimTuning(t),
		game.WithVerbose(verbose),
		game.WithSimLogger(logger.For("sim")),
		game.WithCityBlocks(2),
		game.WithSquad(game.NewSquadID(), game.SquadRifle),
		game.WithSquad(game.NewSquadID(), game.SquadMarksman),
	)
}

// scriptSupplyRun lays a straight line east along the street, then sends the
// first squad to its far end.
func scriptSupplyRun(ts *game.TestSim) {
	ts.LayLine(game.V(0.5, 0), game.V(1.0, 0), game.V(1.5, 0))
	ts.Step()

	far := game.NodeID(ts.Sim.Network.Len() - 1)
	squads := ts.Sim.Army.Squads()
	ts.OrderMove(squads[0].ID, far)
	ts.Commit()
}

// scriptBridge lays a single waypoint, then a second one close enough to an
// existing node to be bridged to it, and sends both squads out.
func scriptBridge(ts *game.TestSim) {
	ts.LayLine(game.V(0.4, 0))
	ts.Step()
	ts.LayLine(game.V(0.18, 0.05))
	ts.Step()

	last := game.NodeID(ts.Sim.Network.Len() - 1)
	squads := ts.Sim.Army.Squads()
	ts.OrderMove(squads[0].ID, last)
	ts.OrderMove(squads[1].ID, last-1)
	ts.Commit()
}

func runScenario(ts *game.TestSim, name string, script func(*game.TestSim), ticks int) runStats {
	script(ts)
	for ts.Sim.Tick() < ticks {
		ts.Step()
	}

	sl := ts.SimLog
	entries := sl.Entries()
	return runStats{
		scenario:          name,
		firstWaypointTick: firstTick(entries, game.CatNetwork, "waypoint", ""),
		firstCommitTick:   firstTick(entries, game.CatOrder, "committed", ""),
		firstDepartTick:   firstTick(entries, game.CatMove, game.SquadDeparted.String(), ""),
		firstArriveTick:   firstTick(entries, game.CatMove, game.SquadArrived.String(), ""),
		firstCommandTick:  firstTick(entries, game.CatPhase, "mode", "action -> command"),
		waypoints:         sl.CountCategory(game.CatNetwork, "waypoint"),
		bridges:           sl.CountCategory(game.CatNetwork, "bridge"),
		submitted:         sl.CountCategory(game.CatOrder, "submitted"),
		withdrawn:         sl.CountCategory(game.CatOrder, "withdrawn"),
		rejected:          sl.CountCategory(game.CatInput, "rejected"),
		departures:        sl.CountCategory(game.CatMove, game.SquadDeparted.String()),
		arrivals:          sl.CountCategory(game.CatMove, game.SquadArrived.String()),
		settled:           ts.Settled(),
		report:            ts.Sim.Report(),
	}
}

// actionLog returns the log lines from the first commit until the first
// return to the command phase, or until the end of the run.
func actionLog(sl *game.SimLog, rs runStats, ticks int) string {
	if rs.firstCommitTick < 0 {
		return ""
	}
	end := rs.firstCommandTick
	if end < 0 {
		end = ticks
	}
	return sl.FormatRange(rs.firstCommitTick, end)
}

func firstTick(entries []game.SimLogEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

func printRun(rs runStats) {
	fmt.Printf("--- Scenario %s ---\n", rs.scenario)
	fmt.Printf("phase_markers: first_waypoint=%d commit=%d first_depart=%d first_arrive=%d back_to_command=%d\n",
		rs.firstWaypointTick, rs.firstCommitTick, rs.firstDepartTick, rs.firstArriveTick, rs.firstCommandTick)
	fmt.Printf("event_totals: waypoint=%d bridge=%d order_submitted=%d order_withdrawn=%d input_rejected=%d departed=%d arrived=%d\n",
		rs.waypoints, rs.bridges, rs.submitted, rs.withdrawn, rs.rejected, rs.departures, rs.arrivals)
	fmt.Printf("settled=%t\n\n", rs.settled)
	fmt.Print(rs.report)
	fmt.Println()
}
