// Package viewer is the ebiten front end: it turns mouse and keyboard input
// into simulation input events and draws the supply network.
package viewer

import (
	"fmt"
	"image/color"
	"math"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog"

	"github.com/Garsondee/supply-lines/internal/game"
)

const (
	screenW = 1600
	screenH = 900

	// squadHitRadius is how close, in pixels, a press must land to a squad
	// marker to pick the squad up.
	squadHitRadius = 9
	markerSpacing  = 0.07
)

// Game implements ebiten.Game on top of a Simulation.
type Game struct {
	sim *game.Simulation
	log zerolog.Logger

	width      int
	height     int
	gameWidth  int // playfield width (log panel takes the rest)
	gameHeight int

	cam    Camera
	events *EventLog
	ov     *overlays

	pending       []game.InputEvent
	showHUD       bool
	prevKeys      map[ebiten.Key]bool
	prevMouseLeft bool
	simSpeed      float64
	tickAccum     float64
	status        string
}

// New wraps sim. The simulation should already be in command mode.
func New(sim *game.Simulation, log zerolog.Logger) *Game {
	g := &Game{
		sim:        sim,
		log:        log,
		width:      screenW,
		height:     screenH,
		gameWidth:  screenW - logPanelWidth,
		gameHeight: screenH,
		events:     NewEventLog(),
		ov:         newOverlays(),
		showHUD:    true,
		prevKeys:   make(map[ebiten.Key]bool),
		simSpeed:   1,
	}
	g.cam = Camera{Zoom: 1}
	g.centreCamera()

	sim.Network.Subscribe(g.ov)
	sim.Orders.Subscribe(g.ov)
	sim.SubscribeMovement(g.ov)
	sim.SubscribePhase(g.ov)
	return g
}

// Size returns the window size the viewer lays itself out for.
func (g *Game) Size() (int, int) { return g.width, g.height }

func (g *Game) centreCamera() {
	var lo, hi game.Vec2
	for i, n := range g.sim.Network.Nodes() {
		if i == 0 {
			lo, hi = n.Position, n.Position
			continue
		}
		lo = game.V(math.Min(lo.X, n.Position.X), math.Min(lo.Y, n.Position.Y))
		hi = game.V(math.Max(hi.X, n.Position.X), math.Max(hi.Y, n.Position.Y))
	}
	for _, b := range g.sim.Buildings() {
		top := b.Origin.Add(game.V(b.Width, b.Width))
		hi = game.V(math.Max(hi.X, top.X), math.Max(hi.Y, top.Y))
	}
	g.cam.X = (lo.X + hi.X) / 2
	g.cam.Y = (lo.Y + hi.Y) / 2
	if span := hi.X - lo.X; span > 0 {
		fit := float64(g.gameWidth) * 0.9 / (span * pixelsPerUnit)
		g.cam.Zoom = math.Max(zoomMin, math.Min(1, fit))
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

func (g *Game) Update() error {
	g.handleInput()

	if ptr, ok := g.cursorWorld(); ok {
		g.sim.Input.TrackPointer(ptr)
	}
	if p := g.sim.Input.Preview(); p.Active {
		start, end, _, _ := p.Geometry(g.sim.Network)
		g.sim.Input.SetPreviewValid(!previewBlocked(start, end, g.sim.Buildings()))
	}

	if g.simSpeed > 0 {
		g.tickAccum += g.simSpeed
		for g.tickAccum >= 1.0 {
			g.tickAccum -= 1.0
			events := g.pending
			g.pending = nil
			g.sim.Step(events...)
		}
	}

	g.ov.decay()
	g.events.Pull(g.sim.SimLog)
	return nil
}

func (g *Game) send(ev game.InputEvent) {
	g.pending = append(g.pending, ev)
}

func (g *Game) handleInput() {
	currentKeys := map[ebiten.Key]bool{}
	justPressed := func(k ebiten.Key) bool {
		currentKeys[k] = ebiten.IsKeyPressed(k)
		return currentKeys[k] && !g.prevKeys[k]
	}

	if justPressed(ebiten.KeyW) {
		g.send(game.WaypointButtonPressed{})
	}
	space, enter := justPressed(ebiten.KeySpace), justPressed(ebiten.KeyEnter)
	if space || enter {
		g.send(game.CommitOrders{})
	}
	if justPressed(ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}
	if justPressed(ebiten.KeyC) {
		g.copyReport()
	}

	// Sim speed controls: P=pause/resume, ,=slower, .=faster.
	speeds := []float64{0, 0.5, 1, 2, 4}
	if justPressed(ebiten.KeyP) {
		if g.simSpeed > 0 {
			g.simSpeed = 0
		} else {
			g.simSpeed = 1
		}
	}
	if justPressed(ebiten.KeyComma) {
		for i, s := range speeds {
			if s >= g.simSpeed && i > 0 {
				g.simSpeed = speeds[i-1]
				break
			}
		}
	}
	if justPressed(ebiten.KeyPeriod) {
		for i, s := range speeds {
			if s > g.simSpeed {
				g.simSpeed = speeds[i]
				break
			}
		}
	}

	// Camera pan: arrow keys.
	const panSpeed = 6.0
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		g.cam.Pan(0, -panSpeed)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		g.cam.Pan(0, panSpeed)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		g.cam.Pan(-panSpeed, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		g.cam.Pan(panSpeed, 0)
	}

	// Camera zoom: mouse wheel or =/- keys.
	if _, wy := ebiten.Wheel(); wy != 0 {
		g.cam.ZoomBy(math.Pow(1.12, wy))
	}
	if justPressed(ebiten.KeyEqual) {
		g.cam.ZoomBy(1.25)
	}
	if justPressed(ebiten.KeyMinus) {
		g.cam.ZoomBy(1 / 1.25)
	}

	down := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	if pos, inField := g.cursorWorld(); inField {
		switch {
		case down && !g.prevMouseLeft:
			g.send(g.pressEvent(pos))
		case !down && g.prevMouseLeft:
			g.send(g.releaseEvent(pos))
		}
	}
	g.prevMouseLeft = down
	g.prevKeys = currentKeys
}

// cursorWorld returns the world position under the mouse and whether the
// cursor is over the playfield.
func (g *Game) cursorWorld() (game.Vec2, bool) {
	mx, my := ebiten.CursorPosition()
	if mx < 0 || my < 0 || mx >= g.gameWidth || my >= g.gameHeight {
		return game.Vec2{}, false
	}
	return g.cam.ScreenToWorld(float64(mx), float64(my), g.gameWidth, g.gameHeight), true
}

// pressEvent is a ClicksOnSquad when the press lands on a housed squad's
// marker, otherwise a plain Click.
func (g *Game) pressEvent(pos game.Vec2) game.InputEvent {
	for _, m := range g.squadMarkers() {
		if g.cam.Length(m.pos.DistTo(pos)) <= squadHitRadius {
			return game.ClicksOnSquad{Squad: m.squad, WorldPosition: pos}
		}
	}
	return game.Click{WorldPosition: pos, CameraPosition: game.V(g.cam.X, g.cam.Y)}
}

// releaseEvent resolves a release inside a building footprint to that
// building's door. Anything else is left for the simulation's picker.
func (g *Game) releaseEvent(pos game.Vec2) game.ReleasesMouseDown {
	if b, ok := g.sim.BuildingAt(pos); ok && len(b.Entries) > 0 {
		return game.ReleaseOn(b.Entries[0], pos)
	}
	return game.ReleasesMouseDown{WorldPosition: pos}
}

func (g *Game) copyReport() {
	if err := clipboard.WriteAll(g.sim.Report()); err != nil {
		g.log.Warn().Err(err).Msg("Copy report to clipboard failed")
		g.status = "clipboard unavailable"
		return
	}
	g.log.Info().Int("tick", g.sim.Tick()).Msg("Report copied to clipboard")
	g.status = fmt.Sprintf("report copied at tick %d", g.sim.Tick())
}

type squadMarker struct {
	squad game.SquadID
	pos   game.Vec2
	kind  game.SquadKind
}

// squadMarkers places one marker per housed squad, fanned out above its
// node so stacked squads stay clickable.
func (g *Game) squadMarkers() []squadMarker {
	var out []squadMarker
	for _, n := range g.sim.Network.Nodes() {
		for i, id := range g.sim.Occupancy.Occupants(n.ID) {
			sq, err := g.sim.Army.Squad(id)
			if err != nil {
				continue
			}
			off := game.V(float64(i)*markerSpacing, markerSpacing)
			out = append(out, squadMarker{squad: id, pos: n.Position.Add(off), kind: sq.Kind})
		}
	}
	return out
}

var (
	bgColor        = color.RGBA{R: 18, G: 22, B: 20, A: 255}
	buildingFill   = color.RGBA{R: 52, G: 50, B: 46, A: 255}
	buildingEdge   = color.RGBA{R: 96, G: 92, B: 84, A: 255}
	edgeColor      = color.RGBA{R: 70, G: 170, B: 110, A: 255}
	nodeColor      = color.RGBA{R: 200, G: 220, B: 200, A: 255}
	doorColor      = color.RGBA{R: 220, G: 180, B: 90, A: 255}
	orderColor     = color.RGBA{R: 240, G: 150, B: 50, A: 200}
	previewOK      = color.RGBA{R: 120, G: 230, B: 140, A: 220}
	previewBad     = color.RGBA{R: 230, G: 80, B: 70, A: 220}
	validDestColor = color.RGBA{R: 90, G: 200, B: 255, A: 160}
	flashColor     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

var squadColors = map[game.SquadKind]color.RGBA{
	game.SquadRifle:    {R: 210, G: 70, B: 70, A: 255},
	game.SquadAssault:  {R: 230, G: 130, B: 50, A: 255},
	game.SquadMarksman: {R: 160, G: 90, B: 220, A: 255},
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)

	g.drawBuildings(screen)
	g.drawDestinations(screen)
	g.drawEdges(screen)
	g.drawOrders(screen)
	g.drawPreview(screen)
	g.drawNodes(screen)
	g.drawSquads(screen)

	g.events.Draw(screen, g.gameWidth, g.height)
	if g.showHUD {
		g.drawHUD(screen)
	}
}

func (g *Game) toScreen(p game.Vec2) (float32, float32) {
	return g.cam.WorldToScreen(p, g.gameWidth, g.gameHeight)
}

func (g *Game) drawBuildings(screen *ebiten.Image) {
	for _, b := range g.sim.Buildings() {
		x, y := g.toScreen(b.Origin.Add(game.V(0, b.Width)))
		w := g.cam.Length(b.Width)
		vector.FillRect(screen, x+3, y+3, w, w, color.RGBA{R: 6, G: 6, B: 6, A: 90}, false)
		vector.FillRect(screen, x, y, w, w, buildingFill, false)
		vector.StrokeRect(screen, x, y, w, w, 1.0, buildingEdge, false)
		drawText(screen, b.Name, int(x)+4, int(y)+3, buildingEdge)
	}
}

func (g *Game) drawDestinations(screen *ebiten.Image) {
	valid := g.sim.Input.ValidDestinations()
	for id := range valid {
		p, err := g.sim.Network.Position(id)
		if err != nil {
			continue
		}
		x, y := g.toScreen(p)
		vector.FillCircle(screen, x, y, 10, validDestColor, true)
	}
}

func (g *Game) drawEdges(screen *ebiten.Image) {
	for _, e := range g.sim.Network.Edges() {
		a, _ := g.sim.Network.Position(e.A)
		b, _ := g.sim.Network.Position(e.B)
		ax, ay := g.toScreen(a)
		bx, by := g.toScreen(b)
		clr := edgeColor
		if f, ok := g.ov.freshEdges[e]; ok {
			clr = blend(edgeColor, flashColor, flash(f))
		}
		vector.StrokeLine(screen, ax, ay, bx, by, 3, clr, true)
	}
}

func (g *Game) drawOrders(screen *ebiten.Image) {
	for _, o := range g.ov.orders {
		for i := 1; i < len(o.Path); i++ {
			a, _ := g.sim.Network.Position(o.Path[i-1])
			b, _ := g.sim.Network.Position(o.Path[i])
			ax, ay := g.toScreen(a)
			bx, by := g.toScreen(b)
			vector.StrokeLine(screen, ax, ay, bx, by, 1.5, orderColor, true)
		}
		ex, ey := g.toScreen(o.EndPosition)
		vector.StrokeCircle(screen, ex, ey, 8, 1.5, orderColor, true)
	}
}

func (g *Game) drawPreview(screen *ebiten.Image) {
	p := g.sim.Input.Preview()
	if !p.Active {
		return
	}
	start, end, _, _ := p.Geometry(g.sim.Network)
	sx, sy := g.toScreen(start)
	ex, ey := g.toScreen(end)
	clr := previewOK
	if !p.Valid {
		clr = previewBad
	}
	vector.StrokeLine(screen, sx, sy, ex, ey, 2, clr, true)
	vector.StrokeCircle(screen, sx, sy, 7, 1.5, clr, true)
}

func (g *Game) drawNodes(screen *ebiten.Image) {
	for _, n := range g.sim.Network.Nodes() {
		x, y := g.toScreen(n.Position)
		if _, door := g.sim.HousingAt(n.ID).(*game.BuildingHousing); door {
			vector.FillRect(screen, x-4, y-4, 8, 8, doorColor, false)
		} else {
			r := float32(4)
			if n.ID == 0 {
				r = 6
			}
			vector.FillCircle(screen, x, y, r, nodeColor, true)
		}
		if f, ok := g.ov.freshNodes[n.ID]; ok {
			vector.StrokeCircle(screen, x, y, 6+float32(10*(1-flash(f))), 1, blend(bgColor, flashColor, flash(f)), true)
		}
		if f, ok := g.ov.arrivals[n.ID]; ok {
			vector.StrokeCircle(screen, x, y, 12, 2, blend(bgColor, validDestColor, flash(f)), true)
		}
	}
}

func (g *Game) drawSquads(screen *ebiten.Image) {
	dragged, dragging := g.sim.Input.DragSquad()
	for _, m := range g.squadMarkers() {
		x, y := g.toScreen(m.pos)
		clr := squadColors[m.kind]
		vector.FillCircle(screen, x, y, 7, clr, true)
		if dragging && m.squad == dragged {
			vector.StrokeCircle(screen, x, y, 10, 2, flashColor, true)
		}
		drawText(screen, m.kind.DisplayName()[:1], int(x)-3, int(y)-7, bgColor)
	}
	for _, r := range g.sim.Resolvers() {
		sq, err := g.sim.Army.Squad(r.Squad())
		if err != nil {
			continue
		}
		x, y := g.toScreen(r.Position())
		vector.FillCircle(screen, x, y, 7, squadColors[sq.Kind], true)
		vector.StrokeCircle(screen, x, y, 9, 1, flashColor, true)
		drawText(screen, sq.Label(), int(x)+10, int(y)-7, hudTextColor)
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	speedStr := fmt.Sprintf("%.1fx", g.simSpeed)
	if g.simSpeed == 0 {
		speedStr = "PAUSED"
	}
	lines := []string{
		fmt.Sprintf("TICK %d  MODE %s  INPUT %s", g.sim.Tick(), g.sim.Mode(), g.sim.Input.State()),
		fmt.Sprintf("SIM: %s  P=pause  ,/. speed", speedStr),
		fmt.Sprintf("nodes %d  pending orders %d  moving %d", g.sim.Network.Len(), g.sim.Orders.Len(), len(g.sim.Resolvers())),
		"[W] supply line  [Space] commit orders",
		"drag a squad onto a node to order a move",
		"[C] copy report  [H] toggle HUD",
		fmt.Sprintf("arrows=pan  scroll=zoom (%.1fx)", g.cam.Zoom),
	}
	if g.status != "" {
		lines = append(lines, g.status)
	}

	const padX, padY = 6, 5
	maxLen := 0
	for _, l := range lines {
		maxLen = max(maxLen, len(l))
	}
	boxW := float32(maxLen*charW + padX*2)
	boxH := float32(len(lines)*lineH + padY*2)
	bx := float32(6)
	by := float32(g.gameHeight) - boxH - 6

	vector.FillRect(screen, bx, by, boxW, boxH, color.RGBA{R: 6, G: 10, B: 8, A: 210}, false)
	vector.StrokeRect(screen, bx, by, boxW, boxH, 1.0, color.RGBA{R: 60, G: 100, B: 80, A: 180}, false)
	for i, line := range lines {
		drawText(screen, line, int(bx)+padX, int(by)+padY+i*lineH, hudTextColor)
	}
}

// blend mixes a toward b by t in [0, 1].
func blend(a, b color.RGBA, t float64) color.RGBA {
	t = math.Max(0, math.Min(1, t))
	mix := func(x, y uint8) uint8 { return uint8(float64(x) + (float64(y)-float64(x))*t) }
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}
