package viewer

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/supply-lines/internal/game"
)

const (
	logPanelWidth = 340
	logMaxEntries = 60
	logLineHeight = 14
)

// categoryColors tints the marker next to each event-log line.
var categoryColors = map[string]color.RGBA{
	game.CatPhase:   {R: 230, G: 200, B: 80, A: 255},
	game.CatInput:   {R: 140, G: 140, B: 150, A: 255},
	game.CatNetwork: {R: 90, G: 190, B: 120, A: 255},
	game.CatOrder:   {R: 230, G: 150, B: 60, A: 255},
	game.CatMove:    {R: 90, G: 150, B: 230, A: 255},
}

// EventLog is a fixed-size ring of the most recent SimLog entries, rendered
// as a side panel.
type EventLog struct {
	entries []game.SimLogEntry
	head    int
	count   int
	cursor  int // SimLog entries already pulled
}

// NewEventLog creates an event log with a fixed capacity.
func NewEventLog() *EventLog {
	return &EventLog{entries: make([]game.SimLogEntry, logMaxEntries)}
}

// Add appends an entry, overwriting the oldest once full.
func (el *EventLog) Add(e game.SimLogEntry) {
	el.entries[el.head] = e
	el.head = (el.head + 1) % logMaxEntries
	if el.count < logMaxEntries {
		el.count++
	}
}

// Pull copies every SimLog entry recorded since the previous call.
func (el *EventLog) Pull(sl *game.SimLog) {
	for _, e := range sl.Since(el.cursor) {
		el.Add(e)
	}
	el.cursor = sl.Len()
}

// Recent returns entries in chronological order (oldest first).
func (el *EventLog) Recent() []game.SimLogEntry {
	result := make([]game.SimLogEntry, el.count)
	for i := 0; i < el.count; i++ {
		idx := (el.head - el.count + i + logMaxEntries) % logMaxEntries
		result[i] = el.entries[idx]
	}
	return result
}

// Draw renders the panel on the right side of the screen.
func (el *EventLog) Draw(screen *ebiten.Image, panelX, panelH int) {
	vector.FillRect(screen, float32(panelX), 0, logPanelWidth, float32(panelH), color.RGBA{R: 10, G: 12, B: 14, A: 248}, false)
	vector.StrokeLine(screen, float32(panelX), 0, float32(panelX), float32(panelH), 1.0, color.RGBA{R: 50, G: 60, B: 70, A: 255}, false)

	vector.FillRect(screen, float32(panelX), 0, logPanelWidth, 18, color.RGBA{R: 20, G: 26, B: 32, A: 255}, false)
	drawText(screen, "EVENT LOG", panelX+8, 2, hudTextColor)
	vector.StrokeLine(screen, float32(panelX), 18, float32(panelX+logPanelWidth), 18, 1.0, color.RGBA{R: 50, G: 70, B: 80, A: 200}, false)

	entries := el.Recent()
	maxVisible := (panelH - 24) / logLineHeight
	if len(entries) > maxVisible {
		entries = entries[len(entries)-maxVisible:]
	}

	const highlight = 3
	y := 22
	for i, e := range entries {
		if i >= len(entries)-highlight {
			vector.FillRect(screen, float32(panelX+2), float32(y), logPanelWidth-4, logLineHeight, color.RGBA{R: 30, G: 36, B: 44, A: 160}, false)
		}
		dot, ok := categoryColors[e.Category]
		if !ok {
			dot = color.RGBA{R: 200, G: 200, B: 200, A: 255}
		}
		vector.FillRect(screen, float32(panelX+5), float32(y+4), 3, 6, dot, false)

		line := fmt.Sprintf("%4d %-10s %s %s", e.Tick, e.Squad, e.Key, e.Value)
		drawText(screen, line, panelX+12, y, hudTextColor)
		y += logLineHeight
	}
}
