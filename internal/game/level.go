package game

import (
	"fmt"
	"slices"
)

// City block geometry, in world units.
const (
	buildingWidth = 0.6
	buildingGap   = 0.08
	streetWidth   = 0.4
	sidewalkWidth = 0.3

	// blockWidth = sidewalk + building + gap + building + sidewalk.
	blockWidth = sidewalkWidth*2 + buildingWidth*2 + buildingGap
)

// Building is a square structure squads can shelter in. Entries are the
// network nodes at its doors.
type Building struct {
	Name    string
	Origin  Vec2 // bottom-left corner
	Width   float64
	Entries []NodeID
}

// Center returns the middle of the footprint.
func (b *Building) Center() Vec2 {
	return b.Origin.Add(V(b.Width/2, b.Width/2))
}

// Contains reports whether p lies on the footprint.
func (b *Building) Contains(p Vec2) bool {
	return p.X >= b.Origin.X && p.X <= b.Origin.X+b.Width &&
		p.Y >= b.Origin.Y && p.Y <= b.Origin.Y+b.Width
}

// DoorPosition is the single entry point of a building: the middle of its
// bottom edge.
func DoorPosition(origin Vec2, width float64) Vec2 {
	return V(origin.X+width/2, origin.Y)
}

// AddBuilding registers a building and creates one network node per door.
func (s *Simulation) AddBuilding(name string, origin Vec2, width float64, doors ...Vec2) *Building {
	b := &Building{
		Name:    name,
		Origin:  origin,
		Width:   width,
		Entries: s.Editor.RegisterEntryPoints(doors),
	}
	s.buildings = append(s.buildings, b)
	h := &BuildingHousing{building: b, tracker: s.Occupancy}
	for _, id := range b.Entries {
		s.byEntry[id] = h
	}
	s.record("", CatNetwork, "building", fmt.Sprintf("%s entries %v", name, b.Entries), float64(len(b.Entries)))
	return b
}

// Buildings returns the registered buildings in creation order.
func (s *Simulation) Buildings() []*Building {
	return slices.Clone(s.buildings)
}

// Building looks a building up by name.
func (s *Simulation) Building(name string) (*Building, error) {
	for _, b := range s.buildings {
		if b.Name == name {
			return b, nil
		}
	}
	return nil, fmt.Errorf("building %q: %w", name, ErrNotFound)
}

// BuildingAt returns the building whose footprint contains p, if any.
func (s *Simulation) BuildingAt(p Vec2) (*Building, bool) {
	for _, b := range s.buildings {
		if b.Contains(p) {
			return b, true
		}
	}
	return nil, false
}

// HousingAt returns the housing a node belongs to: its building when the
// node is an entry point, otherwise the node itself.
func (s *Simulation) HousingAt(id NodeID) Housing {
	if h, ok := s.byEntry[id]; ok {
		return h
	}
	return &NodeHousing{id: id, tracker: s.Occupancy}
}

// HousingOf returns the housing currently holding squad. A squad in transit
// is not housed anywhere.
func (s *Simulation) HousingOf(squad SquadID) (Housing, error) {
	node, ok := s.Occupancy.Locate(squad)
	if !ok {
		return nil, fmt.Errorf("squad %s is not housed: %w", squad, ErrInvalidOrder)
	}
	return s.HousingAt(node), nil
}

// LevelSpec describes the opening layout of a level.
type LevelSpec struct {
	Start      Vec2
	CityBlocks int
	Roster     []SquadKind
	// Deploy names the building the roster starts in; empty means the
	// start node.
	Deploy string
}

// DefaultLevelSpec is four city blocks east of the origin with the default
// roster at the start node.
func DefaultLevelSpec() LevelSpec {
	return LevelSpec{
		Start:      V(0, 0),
		CityBlocks: 4,
		Roster:     []SquadKind{SquadRifle, SquadAssault, SquadMarksman},
	}
}

// BuildLevel creates a simulation for spec: city blocks of four buildings
// each, every building with one door node, and the roster deployed. The
// returned simulation is already in ModeCommand.
func BuildLevel(spec LevelSpec, opts ...Option) (*Simulation, error) {
	army := NewArmy(spec.Roster...)
	s := NewSimulation(spec.Start, append([]Option{WithArmy(army)}, opts...)...)

	for i := 0; i < spec.CityBlocks; i++ {
		block := V(spec.Start.X+(blockWidth+streetWidth)*float64(i), spec.Start.Y)
		lots := []Vec2{
			V(block.X+sidewalkWidth, block.Y+sidewalkWidth),
			V(block.X+sidewalkWidth+buildingGap+buildingWidth, block.Y+sidewalkWidth),
			V(block.X+sidewalkWidth, block.Y+sidewalkWidth+buildingGap+buildingWidth),
			V(block.X+sidewalkWidth+buildingGap+buildingWidth, block.Y+sidewalkWidth+buildingGap+buildingWidth),
		}
		for n, origin := range lots {
			name := fmt.Sprintf("building%d%d", i, n+1)
			s.AddBuilding(name, origin, buildingWidth, DoorPosition(origin, buildingWidth))
		}
	}

	deployAt := NodeID(0)
	if spec.Deploy != "" {
		b, err := s.Building(spec.Deploy)
		if err != nil {
			return nil, err
		}
		if len(b.Entries) == 0 {
			return nil, fmt.Errorf("building %q has no entry points: %w", spec.Deploy, ErrNotFound)
		}
		deployAt = b.Entries[0]
	}
	for _, sq := range s.Army.Squads() {
		if err := s.Deploy(sq.ID, deployAt); err != nil {
			return nil, err
		}
	}
	s.Begin()
	return s, nil
}
