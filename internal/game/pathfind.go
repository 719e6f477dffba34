package game

import (
	"cmp"
	"fmt"
	"slices"
)

// A* step costs between directly connected nodes. Axis-aligned neighbours
// (sharing an x or y coordinate) cost straightCost, everything else
// diagonalCost, mirroring an 8-way grid even though the network is not one.
const (
	straightCost  = 10
	diagonalCost  = 14
	heuristicGain = 10
)

type rankedNode struct {
	id   NodeID
	dist float64
}

// NearestNodes returns up to k node ids ordered by ascending L1 distance to
// pos. Nodes at exactly the same distance are ordered by id, lowest first.
func (nw *Network) NearestNodes(pos Vec2, k int) []NodeID {
	if k <= 0 || len(nw.positions) == 0 {
		return nil
	}
	ranked := make([]rankedNode, len(nw.positions))
	for i, p := range nw.positions {
		ranked[i] = rankedNode{id: NodeID(i), dist: pos.L1(p)}
	}
	slices.SortFunc(ranked, func(a, b rankedNode) int {
		if c := cmp.Compare(a.dist, b.dist); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})
	if k > len(ranked) {
		k = len(ranked)
	}
	out := make([]NodeID, k)
	for i := range out {
		out[i] = ranked[i].id
	}
	return out
}

// Nearest returns the single closest node to pos.
func (nw *Network) Nearest(pos Vec2) (NodeID, error) {
	ids := nw.NearestNodes(pos, 1)
	if len(ids) == 0 {
		return 0, ErrEmptyGraph
	}
	return ids[0], nil
}

// --- A* pathfinding ---

func (nw *Network) stepCost(a, b NodeID) int {
	if nw.positions[a].AxisAligned(nw.positions[b]) {
		return straightCost
	}
	return diagonalCost
}

func (nw *Network) heuristic(n, goal NodeID) float64 {
	return heuristicGain * nw.positions[n].L1(nw.positions[goal])
}

// ShortestPath returns the node ids from start to end inclusive using A*.
//
// The open set is scanned linearly in insertion order and the first node
// with the lowest f wins, so repeated calls on the same graph return the
// same path.
func (nw *Network) ShortestPath(start, end NodeID) ([]NodeID, error) {
	if len(nw.positions) == 0 {
		return nil, ErrEmptyGraph
	}
	if !nw.Has(start) {
		return nil, fmt.Errorf("path start %d: %w", start, ErrNotFound)
	}
	if !nw.Has(end) {
		return nil, fmt.Errorf("path end %d: %w", end, ErrNotFound)
	}

	open := []NodeID{start}
	inOpen := map[NodeID]bool{start: true}
	cameFrom := make(map[NodeID]NodeID)
	g := map[NodeID]float64{start: 0}
	f := map[NodeID]float64{start: nw.heuristic(start, end)}

	for len(open) > 0 {
		best := 0
		for i := 1; i < len(open); i++ {
			if f[open[i]] < f[open[best]] {
				best = i
			}
		}
		cur := open[best]
		if cur == end {
			return buildPath(cameFrom, start, end), nil
		}
		open = slices.Delete(open, best, best+1)
		delete(inOpen, cur)

		for _, next := range nw.neighbours(cur) {
			tentative := g[cur] + float64(nw.stepCost(cur, next))
			if prev, seen := g[next]; seen && tentative >= prev {
				continue
			}
			cameFrom[next] = cur
			g[next] = tentative
			f[next] = tentative + nw.heuristic(next, end)
			if !inOpen[next] {
				open = append(open, next)
				inOpen[next] = true
			}
		}
	}
	return nil, fmt.Errorf("path %d -> %d: %w", start, end, ErrNoPath)
}

func buildPath(cameFrom map[NodeID]NodeID, start, end NodeID) []NodeID {
	path := []NodeID{end}
	for n := end; n != start; {
		n = cameFrom[n]
		path = append(path, n)
	}
	slices.Reverse(path)
	return path
}

// PathCost sums the A* step costs along path. It does not check that
// consecutive ids are connected.
func (nw *Network) PathCost(path []NodeID) int {
	total := 0
	for i := 1; i < len(path); i++ {
		total += nw.stepCost(path[i-1], path[i])
	}
	return total
}

// ConnectedSet returns every node reachable from any of the seeds, seeds
// included. The walk is an iterative breadth-first search.
func (nw *Network) ConnectedSet(seeds ...NodeID) (map[NodeID]struct{}, error) {
	visited := make(map[NodeID]struct{})
	frontier := make([]NodeID, 0, len(seeds))
	for _, s := range seeds {
		if !nw.Has(s) {
			return nil, fmt.Errorf("connected set seed %d: %w", s, ErrNotFound)
		}
		if _, ok := visited[s]; ok {
			continue
		}
		visited[s] = struct{}{}
		frontier = append(frontier, s)
	}
	for len(frontier) > 0 {
		cur := frontier[0]
		frontier = frontier[1:]
		for next := range nw.adjacency[cur] {
			if _, ok := visited[next]; ok {
				continue
			}
			visited[next] = struct{}{}
			frontier = append(frontier, next)
		}
	}
	return visited, nil
}
