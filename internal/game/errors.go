package game

import "errors"

var (
	// ErrNotFound is returned when a node, squad or building id is unknown.
	ErrNotFound = errors.New("not found")
	// ErrEmptyGraph is returned by operations that need at least one node.
	ErrEmptyGraph = errors.New("supply network is empty")
	// ErrNoPath is returned when the target cannot be reached from the start.
	ErrNoPath = errors.New("no path")
	// ErrInvalidOrder is returned when an order cannot be built: the squad is
	// not housed anywhere, the target is outside its reachable set, or the
	// path is empty.
	ErrInvalidOrder = errors.New("invalid order")
)
