package game

import (
	"fmt"
	"slices"
)

// OrderCommand is what an order tells a squad to do.
type OrderCommand uint8

const (
	CommandMove OrderCommand = iota
)

func (c OrderCommand) String() string {
	if c == CommandMove {
		return "move"
	}
	return "unknown"
}

// Order is a planned movement for one squad along a resolved node path.
type Order struct {
	Squad         SquadID
	Path          []NodeID
	StartPosition Vec2
	EndPosition   Vec2
	Command       OrderCommand
}

// NewMoveOrder builds a move order, taking the start and end positions from
// the first and last nodes of path.
func NewMoveOrder(nw *Network, squad SquadID, path []NodeID) (Order, error) {
	if len(path) == 0 {
		return Order{}, fmt.Errorf("order for %s: empty path: %w", squad, ErrInvalidOrder)
	}
	start, err := nw.Position(path[0])
	if err != nil {
		return Order{}, err
	}
	end, err := nw.Position(path[len(path)-1])
	if err != nil {
		return Order{}, err
	}
	return Order{
		Squad:         squad,
		Path:          slices.Clone(path),
		StartPosition: start,
		EndPosition:   end,
		Command:       CommandMove,
	}, nil
}

// Target is the final node of the order's path.
func (o Order) Target() NodeID { return o.Path[len(o.Path)-1] }

// OrderListener observes the queue, typically to draw order previews.
type OrderListener interface {
	OrderSubmitted(o Order, pending int)
	OrderWithdrawn(o Order, pending int)
}

// OrderQueue holds orders planned during the command phase until they are
// committed.
type OrderQueue struct {
	pending   []Order
	listeners []OrderListener
}

// NewOrderQueue returns an empty queue.
func NewOrderQueue() *OrderQueue {
	return &OrderQueue{}
}

// Subscribe registers a listener for submissions.
func (q *OrderQueue) Subscribe(l OrderListener) {
	q.listeners = append(q.listeners, l)
}

// Submit appends o and notifies listeners before returning, so they see the
// queue with o already in it.
func (q *OrderQueue) Submit(o Order) {
	q.pending = append(q.pending, o)
	n := len(q.pending)
	for _, l := range q.listeners {
		l.OrderSubmitted(o, n)
	}
}

// DrainAll returns every pending order and empties the queue.
func (q *OrderQueue) DrainAll() []Order {
	out := q.pending
	q.pending = nil
	if out == nil {
		return []Order{}
	}
	return out
}

// Withdraw removes every pending order for squad and returns how many were
// removed. A squad re-ordered during the same command phase keeps only its
// latest order.
func (q *OrderQueue) Withdraw(squad SquadID) int {
	var removed []Order
	q.pending = slices.DeleteFunc(q.pending, func(o Order) bool {
		if o.Squad == squad {
			removed = append(removed, o)
			return true
		}
		return false
	})
	for _, o := range removed {
		for _, l := range q.listeners {
			l.OrderWithdrawn(o, len(q.pending))
		}
	}
	return len(removed)
}

// Len returns the number of pending orders.
func (q *OrderQueue) Len() int { return len(q.pending) }

// Pending returns a copy of the pending orders in submission order.
func (q *OrderQueue) Pending() []Order { return slices.Clone(q.pending) }

// PendingFor returns the pending orders for one squad.
func (q *OrderQueue) PendingFor(squad SquadID) []Order {
	var out []Order
	for _, o := range q.pending {
		if o.Squad == squad {
			out = append(out, o)
		}
	}
	return out
}
