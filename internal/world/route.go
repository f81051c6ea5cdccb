package world

import (
	"container/heap"

	"github.com/Faultbox/pitrunner/pkg/tilemap"
)

// RouteStep is one cell of a route. Jump is set when the hero has to jump
// from the previous step to reach it.
type RouteStep struct {
	Cell tilemap.Coord
	Jump bool
}

// routeNode represents a standing cell in the A* search.
type routeNode struct {
	cell   tilemap.Coord
	g      float32 // Cost from start
	h      float32 // Heuristic (estimated cost to goal)
	f      float32 // Total cost (g + h)
	jump   bool    // Reached from parent by a jump
	parent *routeNode
	index  int // Index in heap
}

// routeHeap implements a priority queue for A*.
type routeHeap []*routeNode

func (h routeHeap) Len() int           { return len(h) }
func (h routeHeap) Less(i, j int) bool { return h[i].f < h[j].f }
func (h routeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *routeHeap) Push(x any) {
	n := len(*h)
	node := x.(*routeNode)
	node.index = n
	*h = append(*h, node)
}

func (h *routeHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*h = old[0 : n-1]
	return node
}

// Route costs.
const (
	walkCost     = float32(1.0)
	jumpCostTile = float32(1.5)
)

// RouteFinder searches side-view routes over standing cells: empty cells
// with room for the hero and ground below.
type RouteFinder struct {
	grid    *tilemap.Grid
	maxJump int // Longest jump in tiles
	width   int
	height  int
}

// NewRouteFinder creates a route finder. maxJump is the longest horizontal
// jump in tiles; 0 disables jumping.
func NewRouteFinder(grid *tilemap.Grid, maxJump int) *RouteFinder {
	if grid == nil {
		return nil
	}
	return &RouteFinder{
		grid:    grid,
		maxJump: maxJump,
		width:   grid.Width,
		height:  grid.Height,
	}
}

// IsStanding reports whether the hero can stand in c.
func (rf *RouteFinder) IsStanding(c tilemap.Coord) bool {
	if rf == nil || !rf.grid.InBounds(c) {
		return false
	}
	return !rf.grid.IsOccupied(c) && !rf.grid.IsOccupied(c.Up()) && rf.grid.IsOccupied(c.Down())
}

// FindRoute finds the cheapest route from start to goal using A*.
// Returns nil if no route exists or either end is not a standing cell.
func (rf *RouteFinder) FindRoute(start, goal tilemap.Coord) []RouteStep {
	if rf == nil || !rf.IsStanding(start) || !rf.IsStanding(goal) {
		return nil
	}

	openSet := &routeHeap{}
	heap.Init(openSet)

	closedSet := make(map[int]bool)
	nodeMap := make(map[int]*routeNode)

	startNode := &routeNode{cell: start, h: rf.heuristic(start, goal)}
	startNode.f = startNode.h
	heap.Push(openSet, startNode)
	nodeMap[rf.key(start)] = startNode

	maxIterations := rf.width * rf.height // Prevent infinite loops
	iterations := 0

	for openSet.Len() > 0 && iterations < maxIterations {
		iterations++

		current := heap.Pop(openSet).(*routeNode)
		if current.cell == goal {
			return rf.reconstruct(current)
		}
		closedSet[rf.key(current.cell)] = true

		for _, e := range rf.edges(current.cell) {
			if closedSet[rf.key(e.to)] {
				continue
			}

			g := current.g + e.cost
			neighbor, exists := nodeMap[rf.key(e.to)]
			if !exists {
				neighbor = &routeNode{
					cell:   e.to,
					g:      g,
					h:      rf.heuristic(e.to, goal),
					jump:   e.jump,
					parent: current,
				}
				neighbor.f = neighbor.g + neighbor.h
				nodeMap[rf.key(e.to)] = neighbor
				heap.Push(openSet, neighbor)
			} else if g < neighbor.g {
				neighbor.g = g
				neighbor.f = neighbor.g + neighbor.h
				neighbor.jump = e.jump
				neighbor.parent = current
				heap.Fix(openSet, neighbor.index)
			}
		}
	}

	return nil
}

type routeEdge struct {
	to   tilemap.Coord
	cost float32
	jump bool
}

// edges lists the moves out of a standing cell: walking, stepping up one
// tile, walking off a ledge, and jumping up to maxJump tiles.
func (rf *RouteFinder) edges(c tilemap.Coord) []routeEdge {
	var out []routeEdge
	for _, dir := range [2]int{-1, 1} {
		next := c.Offset(dir, 0)
		switch {
		case rf.IsStanding(next):
			out = append(out, routeEdge{to: next, cost: walkCost})
		case rf.grid.IsOccupied(next):
			if up := next.Up(); !rf.grid.IsOccupied(c.Up().Up()) && rf.IsStanding(up) {
				out = append(out, routeEdge{to: up, cost: walkCost})
			}
		default:
			if land, ok := rf.fall(next); ok {
				out = append(out, routeEdge{to: land, cost: walkCost})
			}
		}

		for d := 2; d <= rf.maxJump; d++ {
			// Land on a surface at most one tile higher
			for dy := 1; dy >= -d; dy-- {
				to := c.Offset(dir*d, dy)
				if rf.IsStanding(to) {
					out = append(out, routeEdge{to: to, cost: float32(d) * jumpCostTile, jump: true})
					break
				}
			}
		}
	}
	return out
}

// fall drops from an empty cell to the first standing cell below.
func (rf *RouteFinder) fall(c tilemap.Coord) (tilemap.Coord, bool) {
	for ; c.Y >= 0; c = c.Down() {
		if rf.grid.IsOccupied(c) {
			return tilemap.Coord{}, false
		}
		if rf.IsStanding(c) {
			return c, true
		}
	}
	return tilemap.Coord{}, false
}

// heuristic is the horizontal distance, which no move beats per tile.
func (rf *RouteFinder) heuristic(a, b tilemap.Coord) float32 {
	return float32(abs(b.X - a.X))
}

func (rf *RouteFinder) key(c tilemap.Coord) int {
	return c.Y*rf.width + c.X
}

func (rf *RouteFinder) reconstruct(node *routeNode) []RouteStep {
	var route []RouteStep
	for node != nil {
		route = append(route, RouteStep{Cell: node.cell, Jump: node.jump})
		node = node.parent
	}
	// Reverse route (it's built from goal to start)
	for i, j := 0, len(route)-1; i < j; i, j = i+1, j-1 {
		route[i], route[j] = route[j], route[i]
	}
	return route
}

// Jumps counts the jump steps of a route.
func Jumps(route []RouteStep) int {
	n := 0
	for _, s := range route {
		if s.Jump {
			n++
		}
	}
	return n
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
