package state

import (
	"fmt"
	"maps"
	"net/netip"
	"slices"
	"strings"
)

// RouterId identifies a router, it must be positive and unique within a network.
type RouterId uint32

// Port is a router-local label for one link endpoint, e.g. "A".
type Port string

type MsgKind uint8

const (
	HelloAck MsgKind = iota
	Hello
	LsaMsg
)

func (k MsgKind) String() string {
	switch k {
	case HelloAck:
		return "HELLO-ACK"
	case Hello:
		return "HELLO"
	case LsaMsg:
		return "LSA"
	}
	return fmt.Sprintf("KIND(%d)", uint8(k))
}

// Link is what a router knows about the far end of one of its ports.
type Link struct {
	Router RouterId
	Cost   uint32
}

// Edge is a directed connection record held by the topology.
type Edge struct {
	Cost       uint32
	LocalPort  Port
	RemotePort Port
	Remote     RouterId
}

// Mirror returns the record the remote router holds for the same connection.
func (e Edge) Mirror(local RouterId) Edge {
	return Edge{
		Cost:       e.Cost,
		LocalPort:  e.RemotePort,
		RemotePort: e.LocalPort,
		Remote:     local,
	}
}

func (e Edge) String() string {
	return fmt.Sprintf("(cost: %d, %s -> %d:%s)", e.Cost, e.LocalPort, e.Remote, e.RemotePort)
}

// DbEntry is the accepted state for one origin in a router's LSA database.
type DbEntry struct {
	Seqno      uint32
	Neighbours map[Port]Link
	Prefixes   []netip.Prefix
}

// RouterState holds everything a single router owns. It must only be accessed by that router's handlers.
type RouterState struct {
	Id          RouterId
	Active      bool
	ActivePorts map[Port]struct{}
	Neighbours  map[Port]Link
	Database    map[RouterId]DbEntry
	Prefixes    []netip.Prefix
	// Seqno is the next unused sequence number for self-originated LSAs
	Seqno    uint32
	Deferred []Action

	HelloInterval int
	LsaInterval   int
	HelloCounter  int
	LsaCounter    int
}

func NewRouterState(id RouterId) *RouterState {
	return &RouterState{
		Id:          id,
		Active:      true,
		ActivePorts: make(map[Port]struct{}),
		Neighbours:  make(map[Port]Link),
		Database:    make(map[RouterId]DbEntry),

		HelloInterval: HelloInterval,
		LsaInterval:   LsaInterval,
	}
}

// Ports returns the active ports in a stable order.
func (s *RouterState) Ports() []Port {
	return slices.Sorted(maps.Keys(s.ActivePorts))
}

func (s *RouterState) IsActivePort(port Port) bool {
	_, ok := s.ActivePorts[port]
	return ok
}

// Snapshot copies the neighbour table so later changes do not leak into an LSA.
func (s *RouterState) Snapshot() map[Port]Link {
	return maps.Clone(s.Neighbours)
}

// PortTo returns the cheapest active port leading directly to the given neighbour.
func (s *RouterState) PortTo(neigh RouterId) (Port, bool) {
	best := NoPort
	bestCost := ^uint32(0)
	for _, port := range s.Ports() {
		link, ok := s.Neighbours[port]
		if !ok || link.Router != neigh {
			continue
		}
		if best == NoPort || link.Cost < bestCost {
			best = port
			bestCost = link.Cost
		}
	}
	return best, best != NoPort
}

// Enqueue schedules an action for the start of the next tick.
func (s *RouterState) Enqueue(action Action) {
	s.Deferred = append(s.Deferred, action)
}

// TakeDeferred returns and clears the pending actions.
func (s *RouterState) TakeDeferred() []Action {
	pending := s.Deferred
	s.Deferred = nil
	return pending
}

func (s *RouterState) StringNeighbours() string {
	out := make([]string, 0, len(s.Neighbours))
	for _, port := range slices.Sorted(maps.Keys(s.Neighbours)) {
		link := s.Neighbours[port]
		out = append(out, fmt.Sprintf("%s -> %d (cost: %d)", port, link.Router, link.Cost))
	}
	return strings.Join(out, "\n")
}

func (s *RouterState) StringDatabase() string {
	out := make([]string, 0, len(s.Database))
	for _, origin := range slices.Sorted(maps.Keys(s.Database)) {
		entry := s.Database[origin]
		neighs := make([]string, 0, len(entry.Neighbours))
		for _, port := range slices.Sorted(maps.Keys(entry.Neighbours)) {
			link := entry.Neighbours[port]
			neighs = append(neighs, fmt.Sprintf("%d/%d", link.Router, link.Cost))
		}
		out = append(out, fmt.Sprintf("%d seqno %d [%s]", origin, entry.Seqno, strings.Join(neighs, " ")))
	}
	return strings.Join(out, "\n")
}

// Route is a selected path towards a destination router.
type Route struct {
	Dest    RouterId
	NextHop RouterId
	Port    Port
	Cost    uint32
	Path    []RouterId
}

func (r Route) String() string {
	if r.Port == NoPort {
		return fmt.Sprintf("(dest: %d, local)", r.Dest)
	}
	return fmt.Sprintf("(dest: %d, nh: %d, port: %s, cost: %d)", r.Dest, r.NextHop, r.Port, r.Cost)
}

type RouteTable map[RouterId]Route

func (t RouteTable) String() string {
	out := make([]string, 0, len(t))
	for _, dest := range slices.Sorted(maps.Keys(t)) {
		out = append(out, fmt.Sprintf("%d via %s", dest, t[dest]))
	}
	return strings.Join(out, "\n")
}
