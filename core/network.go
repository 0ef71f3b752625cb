package core

import (
	"fmt"
	"log/slog"
	"maps"
	"math/rand/v2"
	"slices"

	"github.com/encodeous/linkstate/perf"
	"github.com/encodeous/linkstate/state"
)

// Network is the simulated topology. It owns every router and the connection table, and is the only
// authority on which port leads where.
type Network struct {
	routers []*Router
	index   map[state.RouterId]int
	// connections holds, per router, the directed edge records in creation order
	connections map[state.RouterId][]state.Edge
	// reachable mirrors connections as plain adjacency for cheap queries
	reachable map[state.RouterId]map[state.RouterId]struct{}
	timers    state.SimCfg
	log       *slog.Logger
}

// NewNetwork builds the routers and links described by cfg. cfg must already be expanded and validated.
func NewNetwork(cfg *state.SimCfg, log *slog.Logger, rng *rand.Rand) (*Network, error) {
	n := &Network{
		index:       make(map[state.RouterId]int),
		connections: make(map[state.RouterId][]state.Edge),
		reachable:   make(map[state.RouterId]map[state.RouterId]struct{}),
		timers:      *cfg,
		log:         log,
	}
	for _, rcfg := range cfg.Routers {
		if _, ok := n.index[rcfg.Id]; ok {
			return nil, fmt.Errorf("duplicate router id %d", rcfg.Id)
		}
		n.index[rcfg.Id] = len(n.routers)
		n.routers = append(n.routers, NewRouter(rcfg, *cfg, n, log, rng))
		n.connections[rcfg.Id] = make([]state.Edge, 0)
		n.reachable[rcfg.Id] = make(map[state.RouterId]struct{})
	}
	for _, link := range cfg.Links {
		err := n.CreateLink(link.Cost, link.From, link.FromPort, link.To, link.ToPort)
		if err != nil {
			return nil, err
		}
	}
	return n, nil
}

// Router returns the router with the given id, or nil.
func (n *Network) Router(id state.RouterId) *Router {
	idx, ok := n.index[id]
	if !ok {
		return nil
	}
	return n.routers[idx]
}

// Routers returns the routers in tick order.
func (n *Network) Routers() []*Router {
	return slices.Clone(n.routers)
}

// Connections returns a copy of the edge records of a router.
func (n *Network) Connections(id state.RouterId) []state.Edge {
	return slices.Clone(n.connections[id])
}

// Reachable returns the routers directly connected to id, sorted.
func (n *Network) Reachable(id state.RouterId) []state.RouterId {
	return slices.Sorted(maps.Keys(n.reachable[id]))
}

// Tick runs one tick on every router, in a fixed order.
func (n *Network) Tick() {
	for _, r := range n.routers {
		r.Tick()
	}
}

func (n *Network) EdgeAt(id state.RouterId, port state.Port) (state.Edge, bool) {
	for _, edge := range n.connections[id] {
		if edge.LocalPort == port {
			return edge, true
		}
	}
	return state.Edge{}, false
}

// Deliver hands a message sent out of a router's port to whatever is attached to the other end.
// It returns false if nothing is attached. Delivery is synchronous and never retried.
func (n *Network) Deliver(from state.RouterId, port state.Port, kind state.MsgKind, payload any) bool {
	edge, ok := n.EdgeAt(from, port)
	if !ok {
		perf.DeliveryFailures.Add(1)
		return false
	}
	dst := n.Router(edge.Remote)
	state.Assert(dst != nil, "edge %d:%s points to unknown router %d", from, port, edge.Remote)
	if dst == nil {
		return false
	}
	perf.Delivered.Add(1)
	dst.Receive(edge.RemotePort, kind, payload)
	return true
}

// CreateLink connects port pa of router a to port pb of router b, and plugs the ports in on both routers.
func (n *Network) CreateLink(cost uint32, a state.RouterId, pa state.Port, b state.RouterId, pb state.Port) error {
	if a == b {
		return fmt.Errorf("router %d cannot link to itself", a)
	}
	if cost == 0 {
		return fmt.Errorf("link %d-%d must have a positive cost", a, b)
	}
	ra, rb := n.Router(a), n.Router(b)
	if ra == nil {
		return fmt.Errorf("router %d not found", a)
	}
	if rb == nil {
		return fmt.Errorf("router %d not found", b)
	}
	if _, ok := n.reachable[a][b]; ok {
		return fmt.Errorf("routers %d and %d are already connected", a, b)
	}
	if _, ok := n.EdgeAt(a, pa); ok {
		return fmt.Errorf("port %s of router %d is already connected", pa, a)
	}
	if _, ok := n.EdgeAt(b, pb); ok {
		return fmt.Errorf("port %s of router %d is already connected", pb, b)
	}

	edge := state.Edge{Cost: cost, LocalPort: pa, RemotePort: pb, Remote: b}
	n.connections[a] = append(n.connections[a], edge)
	n.connections[b] = append(n.connections[b], edge.Mirror(a))
	n.reachable[a][b] = struct{}{}
	n.reachable[b][a] = struct{}{}
	ra.ConnectPort(pa)
	rb.ConnectPort(pb)

	perf.TopologyMutations.Add(1)
	n.log.Info("link created", "from", a, "from_port", pa, "to", b, "to_port", pb, "cost", cost)
	return nil
}

// CutLink removes the link attached to port of router id, together with its mirror.
// The routers are not told; they find out when a delivery or HELLO on the port fails.
func (n *Network) CutLink(id state.RouterId, port state.Port) (state.Edge, error) {
	edge, ok := n.EdgeAt(id, port)
	if !ok {
		return state.Edge{}, fmt.Errorf("port %s of router %d is not connected", port, id)
	}
	mirror := edge.Mirror(id)
	n.connections[id] = slices.DeleteFunc(n.connections[id], func(e state.Edge) bool {
		return e == edge
	})
	n.connections[edge.Remote] = slices.DeleteFunc(n.connections[edge.Remote], func(e state.Edge) bool {
		return e == mirror
	})
	delete(n.reachable[id], edge.Remote)
	delete(n.reachable[edge.Remote], id)

	perf.TopologyMutations.Add(1)
	n.log.Info("link cut", "from", id, "from_port", port, "to", edge.Remote, "to_port", edge.RemotePort)
	return edge, nil
}
