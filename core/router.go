package core

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"math/rand/v2"
	"net/netip"
	"slices"

	"github.com/encodeous/linkstate/perf"
	"github.com/encodeous/linkstate/state"
	"github.com/jellydator/ttlcache/v3"
)

// Fabric carries messages between routers and resolves which link is attached to a port
type Fabric interface {
	Deliver(from state.RouterId, port state.Port, kind state.MsgKind, payload any) bool
	EdgeAt(id state.RouterId, port state.Port) (state.Edge, bool)
}

// Router is a single simulated router. It only learns about the rest of the network through HELLOs and LSAs.
type Router struct {
	*state.RouterState
	fabric Fabric
	log    *slog.Logger
	// forwarding caches the route table derived from the database, keyed by our own id
	forwarding *ttlcache.Cache[state.RouterId, *Forwarding]
}

func NewRouter(cfg state.RouterCfg, timers state.SimCfg, fabric Fabric, log *slog.Logger, rng *rand.Rand) *Router {
	rs := state.NewRouterState(cfg.Id)
	rs.Prefixes = slices.Clone(cfg.Prefixes)
	rs.HelloInterval = timers.HelloInterval
	rs.LsaInterval = timers.LsaInterval
	// jitter the timers so routers do not act in lockstep
	rs.HelloCounter = rng.IntN(rs.HelloInterval) + 1
	rs.LsaCounter = rng.IntN(rs.LsaInterval + 1)

	return &Router{
		RouterState: rs,
		fabric:      fabric,
		log:         log.With("router", cfg.Id),
		forwarding: ttlcache.New[state.RouterId, *Forwarding](
			ttlcache.WithTTL[state.RouterId, *Forwarding](state.RouteCacheTTL),
			ttlcache.WithDisableTouchOnHit[state.RouterId, *Forwarding](),
		),
	}
}

func (r *Router) Tick() {
	RunTick(r.RouterState, r)
}

// Receive is the fabric's entry point into this router.
func (r *Router) Receive(port state.Port, kind state.MsgKind, payload any) {
	HandleMessage(r.RouterState, r, port, kind, payload)
}

// ConnectPort marks a port as live, e.g. when a new link is plugged in.
func (r *Router) ConnectPort(port state.Port) {
	r.ActivePorts[port] = struct{}{}
}

func (r *Router) Send(port state.Port, kind state.MsgKind, payload any) bool {
	return r.fabric.Deliver(r.Id, port, kind, payload)
}

func (r *Router) LinkCost(port state.Port) (uint32, bool) {
	edge, ok := r.fabric.EdgeAt(r.Id, port)
	return edge.Cost, ok
}

func (r *Router) RoutingChanged() {
	r.forwarding.Delete(r.Id)
}

func (r *Router) Log(event RouterEvent, desc string, args ...any) {
	countEvent(event)
	if !event.IsWarn() && !traced(event) {
		return
	}
	level := slog.LevelDebug
	if event.IsWarn() {
		level = slog.LevelWarn
	}
	r.log.Log(context.Background(), level, fmt.Sprintf("%s %s", event.String(), desc), args...)
}

// Routes returns the current route table, recomputing it if the database changed since the last call.
func (r *Router) Routes() state.RouteTable {
	return r.getForwarding().Routes
}

// Lookup finds the route used to forward a packet destined to addr.
func (r *Router) Lookup(addr netip.Addr) (state.Route, bool) {
	return r.getForwarding().Table.Lookup(addr)
}

// View returns the topology as this router believes it to be: origin -> links advertised by that origin.
func (r *Router) View() map[state.RouterId][]state.Link {
	view := make(map[state.RouterId][]state.Link, len(r.Database))
	for origin, entry := range r.Database {
		links := make([]state.Link, 0, len(entry.Neighbours))
		for _, port := range slices.Sorted(maps.Keys(entry.Neighbours)) {
			links = append(links, entry.Neighbours[port])
		}
		view[origin] = links
	}
	return view
}

func (r *Router) getForwarding() *Forwarding {
	if item := r.forwarding.Get(r.Id); item != nil {
		return item.Value()
	}
	f := BuildForwarding(r.RouterState)
	r.forwarding.Set(r.Id, f, ttlcache.DefaultTTL)
	r.Log(RoutesComputed, "recomputed routes", "routes", len(f.Routes))
	return f
}

func traced(event RouterEvent) bool {
	switch event {
	case HelloSent, NeighbourUp:
		return state.DBG_log_hello
	case LsaAccepted, LsaRejected, LsaFlooded, LsaPurged, LsaGenerated:
		return state.DBG_log_flood
	case RoutesComputed:
		return state.DBG_log_routes
	}
	return false
}

func countEvent(event RouterEvent) {
	switch event {
	case LsaGenerated:
		perf.LsaGenerated.Add(1)
	case LsaAccepted:
		perf.LsaAccepted.Add(1)
	case LsaRejected:
		perf.LsaRejected.Add(1)
	case LsaPurged:
		perf.LsaPurged.Add(1)
	case PortDown:
		perf.PortsDown.Add(1)
	case RoutesComputed:
		perf.RouteComputations.Add(1)
	}
}
