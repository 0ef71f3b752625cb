package core

import (
	"fmt"
	"maps"
	"math/rand/v2"
	"slices"

	"github.com/encodeous/linkstate/state"
)

// CutRandomLink cuts a uniformly chosen link, returning the router and edge that were cut.
func (n *Network) CutRandomLink(rng *rand.Rand) (state.RouterId, state.Edge, bool) {
	candidates := make([]state.Pair[state.RouterId, state.Edge], 0)
	for _, r := range n.routers {
		for _, edge := range n.connections[r.Id] {
			// count each link once
			if r.Id < edge.Remote {
				candidates = append(candidates, state.Pair[state.RouterId, state.Edge]{V1: r.Id, V2: edge})
			}
		}
	}
	if len(candidates) == 0 {
		return 0, state.Edge{}, false
	}
	pick := candidates[rng.IntN(len(candidates))]
	edge, err := n.CutLink(pick.V1, pick.V2.LocalPort)
	if err != nil {
		return 0, state.Edge{}, false
	}
	return pick.V1, edge, true
}

// CreateRandomLink connects a random pair of routers that are not yet directly connected, using the
// first free port label on each side and a random cost of at most MaxLinkCost.
func (n *Network) CreateRandomLink(rng *rand.Rand) (state.RouterId, state.Edge, bool) {
	candidates := make([]state.Pair[state.RouterId, state.RouterId], 0)
	for i, a := range n.routers {
		for _, b := range n.routers[i+1:] {
			if _, ok := n.reachable[a.Id][b.Id]; !ok {
				candidates = append(candidates, state.Pair[state.RouterId, state.RouterId]{V1: a.Id, V2: b.Id})
			}
		}
	}
	if len(candidates) == 0 {
		return 0, state.Edge{}, false
	}
	pick := candidates[rng.IntN(len(candidates))]
	a, b := pick.V1, pick.V2
	if rng.IntN(2) == 0 {
		a, b = b, a
	}
	pa, pb := n.freePort(a), n.freePort(b)
	cost := uint32(rng.IntN(int(n.timers.MaxLinkCost))) + 1
	err := n.CreateLink(cost, a, pa, b, pb)
	if err != nil {
		n.log.Warn("failed to create random link", "err", err)
		return 0, state.Edge{}, false
	}
	edge, _ := n.EdgeAt(a, pa)
	return a, edge, true
}

// freePort returns the first port label neither believed active by the router nor used by a connection.
func (n *Network) freePort(id state.RouterId) state.Port {
	r := n.Router(id)
	for i := 0; ; i++ {
		port := state.PortLabel(i)
		if r.IsActivePort(port) {
			continue
		}
		if _, ok := n.EdgeAt(id, port); ok {
			continue
		}
		return port
	}
}

// CheckSymmetry verifies that every edge record has exactly one mirrored record, and that the reachable
// sets agree with the connection table.
func (n *Network) CheckSymmetry() error {
	for id, edges := range n.connections {
		neighs := make(map[state.RouterId]struct{})
		for _, edge := range edges {
			mirror := edge.Mirror(id)
			count := 0
			for _, e := range n.connections[edge.Remote] {
				if e == mirror {
					count++
				}
			}
			if count != 1 {
				return fmt.Errorf("edge %d %s has %d mirrors", id, edge, count)
			}
			neighs[edge.Remote] = struct{}{}
		}
		if !maps.Equal(neighs, n.reachable[id]) {
			return fmt.Errorf("reachable set of %d is %v, connections say %v", id, n.Reachable(id), slices.Sorted(maps.Keys(neighs)))
		}
	}
	return nil
}

// Component returns every router connected to id through any number of links, sorted.
func (n *Network) Component(id state.RouterId) []state.RouterId {
	seen := map[state.RouterId]struct{}{id: {}}
	queue := []state.RouterId{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for neigh := range n.reachable[cur] {
			if _, ok := seen[neigh]; !ok {
				seen[neigh] = struct{}{}
				queue = append(queue, neigh)
			}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

// Converged reports whether, within every connected component, all routers hold the same sequence number
// for every router of that component. Entries for routers outside the component are ignored.
func (n *Network) Converged() bool {
	for _, r := range n.routers {
		comp := n.Component(r.Id)
		for _, origin := range comp {
			want, ok := n.Router(origin).Database[origin]
			if !ok {
				return false
			}
			have, ok := r.Database[origin]
			if !ok || have.Seqno != want.Seqno {
				return false
			}
		}
	}
	return true
}
