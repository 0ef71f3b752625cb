package core

import (
	"maps"
	"math"
	"slices"

	"github.com/encodeous/linkstate/state"
	"github.com/gaissmai/bart"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// Forwarding is the result of a route computation: the per-destination table and the prefix table built from it
type Forwarding struct {
	Routes state.RouteTable
	Table  bart.Table[state.Route]
}

// buildLsdbGraph turns the LSA database into a directed graph, one edge per advertised adjacency.
// Adjacencies do not have to be symmetric, a partially converged database is used as is.
func buildLsdbGraph(s *state.RouterState) *simple.WeightedDirectedGraph {
	g := simple.NewWeightedDirectedGraph(0, math.Inf(1))
	g.AddNode(simple.Node(s.Id))

	for _, origin := range slices.Sorted(maps.Keys(s.Database)) {
		if g.Node(int64(origin)) == nil {
			g.AddNode(simple.Node(origin))
		}
		// parallel links to the same neighbour collapse into the cheapest one
		costs := make(map[state.RouterId]uint32)
		for _, link := range s.Database[origin].Neighbours {
			if link.Router == origin {
				continue
			}
			if cur, ok := costs[link.Router]; !ok || link.Cost < cur {
				costs[link.Router] = link.Cost
			}
		}
		for neigh, cost := range costs {
			state.Assert(cost > 0, "router %d advertises a zero cost link to %d", origin, neigh)
			if g.Node(int64(neigh)) == nil {
				g.AddNode(simple.Node(neigh))
			}
			g.SetWeightedEdge(simple.WeightedEdge{
				F: simple.Node(origin),
				T: simple.Node(neigh),
				W: float64(cost),
			})
		}
	}
	return g
}

// ComputeRoutes runs Dijkstra from this router over its LSA database.
// Destinations that cannot be reached, or whose first hop is not a live neighbour, are left out.
func ComputeRoutes(s *state.RouterState) state.RouteTable {
	table := make(state.RouteTable)
	g := buildLsdbGraph(s)
	tree := path.DijkstraFrom(simple.Node(s.Id), g)

	nodes := graph.NodesOf(g.Nodes())
	for _, node := range nodes {
		dest := state.RouterId(node.ID())
		if dest == s.Id {
			continue
		}
		hops, weight := tree.To(node.ID())
		if len(hops) < 2 || math.IsInf(weight, 1) {
			continue
		}
		nh := state.RouterId(hops[1].ID())
		port, ok := s.PortTo(nh)
		if !ok {
			continue
		}
		p := make([]state.RouterId, 0, len(hops))
		for _, hop := range hops {
			p = append(p, state.RouterId(hop.ID()))
		}
		table[dest] = state.Route{
			Dest:    dest,
			NextHop: nh,
			Port:    port,
			Cost:    uint32(weight),
			Path:    p,
		}
	}
	return table
}

// BuildForwarding computes the route table and maps every prefix advertised in the database onto it.
func BuildForwarding(s *state.RouterState) *Forwarding {
	f := &Forwarding{
		Routes: ComputeRoutes(s),
	}
	for _, prefix := range s.Prefixes {
		f.Table.Insert(prefix, state.Route{Dest: s.Id, NextHop: s.Id, Port: state.NoPort})
	}
	for origin, entry := range s.Database {
		if origin == s.Id {
			continue
		}
		route, ok := f.Routes[origin]
		if !ok {
			continue
		}
		for _, prefix := range entry.Prefixes {
			f.Table.Insert(prefix, route)
		}
	}
	return f
}
