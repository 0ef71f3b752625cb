package core

import (
	"log/slog"
	"math/rand/v2"
	"testing"

	"github.com/encodeous/linkstate/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) *slog.Logger {
	t.Helper()
	log, err := NewLogger(slog.LevelWarn, "test", "")
	require.NoError(t, err)
	return log
}

func newTestNetwork(t *testing.T, cfg state.SimCfg) (*Network, *rand.Rand) {
	t.Helper()
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	n, err := NewNetwork(&cfg, newTestLogger(t), rng)
	require.NoError(t, err)
	require.NoError(t, n.CheckSymmetry())
	return n, rng
}

// tickUntilConverged runs at least minTicks ticks, then keeps going until every component agrees on its LSAs.
func tickUntilConverged(t *testing.T, n *Network, minTicks int) {
	t.Helper()
	for range minTicks {
		n.Tick()
	}
	for range 200 {
		if n.Converged() {
			return
		}
		n.Tick()
	}
	t.Fatal("network did not converge")
}

func TestNewNetworkRejectsBadLinks(t *testing.T) {
	cfg := state.LineCfg(2)
	cfg.Links = append(cfg.Links, state.LinkCfg{From: 1, FromPort: "C", To: 1, ToPort: "D", Cost: 1})
	_, err := NewNetwork(&cfg, newTestLogger(t), rand.New(rand.NewPCG(1, 1)))
	assert.Error(t, err)
}

func TestDeliver(t *testing.T) {
	n, _ := newTestNetwork(t, state.LineCfg(2))
	assert.False(t, n.Deliver(1, "A", state.Hello, state.RouterId(1)))
	assert.True(t, n.Deliver(1, "B", state.Hello, state.RouterId(1)))
	assert.Equal(t, state.Link{Router: 1, Cost: 1}, n.Router(2).Neighbours["A"])
	assert.Nil(t, n.Router(9))
}

func TestCreateAndCutLink(t *testing.T) {
	n, _ := newTestNetwork(t, state.LineCfg(3))

	assert.Error(t, n.CreateLink(1, 1, "C", 1, "D"))
	assert.Error(t, n.CreateLink(0, 1, "C", 3, "C"))
	assert.Error(t, n.CreateLink(1, 1, "C", 9, "C"))
	assert.Error(t, n.CreateLink(1, 1, "C", 2, "C"))
	assert.Error(t, n.CreateLink(1, 1, "B", 3, "C"))

	require.NoError(t, n.CreateLink(7, 1, "C", 3, "B"))
	require.NoError(t, n.CheckSymmetry())
	assert.Equal(t, []state.RouterId{2, 3}, n.Reachable(1))
	assert.True(t, n.Router(1).IsActivePort("C"))
	assert.True(t, n.Router(3).IsActivePort("B"))
	edge, ok := n.EdgeAt(3, "B")
	require.True(t, ok)
	assert.Equal(t, state.Edge{Cost: 7, LocalPort: "B", RemotePort: "C", Remote: 1}, edge)

	cut, err := n.CutLink(3, "B")
	require.NoError(t, err)
	assert.Equal(t, edge, cut)
	require.NoError(t, n.CheckSymmetry())
	assert.Equal(t, []state.RouterId{2}, n.Reachable(1))
	assert.Len(t, n.Connections(1), 1)
	// the routers find out on their own
	assert.True(t, n.Router(1).IsActivePort("C"))

	_, err = n.CutLink(1, "Z")
	assert.Error(t, err)
}

func TestRandomLinkUsesFreePorts(t *testing.T) {
	n, rng := newTestNetwork(t, state.LineCfg(3))

	// 1 and 3 are the only pair left
	_, _, ok := n.CreateRandomLink(rng)
	require.True(t, ok)
	require.NoError(t, n.CheckSymmetry())
	edge, ok := n.EdgeAt(1, "A")
	require.True(t, ok)
	assert.Equal(t, state.RouterId(3), edge.Remote)
	assert.Equal(t, state.Port("B"), edge.RemotePort)
	assert.GreaterOrEqual(t, edge.Cost, uint32(1))
	assert.LessOrEqual(t, edge.Cost, state.MaxLinkCost)

	_, _, ok = n.CreateRandomLink(rng)
	assert.False(t, ok)

	for range 3 {
		_, _, ok = n.CutRandomLink(rng)
		require.True(t, ok)
	}
	_, _, ok = n.CutRandomLink(rng)
	assert.False(t, ok)
	require.NoError(t, n.CheckSymmetry())
}

func TestSymmetryUnderRandomMutations(t *testing.T) {
	n, rng := newTestNetwork(t, state.RandomSimConfig(8, 12, 42))
	for i := range 300 {
		if rng.IntN(2) == 0 {
			n.CutRandomLink(rng)
		} else {
			n.CreateRandomLink(rng)
		}
		n.Tick()
		require.NoError(t, n.CheckSymmetry(), "after mutation %d", i)
		for _, r := range n.Routers() {
			for port := range r.Neighbours {
				require.True(t, r.IsActivePort(port), "router %d has a neighbour on dead port %s", r.Id, port)
			}
		}
	}
}

func TestDiamondRoutes(t *testing.T) {
	n, _ := newTestNetwork(t, state.DiamondCfg())
	tickUntilConverged(t, n, 2*state.LsaInterval)

	r1 := n.Router(1)
	route, ok := r1.Routes()[4]
	require.True(t, ok)
	assert.Equal(t, state.RouterId(2), route.NextHop)
	assert.Equal(t, uint32(6), route.Cost)
	assert.Equal(t, state.Port("A"), route.Port)
	assert.Equal(t, []state.RouterId{1, 2, 4}, route.Path)

	fwd, ok := r1.Lookup(state.DefaultPrefix(4).Addr())
	require.True(t, ok)
	assert.Equal(t, route.NextHop, fwd.NextHop)

	for _, r := range n.Routers() {
		assert.Len(t, r.Database, 4, "router %d", r.Id)
		assert.Len(t, r.Routes(), 3, "router %d", r.Id)
	}
	assert.ElementsMatch(t, []state.Link{{Router: 2, Cost: 2}, {Router: 3, Cost: 1}}, r1.View()[1])
	assert.ElementsMatch(t, []state.Link{{Router: 2, Cost: 4}}, r1.View()[4])
}

func TestCutLinkReroutes(t *testing.T) {
	n, _ := newTestNetwork(t, state.DiamondCfg())
	tickUntilConverged(t, n, 2*state.LsaInterval)

	edge, err := n.CutLink(1, "A")
	require.NoError(t, err)
	assert.Equal(t, state.RouterId(2), edge.Remote)
	assert.True(t, n.Router(1).IsActivePort("A"))

	// one hello round is enough for both ends to notice
	for range state.HelloInterval {
		n.Tick()
	}
	for _, end := range []state.Pair[state.RouterId, state.Port]{{V1: 1, V2: "A"}, {V1: 2, V2: "A"}} {
		r := n.Router(end.V1)
		assert.False(t, r.IsActivePort(end.V2), "router %d", r.Id)
		assert.NotContains(t, r.Neighbours, end.V2, "router %d", r.Id)
	}

	tickUntilConverged(t, n, 2*state.HelloInterval)
	r1 := n.Router(1)
	route, ok := r1.Routes()[4]
	require.True(t, ok)
	assert.Equal(t, state.RouterId(3), route.NextHop)
	assert.Equal(t, state.Port("B"), route.Port)
	assert.Equal(t, uint32(10), route.Cost)
	assert.Equal(t, []state.RouterId{1, 3, 2, 4}, route.Path)
	assert.ElementsMatch(t, []state.Link{{Router: 3, Cost: 5}, {Router: 4, Cost: 4}}, r1.View()[2])
}

func TestCutLinkPartitions(t *testing.T) {
	n, _ := newTestNetwork(t, state.LineCfg(4))
	tickUntilConverged(t, n, 2*state.LsaInterval)
	require.Contains(t, n.Router(1).Routes(), state.RouterId(4))

	_, err := n.CutLink(1, "B")
	require.NoError(t, err)
	tickUntilConverged(t, n, 2*state.HelloInterval)

	r1 := n.Router(1)
	assert.Empty(t, r1.Routes())
	_, ok := r1.Lookup(state.DefaultPrefix(4).Addr())
	assert.False(t, ok)
	_, ok = r1.Lookup(state.DefaultPrefix(1).Addr())
	assert.True(t, ok)

	r4 := n.Router(4)
	assert.Contains(t, r4.Routes(), state.RouterId(2))
	assert.NotContains(t, r4.Routes(), state.RouterId(1))
	assert.Equal(t, []state.RouterId{1}, n.Component(1))
	assert.Equal(t, []state.RouterId{2, 3, 4}, n.Component(4))
}

func TestConvergenceOnRandomTopology(t *testing.T) {
	n, _ := newTestNetwork(t, state.RandomSimConfig(10, 18, 7))
	tickUntilConverged(t, n, 2*state.LsaInterval)

	for _, r := range n.Routers() {
		routes := r.Routes()
		for _, id := range n.Component(r.Id) {
			require.Contains(t, r.Database, id, "router %d", r.Id)
			if id != r.Id {
				require.Contains(t, routes, id, "router %d", r.Id)
			}
		}
	}
}

func TestTtlOneInNetwork(t *testing.T) {
	n, _ := newTestNetwork(t, state.LineCfg(3))

	// router 3 holds origin 9 at seqno 1
	require.True(t, n.Deliver(2, "B", state.LsaMsg, MakeLsa(9, 1, 2, nil)))
	require.Contains(t, n.Router(3).Database, state.RouterId(9))

	// router 2 receives the same instance with one hop left, and forwards it at TTL 0
	require.True(t, n.Deliver(1, "B", state.LsaMsg, MakeLsa(9, 1, 1, nil)))
	require.Contains(t, n.Router(2).Database, state.RouterId(9))
	n.Tick()

	assert.NotContains(t, n.Router(3).Database, state.RouterId(9))
	assert.NotContains(t, n.Router(1).Database, state.RouterId(9))
}

func TestPurgeDrainsNetwork(t *testing.T) {
	n, _ := newTestNetwork(t, state.LineCfg(4))

	require.True(t, n.Deliver(1, "B", state.LsaMsg, MakeLsa(9, 1, state.MaxTTL, nil)))
	for range 5 {
		n.Tick()
	}
	for _, id := range []state.RouterId{2, 3, 4} {
		require.Contains(t, n.Router(id).Database, state.RouterId(9), "router %d", id)
	}

	require.True(t, n.Deliver(1, "B", state.LsaMsg, MakeLsa(9, 1, 0, nil)))
	for range 5 {
		n.Tick()
	}
	for _, r := range n.Routers() {
		assert.NotContains(t, r.Database, state.RouterId(9), "router %d", r.Id)
	}
}
