package core

import (
	"fmt"
	"net/netip"
	"slices"
	"strings"
	"testing"

	"github.com/encodeous/linkstate/state"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

type HarnessEvent struct {
	Message string
	Args    []any
}

func MakeEvent(msg string, args ...any) HarnessEvent {
	return HarnessEvent{
		Message: msg,
		Args:    args,
	}
}

// RouterHarness stands in for the network. links lists the ports that have something attached, and their cost.
type RouterHarness struct {
	actions []HarnessEvent
	links   map[state.Port]uint32
}

func NewRouterHarness() *RouterHarness {
	return &RouterHarness{
		links: make(map[state.Port]uint32),
	}
}

func (h *RouterHarness) Send(port state.Port, kind state.MsgKind, payload any) bool {
	h.actions = append(h.actions, MakeEvent("SEND", port, kind, payload))
	_, ok := h.links[port]
	return ok
}

func (h *RouterHarness) LinkCost(port state.Port) (uint32, bool) {
	cost, ok := h.links[port]
	return cost, ok
}

func (h *RouterHarness) RoutingChanged() {
	h.actions = append(h.actions, MakeEvent("ROUTING_CHANGED"))
}

func (h *RouterHarness) Log(event RouterEvent, desc string, args ...any) {
	x := make([]any, 0)
	x = append(x, event)
	x = append(x, desc)
	x = append(x, args...)
	h.actions = append(h.actions, MakeEvent("LOG", x...))
}

type HarnessEvents []HarnessEvent

func (h HarnessEvents) String() string {
	out := make([]string, 0)
	for _, action := range h {
		cur := action.Message
		for _, arg := range action.Args {
			cur += " " + fmt.Sprint(arg)
		}
		out = append(out, cur)
	}
	slices.Sort(out)
	return strings.Join(out, "\n")
}

// GetActions returns and clears everything recorded except logs.
func (h *RouterHarness) GetActions() HarnessEvents {
	x := make([]HarnessEvent, 0)
	for _, action := range h.actions {
		if action.Message != "LOG" {
			x = append(x, action)
		}
	}

	h.actions = make([]HarnessEvent, 0)
	return x
}

// GetLogs returns the logged router events without clearing anything.
func (h *RouterHarness) GetLogs() []RouterEvent {
	x := make([]RouterEvent, 0)
	for _, action := range h.actions {
		if action.Message == "LOG" {
			x = append(x, action.Args[0].(RouterEvent))
		}
	}
	return x
}

func (e HarnessEvents) count(msg string, args ...any) int {
	n := 0
	for _, event := range e {
		if event.Message != msg || len(event.Args) < len(args) {
			continue
		}
		match := true
		for i, arg := range args {
			if !cmp.Equal(event.Args[i], arg, cmpopts.EquateComparable(netip.Prefix{})) {
				match = false
				break
			}
		}
		if match {
			n++
		}
	}
	return n
}

func (e HarnessEvents) AssertContains(t *testing.T, msg string, args ...any) {
	t.Helper()
	if e.count(msg, args...) > 0 {
		return
	}
	t.Fatal("Expected event not found: ", msg, " with args: ", args, " in ", e)
}

func (e HarnessEvents) AssertNotContains(t *testing.T, msg string, args ...any) {
	t.Helper()
	if e.count(msg, args...) > 0 {
		t.Fatal("Unexpected event found: ", msg, " with args: ", args, " in ", e)
	}
}

func (e HarnessEvents) AssertCount(t *testing.T, n int, msg string, args ...any) {
	t.Helper()
	if c := e.count(msg, args...); c != n {
		t.Fatal("Expected ", n, " events ", msg, " with args: ", args, ", found ", c, " in ", e)
	}
}

// NewTestRouter builds a router with the given ports plugged in. Timers are set so they never fire on their own.
func NewTestRouter(h *RouterHarness, id state.RouterId, links map[state.Port]uint32) *state.RouterState {
	rs := state.NewRouterState(id)
	rs.HelloInterval = 1000
	rs.LsaInterval = 1000
	rs.HelloCounter = 1
	rs.LsaCounter = 1
	for port, cost := range links {
		rs.ActivePorts[port] = struct{}{}
		h.links[port] = cost
	}
	return rs
}

// MakeLsa builds an LSA as if originated by origin, with an arbitrary TTL.
func MakeLsa(origin state.RouterId, seqno uint32, ttl int, neighbours map[state.Port]state.Link) *state.Lsa {
	lsa := state.NewLsa(origin, neighbours, nil, seqno)
	lsa.TTL = ttl
	return lsa
}
