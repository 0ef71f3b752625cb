package core

import (
	"math"

	"github.com/encodeous/linkstate/state"
)

// Protocol is an interface that defines the side effects the link-state algorithm needs from its environment
type Protocol interface {
	// Send delivers a message out of a local port, it returns false if nothing is attached to the port
	Send(port state.Port, kind state.MsgKind, payload any) bool
	// LinkCost resolves the cost of the link attached to a local port
	LinkCost(port state.Port) (uint32, bool)
	// RoutingChanged is called every time the database or the set of ports changes
	RoutingChanged()
	Log(event RouterEvent, desc string, args ...any)
}

// RunTick advances the router's timers by one tick, then executes the actions deferred before this tick began.
func RunTick(s *state.RouterState, r Protocol) {
	if !s.Active {
		return
	}
	pending := s.TakeDeferred()

	s.HelloCounter++
	s.LsaCounter++
	if s.HelloCounter%s.HelloInterval == 0 {
		DiscoverNeighbours(s, r)
	}
	if s.LsaCounter%s.LsaInterval == 0 {
		GenerateLsa(s, r)
	}

	RunActions(s, r, pending)
	checkInvariants(s)
}

// RunActions executes deferred actions in the order they were enqueued.
func RunActions(s *state.RouterState, r Protocol, pending []state.Action) {
	for _, action := range pending {
		switch a := action.(type) {
		case state.SendAck:
			if !r.Send(a.Port, state.HelloAck, s.Id) {
				// the next hello round will notice
				r.Log(DeliveryFailed, "could not acknowledge hello", "port", a.Port)
			}
		case state.Flood:
			Flood(s, r, a.Kind, a.Lsa, a.Avoid)
		default:
			r.Log(InconsistentState, "unknown deferred action", "action", action)
		}
	}
}

// DiscoverNeighbours says hello on every active port and drops the ports nobody answers on.
func DiscoverNeighbours(s *state.RouterState, r Protocol) {
	dead := make([]state.Port, 0)
	for _, port := range s.Ports() {
		if !r.Send(port, state.Hello, s.Id) {
			dead = append(dead, port)
		}
	}
	r.Log(HelloSent, "said hello", "ports", len(s.ActivePorts), "dead", len(dead))

	if len(dead) > 0 {
		removePorts(s, r, dead)
		// link-down must propagate now, not at the next periodic LSA
		GenerateLsa(s, r)
	}
}

// GenerateLsa originates a fresh LSA from the current neighbour table and schedules it for flooding.
func GenerateLsa(s *state.RouterState, r Protocol) *state.Lsa {
	prev, ok := s.Database[s.Id]
	state.Assert(!ok || prev.Seqno < s.Seqno, "router %d would regress its own seqno %d to %d", s.Id, prev.Seqno, s.Seqno)

	lsa := state.NewLsa(s.Id, s.Neighbours, s.Prefixes, s.Seqno)
	s.Seqno++

	// self-originated entries are never subject to acceptance
	s.Database[s.Id] = lsa.Entry()
	r.RoutingChanged()
	s.Enqueue(state.Flood{Kind: state.LsaMsg, Lsa: lsa, Avoid: state.NoPort})
	r.Log(LsaGenerated, "generated lsa", "lsa", lsa)
	return lsa
}

// HandleMessage dispatches a message received on a local port.
func HandleMessage(s *state.RouterState, r Protocol, port state.Port, kind state.MsgKind, payload any) {
	if !s.Active {
		return
	}
	switch kind {
	case state.Hello, state.HelloAck:
		sender, ok := payload.(state.RouterId)
		if !ok {
			r.Log(InconsistentState, "hello without a router id", "port", port, "payload", payload)
			return
		}
		HandleHello(s, r, port, kind, sender)
	case state.LsaMsg:
		lsa, ok := payload.(*state.Lsa)
		if !ok || lsa == nil {
			r.Log(InconsistentState, "lsa message without an lsa", "port", port, "payload", payload)
			return
		}
		HandleLsa(s, r, port, lsa)
	default:
		r.Log(InconsistentState, "unknown message kind", "port", port, "kind", kind)
	}
}

// HandleHello learns the neighbour on a port from a HELLO or HELLO-ACK.
// Only a plain HELLO is acknowledged, so an ACK never produces another ACK.
func HandleHello(s *state.RouterState, r Protocol, port state.Port, kind state.MsgKind, sender state.RouterId) {
	if !s.IsActivePort(port) {
		r.Log(InconsistentState, "message on an inactive port", "port", port, "from", sender)
		s.ActivePorts[port] = struct{}{}
	}

	cost, ok := r.LinkCost(port)
	state.Assert(ok, "router %d received %s on port %s which has no link", s.Id, kind, port)
	if !ok {
		return
	}

	link := state.Link{Router: sender, Cost: cost}
	if cur, known := s.Neighbours[port]; known && cur == link {
		return
	}
	s.Neighbours[port] = link

	if kind == state.Hello {
		s.Enqueue(state.SendAck{Port: port})
	}
	r.Log(NeighbourUp, "new neighbour", "port", port, "neigh", sender, "cost", cost, "kind", kind)

	// our adjacency changed
	GenerateLsa(s, r)
}

// HandleLsa applies the acceptance rules to a received LSA. It takes ownership of lsa.
func HandleLsa(s *state.RouterState, r Protocol, port state.Port, lsa *state.Lsa) {
	entry, ok := s.Database[lsa.Origin]

	if lsa.TTL <= 0 {
		// a stale advertisement is being drained, purge it only if we hold exactly this instance
		if ok && entry.Seqno == lsa.Seqno {
			delete(s.Database, lsa.Origin)
			r.RoutingChanged()
			s.Enqueue(state.Flood{Kind: state.LsaMsg, Lsa: lsa, Avoid: port})
			r.Log(LsaPurged, "purged lsa", "lsa", lsa, "port", port)
			if lsa.Origin == s.Id {
				// never go without our own entry
				GenerateLsa(s, r)
			}
		}
		return
	}

	if ok && lsa.Seqno <= entry.Seqno {
		r.Log(LsaRejected, "rejected lsa", "lsa", lsa, "port", port, "have", entry.Seqno)
		return
	}

	if lsa.Origin == s.Id {
		if lsa.Seqno == math.MaxUint32 {
			// there is no seqno left to supersede it with
			r.Log(InconsistentState, "self-originated lsa at the maximum seqno, ignoring", "lsa", lsa)
			return
		}
		// a newer copy of our own advertisement, from before we last restarted counting
		r.Log(InconsistentState, "received newer self-originated lsa", "lsa", lsa, "seqno", s.Seqno)
		s.Seqno = lsa.Seqno + 1
		GenerateLsa(s, r)
		return
	}

	s.Database[lsa.Origin] = lsa.Entry()
	r.RoutingChanged()
	lsa.Forwarded(s.Id)
	s.Enqueue(state.Flood{Kind: state.LsaMsg, Lsa: lsa, Avoid: port})
	r.Log(LsaAccepted, "accepted lsa", "lsa", lsa, "port", port)
}

// Flood sends lsa on every active port except avoid. A port that fails both the delivery and a follow-up HELLO is declared dead.
func Flood(s *state.RouterState, r Protocol, kind state.MsgKind, lsa *state.Lsa, avoid state.Port) {
	dead := make([]state.Port, 0)
	sent := 0
	for _, port := range s.Ports() {
		if port == avoid {
			continue
		}
		// every receiver gets its own copy to age
		if r.Send(port, kind, lsa.Clone()) {
			sent++
			continue
		}
		r.Log(DeliveryFailed, "flood failed, probing port", "port", port, "lsa", lsa)
		if !r.Send(port, state.Hello, s.Id) {
			dead = append(dead, port)
		}
	}
	r.Log(LsaFlooded, "flooded lsa", "lsa", lsa, "sent", sent, "avoid", avoid)

	if len(dead) > 0 {
		removePorts(s, r, dead)
		GenerateLsa(s, r)
	}
}

func removePorts(s *state.RouterState, r Protocol, ports []state.Port) {
	for _, port := range ports {
		delete(s.ActivePorts, port)
		neigh, ok := s.Neighbours[port]
		delete(s.Neighbours, port)
		r.Log(PortDown, "declaring port down", "port", port, "had_neigh", ok, "neigh", neigh.Router)
	}
	r.RoutingChanged()
}

func checkInvariants(s *state.RouterState) {
	if !state.DBG_assert {
		return
	}
	for port := range s.Neighbours {
		state.Assert(s.IsActivePort(port), "router %d has a neighbour on inactive port %s", s.Id, port)
	}
}
