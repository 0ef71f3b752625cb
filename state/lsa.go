package state

import (
	"fmt"
	"maps"
	"net/netip"
	"slices"
)

// Lsa is a link-state advertisement: a versioned snapshot of the origin's neighbour costs.
type Lsa struct {
	Origin     RouterId
	Neighbours map[Port]Link
	Prefixes   []netip.Prefix
	Seqno      uint32
	TTL        int
	// Path lists the routers that accepted and forwarded this copy, starting with the origin.
	Path []RouterId
}

func NewLsa(origin RouterId, neighbours map[Port]Link, prefixes []netip.Prefix, seqno uint32) *Lsa {
	return &Lsa{
		Origin:     origin,
		Neighbours: maps.Clone(neighbours),
		Prefixes:   slices.Clone(prefixes),
		Seqno:      seqno,
		TTL:        MaxTTL,
		Path:       []RouterId{origin},
	}
}

// Clone copies the mutable parts of the LSA. The neighbour snapshot is never mutated after creation, so it is shared.
func (l *Lsa) Clone() *Lsa {
	c := *l
	c.Path = slices.Clone(l.Path)
	return &c
}

// Forwarded decrements the TTL and records the forwarding router on the path.
func (l *Lsa) Forwarded(by RouterId) {
	l.TTL--
	l.Path = append(l.Path, by)
}

// Entry converts the LSA into the form stored in a database.
func (l *Lsa) Entry() DbEntry {
	return DbEntry{
		Seqno:      l.Seqno,
		Neighbours: l.Neighbours,
		Prefixes:   l.Prefixes,
	}
}

func (l *Lsa) String() string {
	return fmt.Sprintf("(origin: %d, seqno: %d, ttl: %d, adj: %d, path: %v)", l.Origin, l.Seqno, l.TTL, len(l.Neighbours), l.Path)
}
