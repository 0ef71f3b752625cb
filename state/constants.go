package state

import "time"

const (
	// MaxTTL is the time to live every freshly originated LSA starts with.
	MaxTTL = 255
	// NoPort is used where a port is optional, e.g. the avoided port of a flood.
	NoPort Port = ""
)

var (
	HelloInterval = 5  // ticks between HELLO rounds
	LsaInterval   = 25 // ticks between periodic LSA refreshes

	// mutation defaults for auto mode, matching a 10% chance per tick
	CutChance    = 0.1
	CreateChance = 0.1
	MaxLinkCost  = uint32(50)

	DefaultSeed = uint64(0x5eed)

	// RouteCacheTTL bounds how long a computed route table is served before being rebuilt,
	// even if nothing invalidated it.
	RouteCacheTTL = time.Second * 30

	// TickDelay is the wall-clock delay between ticks when running in real time.
	TickDelay = time.Millisecond * 100
)
