package state

import (
	"fmt"
	"math/rand/v2"
	"net/netip"
	"os"
	"slices"

	"github.com/goccy/go-yaml"
)

var ConfigPath = "topology.yaml"

// RouterCfg describes a single router in the simulated network
type RouterCfg struct {
	Id       RouterId
	Prefixes []netip.Prefix `yaml:",omitempty"` // loopback prefixes advertised in this router's LSAs
}

// LinkCfg describes a bidirectional connection between two router ports
type LinkCfg struct {
	From     RouterId
	FromPort Port `yaml:"from_port"`
	To       RouterId
	ToPort   Port `yaml:"to_port"`
	Cost     uint32
}

// SimCfg is the full description of a simulation run
type SimCfg struct {
	Seed          uint64
	HelloInterval int     `yaml:"hello_interval,omitempty"` // ticks between HELLO rounds
	LsaInterval   int     `yaml:"lsa_interval,omitempty"`   // ticks between periodic LSAs
	CutChance     float64 `yaml:"cut_chance"`               // per-tick probability of cutting a random link in auto mode
	CreateChance  float64 `yaml:"create_chance"`            // per-tick probability of creating a random link in auto mode
	MaxLinkCost   uint32  `yaml:"max_link_cost,omitempty"`  // upper bound for randomly created link costs
	Routers       []RouterCfg
	Links         []LinkCfg `yaml:",omitempty"`
}

func (c *SimCfg) GetRouter(id RouterId) (RouterCfg, bool) {
	idx := slices.IndexFunc(c.Routers, func(cfg RouterCfg) bool {
		return cfg.Id == id
	})
	if idx == -1 {
		return RouterCfg{}, false
	}
	return c.Routers[idx], true
}

// DefaultPrefix is the loopback prefix a router advertises when none is configured.
// Only the low 16 bits of the id fit, SimConfigValidator rejects the resulting collisions.
func DefaultPrefix(id RouterId) netip.Prefix {
	addr := netip.AddrFrom4([4]byte{10, byte(id >> 8), byte(id), 1})
	return netip.PrefixFrom(addr, 32)
}

// PortLabel returns the idx-th port label: A, B, ..., Z, AA, AB, ...
func PortLabel(idx int) Port {
	label := ""
	for {
		label = string(rune('A'+idx%26)) + label
		idx = idx/26 - 1
		if idx < 0 {
			break
		}
	}
	return Port(label)
}

// NewSimCfg returns an empty topology carrying the default seed and auto mode probabilities.
// Zero is a meaningful value for those fields, so they are never defaulted after the fact.
func NewSimCfg() SimCfg {
	return SimCfg{
		Seed:         DefaultSeed,
		CutChance:    CutChance,
		CreateChance: CreateChance,
	}
}

// ExpandSimConfig fills in defaults for the unset timer and cost fields, and for missing prefixes
func ExpandSimConfig(cfg *SimCfg) {
	if cfg.HelloInterval == 0 {
		cfg.HelloInterval = HelloInterval
	}
	if cfg.LsaInterval == 0 {
		cfg.LsaInterval = LsaInterval
	}
	if cfg.MaxLinkCost == 0 {
		cfg.MaxLinkCost = MaxLinkCost
	}
	for i := range cfg.Routers {
		if len(cfg.Routers[i].Prefixes) == 0 {
			cfg.Routers[i].Prefixes = []netip.Prefix{DefaultPrefix(cfg.Routers[i].Id)}
		}
	}
}

func ReadSimConfig(path string) (*SimCfg, error) {
	cfg := NewSimCfg()
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	err = yaml.Unmarshal(file, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	ExpandSimConfig(&cfg)
	err = SimConfigValidator(&cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func WriteSimConfig(path string, cfg *SimCfg) error {
	bytes, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, bytes, 0600)
}

// RandomSimConfig builds a network of numRouters routers with up to numLinks random links.
// Attempts that pick an already connected pair are skipped, so fewer links may be created.
func RandomSimConfig(numRouters, numLinks int, seed uint64) SimCfg {
	rng := rand.New(rand.NewPCG(seed, seed))
	cfg := NewSimCfg()
	cfg.Seed = seed
	nextPort := make(map[RouterId]int)
	for i := 1; i <= numRouters; i++ {
		cfg.Routers = append(cfg.Routers, RouterCfg{Id: RouterId(i)})
	}
	seen := make(map[Pair[RouterId, RouterId]]struct{})
	for range numLinks {
		if numRouters < 2 {
			break
		}
		perm := rng.Perm(numRouters)
		a, b := RouterId(perm[0]+1), RouterId(perm[1]+1)
		if _, ok := seen[Pair[RouterId, RouterId]{a, b}]; ok {
			continue
		}
		seen[Pair[RouterId, RouterId]{a, b}] = struct{}{}
		seen[Pair[RouterId, RouterId]{b, a}] = struct{}{}
		cfg.Links = append(cfg.Links, LinkCfg{
			From:     a,
			FromPort: PortLabel(nextPort[a]),
			To:       b,
			ToPort:   PortLabel(nextPort[b]),
			Cost:     uint32(rng.IntN(int(MaxLinkCost))) + 1,
		})
		nextPort[a]++
		nextPort[b]++
	}
	ExpandSimConfig(&cfg)
	return cfg
}
