package state

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPortValidator(t *testing.T) {
	assert.NoError(t, PortValidator("A"))
	assert.NoError(t, PortValidator("AB"))
	assert.Error(t, PortValidator(""))
	assert.Error(t, PortValidator("a"))
	assert.Error(t, PortValidator("A1"))
}

func TestSimConfigValidator_Valid(t *testing.T) {
	cfg := DiamondCfg()
	assert.NoError(t, SimConfigValidator(&cfg))
	line := LineCfg(5)
	assert.NoError(t, SimConfigValidator(&line))
}

func TestSimConfigValidator_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *SimCfg)
		err    string
	}{
		{"zero id", func(cfg *SimCfg) { cfg.Routers[0].Id = 0 }, "router id must be positive"},
		{"duplicate id", func(cfg *SimCfg) { cfg.Routers[1].Id = 1 }, "duplicate router id 1"},
		{"self link", func(cfg *SimCfg) {
			cfg.Links = append(cfg.Links, LinkCfg{From: 4, FromPort: "B", To: 4, ToPort: "C", Cost: 1})
		}, "cannot link to itself"},
		{"zero cost", func(cfg *SimCfg) { cfg.Links[0].Cost = 0 }, "positive cost"},
		{"reused port", func(cfg *SimCfg) { cfg.Links[1].FromPort = "A" }, "port A of router 1 is used by more than one link"},
		{"duplicate link", func(cfg *SimCfg) {
			cfg.Links = append(cfg.Links, LinkCfg{From: 2, FromPort: "D", To: 1, ToPort: "C", Cost: 3})
		}, "duplicate link found: 2, 1"},
		{"bad port", func(cfg *SimCfg) { cfg.Links[0].ToPort = "x" }, "not a valid port"},
		{"hello interval", func(cfg *SimCfg) { cfg.HelloInterval = -1 }, "hello_interval"},
		{"cut chance", func(cfg *SimCfg) { cfg.CutChance = 1.5 }, "cut_chance"},
		{"default prefix collision", func(cfg *SimCfg) {
			cfg.Routers = append(cfg.Routers, RouterCfg{Id: 65537, Prefixes: []netip.Prefix{DefaultPrefix(65537)}})
		}, "prefix 10.0.1.1/32 is advertised by both router 1 and router 65537"},
		{"shared prefix", func(cfg *SimCfg) {
			cfg.Routers[2].Prefixes = []netip.Prefix{netip.MustParsePrefix("10.0.4.1/32")}
		}, "advertised by both router 3 and router 4"},
		{"no routers", func(cfg *SimCfg) { cfg.Routers = nil; cfg.Links = nil }, "at least one router"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DiamondCfg()
			tt.mutate(&cfg)
			assert.ErrorContains(t, SimConfigValidator(&cfg), tt.err)
		})
	}
}
