package state

import (
	"fmt"
	"net/netip"
	"os"
	"path"
	"path/filepath"
	"regexp"
)

var portPattern, _ = regexp.Compile("^[A-Z]+$")

func PathValidator(s string) error {
	_, err := os.Stat(path.Dir(s))
	if err != nil {
		return err
	}
	_, err = filepath.Abs(s)
	return err
}

func PortValidator(p Port) error {
	if !portPattern.MatchString(string(p)) {
		return fmt.Errorf("%q is not a valid port, must match pattern %s", p, portPattern.String())
	}
	return nil
}

func RouterValidator(r RouterCfg) error {
	if r.Id == 0 {
		return fmt.Errorf("router id must be positive")
	}
	for _, prefix := range r.Prefixes {
		if !prefix.IsValid() {
			return fmt.Errorf("router %d has an invalid prefix", r.Id)
		}
	}
	return nil
}

func SimConfigValidator(cfg *SimCfg) error {
	if cfg.HelloInterval <= 0 {
		return fmt.Errorf("hello_interval must be positive, got %d", cfg.HelloInterval)
	}
	if cfg.LsaInterval <= 0 {
		return fmt.Errorf("lsa_interval must be positive, got %d", cfg.LsaInterval)
	}
	if cfg.CutChance < 0 || cfg.CutChance > 1 {
		return fmt.Errorf("cut_chance must be within [0, 1], got %v", cfg.CutChance)
	}
	if cfg.CreateChance < 0 || cfg.CreateChance > 1 {
		return fmt.Errorf("create_chance must be within [0, 1], got %v", cfg.CreateChance)
	}
	if len(cfg.Routers) == 0 {
		return fmt.Errorf("at least one router must be defined")
	}

	ids := make(map[RouterId]struct{})
	owners := make(map[netip.Prefix]RouterId)
	for _, r := range cfg.Routers {
		err := RouterValidator(r)
		if err != nil {
			return err
		}
		if _, ok := ids[r.Id]; ok {
			return fmt.Errorf("duplicate router id %d", r.Id)
		}
		ids[r.Id] = struct{}{}
		for _, prefix := range r.Prefixes {
			if owner, ok := owners[prefix.Masked()]; ok && owner != r.Id {
				return fmt.Errorf("prefix %s is advertised by both router %d and router %d", prefix, owner, r.Id)
			}
			owners[prefix.Masked()] = r.Id
		}
	}

	ports := make(map[Pair[RouterId, Port]]struct{})
	pairs := make(map[Pair[RouterId, RouterId]]struct{})
	for _, link := range cfg.Links {
		for _, end := range []Pair[RouterId, Port]{{link.From, link.FromPort}, {link.To, link.ToPort}} {
			if _, ok := ids[end.V1]; !ok {
				return fmt.Errorf("router %d not defined", end.V1)
			}
			err := PortValidator(end.V2)
			if err != nil {
				return err
			}
			if _, ok := ports[end]; ok {
				return fmt.Errorf("port %s of router %d is used by more than one link", end.V2, end.V1)
			}
			ports[end] = struct{}{}
		}
		if link.From == link.To {
			return fmt.Errorf("router %d cannot link to itself", link.From)
		}
		if link.Cost == 0 {
			return fmt.Errorf("link %d-%d must have a positive cost", link.From, link.To)
		}
		if _, ok := pairs[Pair[RouterId, RouterId]{link.From, link.To}]; ok {
			return fmt.Errorf("duplicate link found: %d, %d", link.From, link.To)
		}
		pairs[Pair[RouterId, RouterId]{link.From, link.To}] = struct{}{}
		pairs[Pair[RouterId, RouterId]{link.To, link.From}] = struct{}{}
	}
	return nil
}
