package state

// DiamondCfg is the four router network used throughout the tests:
//
//	   2
//	2 /|\ 4
//	 / | \
//	1  |5 4
//	 \ |
//	1 \|
//	   3
func DiamondCfg() SimCfg {
	cfg := NewSimCfg()
	cfg.Routers = []RouterCfg{{Id: 1}, {Id: 2}, {Id: 3}, {Id: 4}}
	cfg.Links = []LinkCfg{
		{From: 1, FromPort: "A", To: 2, ToPort: "A", Cost: 2},
		{From: 1, FromPort: "B", To: 3, ToPort: "A", Cost: 1},
		{From: 2, FromPort: "B", To: 3, ToPort: "B", Cost: 5},
		{From: 2, FromPort: "C", To: 4, ToPort: "A", Cost: 4},
	}
	ExpandSimConfig(&cfg)
	return cfg
}

// LineCfg connects routers 1..n in a chain with unit costs, port A facing lower ids and port B facing higher ids.
func LineCfg(n int) SimCfg {
	cfg := NewSimCfg()
	for i := 1; i <= n; i++ {
		cfg.Routers = append(cfg.Routers, RouterCfg{Id: RouterId(i)})
		if i > 1 {
			cfg.Links = append(cfg.Links, LinkCfg{
				From:     RouterId(i - 1),
				FromPort: "B",
				To:       RouterId(i),
				ToPort:   "A",
				Cost:     1,
			})
		}
	}
	ExpandSimConfig(&cfg)
	return cfg
}
