package cmd

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/encodeous/linkstate/core"
)

// printRouter writes a router's view of the topology followed by its route table.
func printRouter(w io.Writer, r *core.Router) {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("router %d (seqno %d)\n", r.Id, r.Seqno))
	sb.WriteString("  neighbours:\n")
	writeIndented(&sb, r.StringNeighbours())
	view := r.View()
	sb.WriteString("  topology:\n")
	for _, origin := range slices.Sorted(maps.Keys(view)) {
		links := make([]string, 0, len(view[origin]))
		for _, link := range view[origin] {
			links = append(links, fmt.Sprintf("%d(%d)", link.Router, link.Cost))
		}
		sb.WriteString(fmt.Sprintf("    %d -> %s\n", origin, strings.Join(links, " ")))
	}
	sb.WriteString("  database:\n")
	writeIndented(&sb, r.StringDatabase())
	sb.WriteString("  routes:\n")
	writeIndented(&sb, r.Routes().String())
	_, _ = io.WriteString(w, sb.String())
}

func writeIndented(sb *strings.Builder, text string) {
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("    %s\n", line))
	}
}

func printSummary(w io.Writer, sim *core.Simulation) {
	_, _ = fmt.Fprintf(w, "after %d ticks, converged: %t\n", sim.Ticks, sim.Converged())
	for _, r := range sim.Routers() {
		printRouter(w, r)
	}
}
