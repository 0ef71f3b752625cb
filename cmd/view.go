package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/encodeous/linkstate/core"
	"github.com/encodeous/linkstate/state"
	"github.com/spf13/cobra"
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Runs the simulation quietly and shows the topology as one router sees it",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := state.ReadSimConfig(state.ConfigPath)
		if err != nil {
			panic(err)
		}
		id, _ := cmd.Flags().GetUint32("router")
		if _, ok := cfg.GetRouter(state.RouterId(id)); !ok {
			fmt.Fprintf(os.Stderr, "router %d is not part of the topology\n", id)
			os.Exit(1)
		}
		ticks, _ := cmd.Flags().GetUint64("ticks")

		sim, err := core.Start(*cfg, core.RunOptions{Ticks: ticks, Level: slog.LevelWarn})
		if err != nil {
			panic(err)
		}
		printRouter(os.Stdout, sim.Router(state.RouterId(id)))
	},
	GroupID: "sim",
}

func init() {
	rootCmd.AddCommand(viewCmd)
	viewCmd.Flags().Uint32P("router", "i", 1, "router to inspect")
	viewCmd.Flags().Uint64P("ticks", "t", 100, "number of ticks to run first")
}
