package cmd

import (
	"log/slog"
	"os"

	"github.com/encodeous/linkstate/core"
	"github.com/encodeous/linkstate/state"
	"github.com/spf13/cobra"
)

var noAssert = false

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation",
	Long:  `Runs the simulation over the configured topology, then prints what every router has learned.`,
	Run: func(cmd *cobra.Command, args []string) {
		state.DBG_assert = !noAssert
		cfg, err := state.ReadSimConfig(state.ConfigPath)
		if err != nil {
			panic(err)
		}

		opts := core.RunOptions{Level: slog.LevelInfo}
		if ok, _ := cmd.Flags().GetBool("verbose"); ok {
			opts.Level = slog.LevelDebug
		}
		opts.Ticks, _ = cmd.Flags().GetUint64("ticks")
		opts.Auto, _ = cmd.Flags().GetBool("auto")
		opts.Realtime, _ = cmd.Flags().GetBool("realtime")
		opts.LogPath, _ = cmd.Flags().GetString("log")
		opts.MetricsAddr, _ = cmd.Flags().GetString("metrics")

		sim, err := core.Start(*cfg, opts)
		if err != nil {
			panic(err)
		}
		printSummary(os.Stdout, sim)
	},
	GroupID: "sim",
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
	runCmd.Flags().Uint64P("ticks", "t", 200, "Number of ticks to run, 0 runs until interrupted (real time only)")
	runCmd.Flags().BoolP("auto", "a", false, "Randomly cut and create links while running")
	runCmd.Flags().BoolP("realtime", "r", false, "Pace ticks in wall-clock time instead of running them back to back")
	runCmd.Flags().String("log", "", "Also write logs to this file")
	runCmd.Flags().String("metrics", "", "Serve expvar metrics on this address, e.g. 127.0.0.1:6060")
	runCmd.Flags().BoolVar(&state.DBG_log_flood, "lflood", false, "Write LSA generation, acceptance and flooding to the console")
	runCmd.Flags().BoolVar(&state.DBG_log_hello, "lhello", false, "Write neighbour discovery to the console")
	runCmd.Flags().BoolVar(&state.DBG_log_routes, "lroutes", false, "Write route recomputations to the console")
	runCmd.Flags().BoolVar(&noAssert, "no-assert", false, "Do not panic when a protocol invariant is violated")
}
