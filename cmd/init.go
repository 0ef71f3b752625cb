package cmd

import (
	"fmt"

	"github.com/encodeous/linkstate/state"
	"github.com/spf13/cobra"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Generate a random topology config",
	Run: func(cmd *cobra.Command, args []string) {
		routers, _ := cmd.Flags().GetInt("routers")
		links, _ := cmd.Flags().GetInt("links")
		seed, _ := cmd.Flags().GetUint64("seed")
		if routers < 1 {
			_ = cmd.Usage()
			return
		}

		cfg := state.RandomSimConfig(routers, links, seed)
		err := state.SimConfigValidator(&cfg)
		if err != nil {
			panic(err)
		}

		outPath := cmd.Flag("output").Value.String()
		err = state.PathValidator(outPath)
		if err != nil {
			panic(err)
		}
		err = state.WriteSimConfig(outPath, &cfg)
		if err != nil {
			panic(err)
		}
		fmt.Printf("Wrote %d routers and %d links to %s\n", len(cfg.Routers), len(cfg.Links), outPath)
	},
	GroupID: "init",
}

func init() {
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().StringP("output", "o", state.ConfigPath, "topology config output file path")
	newCmd.Flags().IntP("routers", "r", 4, "number of routers")
	newCmd.Flags().IntP("links", "l", 5, "number of links to attempt")
	newCmd.Flags().Uint64P("seed", "s", state.DefaultSeed, "random seed")
}
