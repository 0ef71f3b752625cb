package cmd

import (
	"fmt"
	"os"

	"github.com/encodeous/linkstate/state"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Checks that the topology config is valid",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := state.ReadSimConfig(state.ConfigPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		fmt.Printf("Config is valid: %d routers, %d links, seed %d\n", len(cfg.Routers), len(cfg.Links), cfg.Seed)
	},
	GroupID: "sim",
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
