package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/continuous-intelligence/cIV/server"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(server.FormatBuildVersion(assets.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
