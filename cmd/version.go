package cmd

import (
	"fmt"

	"storybox-cli/version"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of the Storybox CLI",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Storybox CLI Version:", version.Version)
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}
