package cmd

import (
	"fmt"
	"strings"

	"storybox-cli/auth"
	"storybox-cli/term"

	"github.com/spf13/cobra"
)

var tagsCmd = &cobra.Command{
	Use:   "tags <text>",
	Short: "Suggest tags for some text",
	Args:  cobra.MinimumNArgs(1),
	Run:   tags,
}

func init() {
	RootCmd.AddCommand(tagsCmd)
}

func tags(cmd *cobra.Command, args []string) {
	auth.MustResolveAuth()

	term.StartSpinner("🏷  Finding tags...")
	res, apiErr := apiClient.GetGenres(cmdContext(cmd), strings.Join(args, " "))
	term.StopSpinner()

	if apiErr != nil {
		exitWithErr("Error suggesting tags", apiErr)
	}

	if len(res) == 0 {
		fmt.Println("🤷‍♂️ No tags found")
		return
	}

	fmt.Println(term.Tags(res))
}
