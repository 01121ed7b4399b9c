package cmd

import (
	"fmt"
	"os"

	"storybox-cli/auth"
	"storybox-cli/lib"
	"storybox-cli/term"

	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List people on Storybox",
	Args:  cobra.NoArgs,
	Run:   listUsers,
}

var userCmd = &cobra.Command{
	Use:   "user <user-id>",
	Short: "Show someone's profile and posts",
	Args:  cobra.ExactArgs(1),
	Run:   showUser,
}

var usersSearch string

func init() {
	RootCmd.AddCommand(usersCmd)
	RootCmd.AddCommand(userCmd)

	usersCmd.Flags().StringVarP(&usersSearch, "search", "s", "", "Fuzzy-match username, name or email")
}

func listUsers(cmd *cobra.Command, args []string) {
	auth.MustResolveAuth()

	term.StartSpinner("")
	users, apiErr := apiClient.ListUsers(cmdContext(cmd))
	term.StopSpinner()

	if apiErr != nil {
		term.HandleApiError(apiErr)
	}

	users = lib.SearchUsers(users, usersSearch)

	if len(users) == 0 {
		fmt.Println("🤷‍♂️ No users found")
		return
	}

	selfId := auth.Current.UserId()

	table := term.NewTable(os.Stdout, []string{"Username", "Name", "Email", "Id"})
	for _, u := range users {
		name := u.UserName
		if u.Id == selfId {
			name += " (you)"
		}
		table.Append([]string{name, u.FullName(), u.Email, u.Id})
	}
	table.Render()

	fmt.Println()
	term.PrintCmds("", "chat")
}

func showUser(cmd *cobra.Command, args []string) {
	auth.MustResolveAuth()
	ctx := cmdContext(cmd)

	term.StartSpinner("")
	user, apiErr := apiClient.GetUser(ctx, args[0])
	term.StopSpinner()

	if apiErr != nil {
		term.HandleApiError(apiErr)
	}

	printUser(user)
	fmt.Println()

	enricher := lib.NewEnricher(apiClient)
	browseFeed(ctx, lib.NewFeed(apiClient, enricher, user.Id), enricher)
}
