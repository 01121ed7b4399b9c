package cmd

import (
	"context"
	"os"
	"os/signal"

	"storybox-cli/api"
	"storybox-cli/term"
	"storybox-cli/types"

	"github.com/spf13/cobra"
)

var apiClient types.ApiClient
var socket *api.Socket

// SetClients is called from main once config and the session are loaded.
func SetClients(client types.ApiClient, s *api.Socket) {
	apiClient = client
	socket = s
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   `storybox [command] [flags]`,
	Short: "Storybox: posts, likes and chat from your terminal",
	Run: func(cmd *cobra.Command, args []string) {
		run(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := RootCmd.ExecuteContext(ctx); err != nil {
		term.OutputErrorAndExit("Error executing root command: %v", err)
	}
}

func run(cmd *cobra.Command, args []string) {
	term.PrintCmds("", "feed", "post", "convos", "chat", "users")
}
