package cmd

import (
	"fmt"

	"storybox-cli/auth"
	"storybox-cli/term"

	"github.com/spf13/cobra"
)

var useGoogle bool
var googleCredential string

var signInCmd = &cobra.Command{
	Use:     "login",
	Aliases: []string{"sign-in"},
	Short:   "Sign in to Storybox",
	Args:    cobra.NoArgs,
	Run:     signIn,
}

var registerPicture string

var registerCmd = &cobra.Command{
	Use:     "register",
	Aliases: []string{"sign-up"},
	Short:   "Create a Storybox account",
	Args:    cobra.NoArgs,
	Run:     register,
}

var signOutCmd = &cobra.Command{
	Use:     "sign-out",
	Aliases: []string{"logout"},
	Short:   "Sign out of Storybox",
	Args:    cobra.NoArgs,
	Run:     signOut,
}

func init() {
	RootCmd.AddCommand(signInCmd)
	RootCmd.AddCommand(registerCmd)
	RootCmd.AddCommand(signOutCmd)

	signInCmd.Flags().BoolVar(&useGoogle, "google", false, "Sign in with a Google ID token")
	signInCmd.Flags().StringVar(&googleCredential, "credential", "", "Google ID token (implies --google)")

	registerCmd.Flags().StringVar(&registerPicture, "picture", "", "Profile picture to upload")
}

func signIn(cmd *cobra.Command, args []string) {
	var err error
	if useGoogle || googleCredential != "" {
		err = auth.GoogleSignIn(googleCredential)
	} else {
		err = auth.SignIn()
	}

	if err != nil {
		term.OutputErrorAndExit("%v", err)
	}
}

func register(cmd *cobra.Command, args []string) {
	err := auth.Register(registerPicture)
	if err != nil {
		term.OutputErrorAndExit("%v", err)
	}
}

func signOut(cmd *cobra.Command, args []string) {
	if !auth.Current.IsSignedIn() {
		fmt.Println("🤷‍♂️ Not signed in")
		return
	}

	apiErr := apiClient.SignOut()
	if apiErr != nil {
		term.OutputErrorAndExit("Error signing out: %v", apiErr.Msg)
	}

	fmt.Println("✅ Signed out")
}
