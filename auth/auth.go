package auth

import (
	"fmt"

	"storybox-cli/term"
	"storybox-cli/types"
)

var apiClient types.ApiClient

func SetApiClient(client types.ApiClient) {
	apiClient = client
}

// MustResolveAuth makes sure a user is signed in before a command that needs
// one runs, prompting to sign in or register when nobody is.
func MustResolveAuth() {
	if apiClient == nil {
		term.OutputErrorAndExit("error resolving auth: api client not set")
	}
	if Current == nil {
		term.OutputErrorAndExit("error resolving auth: session not loaded")
	}

	if Current.IsSignedIn() {
		return
	}

	err := promptInitialAuth()
	if err != nil {
		term.OutputErrorAndExit("error resolving auth: %v", err)
	}
}

const (
	AuthSignInOption   = "Sign in with email"
	AuthGoogleOption   = "Sign in with Google"
	AuthRegisterOption = "Create an account"
)

func promptInitialAuth() error {
	selected, err := term.SelectFromList("👋 You're not signed in to Storybox. What would you like to do?", []string{AuthSignInOption, AuthGoogleOption, AuthRegisterOption})
	if err != nil {
		return fmt.Errorf("error selecting auth option: %v", err)
	}

	switch selected {
	case AuthSignInOption:
		return SignIn()
	case AuthGoogleOption:
		return GoogleSignIn("")
	case AuthRegisterOption:
		return Register("")
	}

	return nil
}
