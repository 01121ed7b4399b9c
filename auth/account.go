package auth

import (
	"context"
	"fmt"
	"os"
	"strings"

	shared "storybox-cli/shared"
	"storybox-cli/term"
)

const maxFormAttempts = 3

func SignIn() error {
	var req shared.LoginRequest
	var err error

	for attempt := 0; attempt < maxFormAttempts; attempt++ {
		req.Email, err = term.GetUserStringInputWithDefault("Email:", req.Email)
		if err != nil {
			return fmt.Errorf("error prompting email: %v", err)
		}

		req.Password, err = term.GetUserPasswordInput("Password:")
		if err != nil {
			return fmt.Errorf("error prompting password: %v", err)
		}

		term.StartSpinner("")
		_, apiErr := apiClient.Login(context.Background(), req)
		term.StopSpinner()

		if apiErr == nil {
			printSignedIn()
			return nil
		}

		if !retryable(apiErr) {
			return fmt.Errorf("error signing in: %v", apiErr.Msg)
		}

		term.OutputSimpleError(term.FormatFieldError(apiErr))
	}

	return fmt.Errorf("error signing in: too many attempts")
}

// Register creates an account, optionally uploading a profile picture first,
// then signs in with the new credentials.
func Register(picturePath string) error {
	var req shared.RegisterRequest
	var err error

	if picturePath != "" {
		req.ProfilePictureUri, err = uploadPicture(picturePath)
		if err != nil {
			return err
		}
	}

	for attempt := 0; attempt < maxFormAttempts; attempt++ {
		req.Email, err = term.GetUserStringInputWithDefault("Email:", req.Email)
		if err != nil {
			return fmt.Errorf("error prompting email: %v", err)
		}

		req.UserName, err = term.GetUserStringInputWithDefault("Username:", req.UserName)
		if err != nil {
			return fmt.Errorf("error prompting username: %v", err)
		}

		req.Password, err = term.GetUserPasswordInput("Password:")
		if err != nil {
			return fmt.Errorf("error prompting password: %v", err)
		}

		term.StartSpinner("🌟 Creating account...")
		_, apiErr := apiClient.Register(context.Background(), req)
		term.StopSpinner()

		if apiErr == nil {
			break
		}

		if !retryable(apiErr) {
			return fmt.Errorf("error creating account: %v", apiErr.Msg)
		}

		term.OutputSimpleError(term.FormatFieldError(apiErr))

		if attempt == maxFormAttempts-1 {
			return fmt.Errorf("error creating account: too many attempts")
		}
	}

	term.StartSpinner("")
	_, apiErr := apiClient.Login(context.Background(), shared.LoginRequest{Email: req.Email, Password: req.Password})
	term.StopSpinner()

	if apiErr != nil {
		return fmt.Errorf("account created but sign in failed: %v", apiErr.Msg)
	}

	printSignedIn()
	return nil
}

// GoogleSignIn exchanges a Google ID token for a session. The token is
// prompted for when credential is empty.
func GoogleSignIn(credential string) error {
	var err error
	if credential == "" {
		credential, err = term.GetUserPasswordInput("Google ID token:")
		if err != nil {
			return fmt.Errorf("error prompting credential: %v", err)
		}
	}

	term.StartSpinner("")
	_, apiErr := apiClient.GoogleSignIn(context.Background(), shared.GoogleSignInRequest{Credential: strings.TrimSpace(credential)})
	term.StopSpinner()

	if apiErr != nil {
		return fmt.Errorf("error signing in with Google: %v", apiErr.Msg)
	}

	printSignedIn()
	return nil
}

func uploadPicture(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("error reading profile picture: %v", err)
	}

	term.StartSpinner("📤 Uploading picture...")
	uri, apiErr := apiClient.UploadImage(context.Background(), path, data)
	term.StopSpinner()

	if apiErr != nil {
		return "", fmt.Errorf("error uploading profile picture: %v", apiErr.Msg)
	}

	return uri, nil
}

// retryable errors are the ones the user can fix by answering the prompts again
func retryable(apiErr *shared.ApiError) bool {
	if apiErr.Type == shared.ApiErrorTypeValidation {
		return true
	}
	return apiErr.Type == shared.ApiErrorTypeServer && apiErr.Status < 500
}

func printSignedIn() {
	term.StartSpinner("")
	me, apiErr := apiClient.GetMe(context.Background())
	term.StopSpinner()

	if apiErr != nil {
		fmt.Println("✅ Signed in")
		return
	}

	fmt.Printf("✅ Signed in as %s\n", term.Success(fmt.Sprintf("<%s> %s", me.UserName, me.Email)))
	fmt.Println()
	term.PrintCmds("", "feed", "convos", "users")
}
