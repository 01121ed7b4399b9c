package term

import (
	"fmt"
	"os"
	"strings"

	shared "storybox-cli/shared"

	"github.com/fatih/color"
)

func OutputSimpleError(msg string, args ...interface{}) {
	msg = fmt.Sprintf(msg, args...)
	fmt.Fprintln(os.Stderr, Alert("🚨 "+shared.Capitalize(msg)))
}

func OutputErrorAndExit(msg string, args ...interface{}) {
	StopSpinner()

	msg = fmt.Sprintf(msg, args...)

	displayMsg := ""
	errorParts := strings.Split(msg, ": ")

	addedErrors := map[string]bool{}

	if len(errorParts) > 1 {
		i := 0
		for _, part := range errorParts {
			// don't repeat the same error message
			if addedErrors[strings.ToLower(part)] {
				continue
			}

			if i != 0 {
				displayMsg += "\n" + strings.Repeat("  ", i) + "→ "
			}

			s := shared.Capitalize(part)
			if i == 0 {
				s = "🚨 " + s
			}
			displayMsg += s

			addedErrors[strings.ToLower(part)] = true
			i++
		}
	} else {
		displayMsg = "🚨 " + shared.Capitalize(msg)
	}

	fmt.Fprintln(os.Stderr, Alert(displayMsg))
	os.Exit(1)
}

// HandleApiError prints an api error at the command boundary and exits.
func HandleApiError(apiErr *shared.ApiError) {
	StopSpinner()

	switch apiErr.Type {
	case shared.ApiErrorTypeInvalidToken:
		OutputSimpleError("You've been signed out")
		fmt.Println()
		PrintCmds("", "login")
		os.Exit(1)
	case shared.ApiErrorTypeCanceled:
		os.Exit(1)
	case shared.ApiErrorTypeNetwork:
		OutputErrorAndExit("Couldn't reach the server: %s", apiErr.Msg)
	}

	if apiErr.Field != "" {
		OutputErrorAndExit("%s: %s", apiErr.Field, apiErr.Msg)
	}

	OutputErrorAndExit(apiErr.Msg)
}

// FormatFieldError renders an error next to the form field it belongs to,
// for prompts that ask again instead of exiting.
func FormatFieldError(apiErr *shared.ApiError) string {
	if apiErr.Field == "" {
		return shared.Capitalize(apiErr.Msg)
	}
	return fmt.Sprintf("%s → %s", color.New(color.Bold).Sprint(apiErr.Field), shared.Capitalize(apiErr.Msg))
}
