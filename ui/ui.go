package ui

import (
	"fmt"

	"storybox-cli/term"

	"github.com/pkg/browser"
)

// OpenURL opens url in the default browser, printing it as well in case that
// doesn't work.
func OpenURL(msg, url string) {
	fmt.Printf(
		"%s\n\nIf it doesn't open automatically, use this URL:\n%s\n",
		term.Success(msg),
		url,
	)

	err := browser.OpenURL(url)
	if err != nil {
		fmt.Printf("Failed to open URL automatically: %v\n", err)
		fmt.Println("Please open the URL manually in your browser.")
	}
}
