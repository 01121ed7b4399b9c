package term

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var CmdDesc = map[string][2]string{
	"login":    {"", "sign in with email and password"},
	"register": {"", "create an account"},
	"feed":     {"f", "browse the latest posts"},
	"post":     {"", "create, edit, show or remove a post"},
	"convos":   {"", "list your conversations"},
	"chat":     {"", "open a conversation"},
	"users":    {"", "find people"},
}

func PrintCmds(prefix string, cmds ...string) {
	for _, cmd := range cmds {
		config, ok := CmdDesc[cmd]
		if !ok {
			continue
		}

		alias := config[0]
		desc := config[1]
		if alias != "" {
			cmd = strings.Replace(cmd, alias, fmt.Sprintf("(%s)", alias), 1)
		}
		styled := color.New(color.Bold, color.FgHiWhite, color.BgCyan).Sprintf(" storybox %s ", cmd)

		fmt.Printf("%s%s 👉 %s\n", prefix, styled, desc)
	}
}

func ClearCurrentLine() {
	fmt.Print("\033[2K\r")
}

func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
