package term

import (
	"time"

	"storybox-cli/utils"

	"github.com/briandowns/spinner"
)

const withMessageMinDuration = 500 * time.Millisecond
const withoutMessageMinDuration = 250 * time.Millisecond

var s = spinner.New(spinner.CharSets[33], 100*time.Millisecond)
var startedAt time.Time

var lastMessage string
var active bool

func StartSpinner(msg string) {
	if active {
		if msg == lastMessage {
			return
		}

		s.Stop()
	}

	startedAt = time.Now()
	s.Prefix = msg + " "
	lastMessage = msg
	s.Start()
	active = true
}

func StopSpinner() {
	if !active {
		return
	}

	if lastMessage != "" {
		utils.EnsureMinDuration(startedAt, withMessageMinDuration)
	} else {
		utils.EnsureMinDuration(startedAt, withoutMessageMinDuration)
	}

	s.Stop()
	ClearCurrentLine()

	active = false
}
