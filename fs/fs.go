package fs

import (
	"fmt"
	"os"
	"path/filepath"

	"storybox-cli/config"
)

var HomeDir string
var HomeStoryboxDir string
var HomeAuthPath string
var LogPath string
var CacheDir string

// Init resolves and creates the home storybox dir. It must run after config.Init.
func Init() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("couldn't find home dir: %v", err)
	}
	HomeDir = home

	if config.Current.HomeDir != "" {
		HomeStoryboxDir = config.Current.HomeDir
	} else if config.Current.IsDev() {
		HomeStoryboxDir = filepath.Join(home, ".storybox-home-dev")
	} else {
		HomeStoryboxDir = filepath.Join(home, ".storybox-home")
	}

	err = os.MkdirAll(HomeStoryboxDir, 0700)
	if err != nil {
		return fmt.Errorf("error creating %s: %v", HomeStoryboxDir, err)
	}

	CacheDir = filepath.Join(HomeStoryboxDir, "cache")
	HomeAuthPath = filepath.Join(HomeStoryboxDir, "auth.json")
	LogPath = filepath.Join(HomeStoryboxDir, "storybox.log")

	err = os.MkdirAll(CacheDir, 0700)
	if err != nil {
		return fmt.Errorf("error creating cache dir: %v", err)
	}

	return nil
}
