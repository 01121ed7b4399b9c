package main

import (
	"storybox-cli/api"
	"storybox-cli/auth"
	"storybox-cli/cmd"
	"storybox-cli/config"
	"storybox-cli/fs"
	"storybox-cli/logger"
	"storybox-cli/term"

	"go.uber.org/zap"
)

func init() {
	config.Init()

	err := fs.Init()
	if err != nil {
		term.OutputErrorAndExit("Error initializing home dir: %v", err)
	}

	logger.Init(config.Current.LogLevel, fs.LogPath)

	session, err := auth.Load(fs.HomeAuthPath)
	if err != nil {
		term.OutputErrorAndExit("Error loading session: %v", err)
	}
	auth.Current = session

	session.OnLogout(func(reason string) {
		logger.Logger.Info("signed out", zap.String("reason", reason))
	})

	client := api.New(api.Params{
		Host:           config.Current.BaseURL,
		Session:        session,
		RequestTimeout: config.Current.RequestTimeout,
		UploadTimeout:  config.Current.UploadTimeout,
	})

	// inter-package dependency injections to avoid circular imports
	auth.SetApiClient(client)
	cmd.SetClients(client, api.NewSocket(config.Current.SocketURL, session))
}

func main() {
	defer logger.Sync()
	cmd.Execute()
}
