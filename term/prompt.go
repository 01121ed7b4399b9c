package term

import (
	"fmt"
	"os"

	"github.com/plandex-ai/survey/v2"
)

func GetRequiredUserStringInput(msg string) (string, error) {
	res, err := GetUserStringInput(msg)
	if err != nil {
		return "", fmt.Errorf("failed to get user input: %s", err)
	}

	if res == "" {
		fmt.Println(Alert("🚨 This input is required"))
		return GetRequiredUserStringInput(msg)
	}

	return res, nil
}

func GetUserStringInput(msg string) (string, error) {
	return GetUserStringInputWithDefault(msg, "")
}

func GetUserStringInputWithDefault(msg, def string) (string, error) {
	var res string
	err := survey.AskOne(&survey.Input{
		Message: PromptLabel(msg),
		Default: def,
	}, &res)

	return res, handleInterrupt(err)
}

func GetUserPasswordInput(msg string) (string, error) {
	var res string
	err := survey.AskOne(&survey.Password{
		Message: PromptLabel(msg),
	}, &res)

	return res, handleInterrupt(err)
}

func ConfirmYesNo(fmtStr string, fmtArgs ...interface{}) (bool, error) {
	var res bool
	err := survey.AskOne(&survey.Confirm{
		Message: PromptLabel(fmt.Sprintf(fmtStr, fmtArgs...)),
	}, &res)

	if err != nil {
		return false, fmt.Errorf("failed to get user input: %s", handleInterrupt(err))
	}

	return res, nil
}

func SelectFromList(msg string, options []string) (string, error) {
	var selected string
	prompt := &survey.Select{
		Message:       PromptLabel(msg),
		Options:       options,
		FilterMessage: "",
	}
	err := survey.AskOne(prompt, &selected)
	if err != nil {
		return "", handleInterrupt(err)
	}

	return selected, nil
}

func handleInterrupt(err error) error {
	if err != nil && err.Error() == "interrupt" {
		os.Exit(0)
	}
	return err
}
