package cmd

import (
	"fmt"
	"os"
	"strings"

	"storybox-cli/auth"
	"storybox-cli/lib"
	shared "storybox-cli/shared"
	"storybox-cli/term"

	"github.com/spf13/cobra"
)

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show your profile",
	Args:  cobra.NoArgs,
	Run:   me,
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage your profile",
}

var profileEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Update your profile",
	Long:  `Update your profile. Fields not given as flags are prompted for, with the current value as the default.`,
	Args:  cobra.NoArgs,
	Run:   profileEdit,
}

var profileDeleteCmd = &cobra.Command{
	Use:     "delete",
	Aliases: []string{"rm"},
	Short:   "Permanently delete your account",
	Args:    cobra.NoArgs,
	Run:     profileDelete,
}

var profileUserName string
var profileEmail string
var profileFirstName string
var profileLastName string
var profilePhone string
var profileGender string
var profilePicture string
var profileCrop string
var profileNoCrop bool

func init() {
	RootCmd.AddCommand(meCmd)
	RootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileEditCmd)
	profileCmd.AddCommand(profileDeleteCmd)

	profileEditCmd.Flags().StringVar(&profileUserName, "username", "", "New username")
	profileEditCmd.Flags().StringVar(&profileEmail, "email", "", "New email")
	profileEditCmd.Flags().StringVar(&profileFirstName, "first-name", "", "First name")
	profileEditCmd.Flags().StringVar(&profileLastName, "last-name", "", "Last name")
	profileEditCmd.Flags().StringVar(&profilePhone, "phone", "", "Phone number in E.164 form, e.g. +15551234567")
	profileEditCmd.Flags().StringVar(&profileGender, "gender", "", "male, female or other")
	profileEditCmd.Flags().StringVar(&profilePicture, "picture", "", "New profile picture")
	profileEditCmd.Flags().StringVar(&profileCrop, "crop", "", "Crop the picture to x,y,width,height (default: centered square)")
	profileEditCmd.Flags().BoolVar(&profileNoCrop, "no-crop", false, "Upload the picture without cropping")
}

func me(cmd *cobra.Command, args []string) {
	auth.MustResolveAuth()

	term.StartSpinner("")
	user, apiErr := apiClient.GetMe(cmdContext(cmd))
	term.StopSpinner()

	if apiErr != nil {
		term.HandleApiError(apiErr)
	}

	printUser(user)
}

func printUser(user *shared.User) {
	fmt.Println(term.Handle(user.UserName))

	table := term.NewTable(os.Stdout, []string{"Field", "Value"})
	table.Append([]string{"Id", user.Id})
	table.Append([]string{"Email", user.Email})
	if name := user.FullName(); name != "" {
		table.Append([]string{"Name", name})
	}
	if user.PhoneNumber != nil && *user.PhoneNumber != "" {
		table.Append([]string{"Phone", *user.PhoneNumber})
	}
	if user.Gender != nil && *user.Gender != "" {
		table.Append([]string{"Gender", *user.Gender})
	}
	if user.DateJoined != nil {
		table.Append([]string{"Joined", user.DateJoined.Local().Format("Jan 2, 2006")})
	}
	if user.ProfilePictureUri != "" {
		table.Append([]string{"Picture", user.ProfilePictureUri})
	}
	table.Render()
}

func profileEdit(cmd *cobra.Command, args []string) {
	auth.MustResolveAuth()
	ctx := cmdContext(cmd)

	term.StartSpinner("")
	user, apiErr := apiClient.GetMe(ctx)
	term.StopSpinner()

	if apiErr != nil {
		term.HandleApiError(apiErr)
	}

	flags := cmd.Flags()
	anySet := flags.NFlag() > 0

	var req shared.UpdateUserRequest

	field := func(name string, flagVal string, current *string) *string {
		if flags.Changed(name) {
			v := strings.TrimSpace(flagVal)
			return &v
		}
		if anySet {
			return nil
		}

		def := ""
		if current != nil {
			def = *current
		}
		v, err := term.GetUserStringInputWithDefault(shared.Capitalize(strings.ReplaceAll(name, "-", " "))+":", def)
		if err != nil {
			term.OutputErrorAndExit("Error prompting %s: %v", name, err)
		}
		v = strings.TrimSpace(v)
		if v == def {
			return nil
		}
		return &v
	}

	req.UserName = field("username", profileUserName, &user.UserName)
	req.Email = field("email", profileEmail, &user.Email)
	req.FirstName = field("first-name", profileFirstName, user.FirstName)
	req.LastName = field("last-name", profileLastName, user.LastName)
	req.PhoneNumber = field("phone", profilePhone, user.PhoneNumber)
	req.Gender = field("gender", profileGender, user.Gender)

	if req.PhoneNumber != nil && *req.PhoneNumber == "" {
		req.PhoneNumber = nil
	}
	if req.Gender != nil && *req.Gender == "" {
		req.Gender = nil
	}

	if apiErr := shared.ValidateRequest(req); apiErr != nil {
		exitWithErr("Error updating profile", apiErr)
	}

	if src := imageSource(profilePicture, profileCrop, profileNoCrop); src != nil {
		term.StartSpinner("📤 Uploading picture...")
		uri, err := lib.PrepareImage(ctx, apiClient, *src)
		term.StopSpinner()
		if err != nil {
			exitWithErr("Error updating profile", err)
		}
		req.ProfilePictureUri = &uri
	}

	term.StartSpinner("")
	updated, apiErr := apiClient.UpdateUser(ctx, user.Id, req)
	term.StopSpinner()

	if apiErr != nil {
		exitWithErr("Error updating profile", apiErr)
	}

	fmt.Println("✅ Profile updated")
	fmt.Println()
	printUser(updated)
}

func profileDelete(cmd *cobra.Command, args []string) {
	auth.MustResolveAuth()

	userId := auth.Current.UserId()

	confirmed, err := term.ConfirmYesNo("Permanently delete your account? This can't be undone.")
	if err != nil {
		term.OutputErrorAndExit("Error confirming: %v", err)
	}
	if !confirmed {
		fmt.Println("🤷‍♂️ Account not deleted")
		return
	}

	term.StartSpinner("")
	apiErr := apiClient.DeleteUser(cmdContext(cmd), userId)
	term.StopSpinner()

	if apiErr != nil {
		exitWithErr("Error deleting account", apiErr)
	}

	err = auth.Current.Clear()
	if err != nil {
		term.OutputErrorAndExit("Error clearing session: %v", err)
	}

	fmt.Println("✅ Account deleted")
}
