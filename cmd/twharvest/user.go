package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"twharvest/pkg/ui"
)

// userCmd represents the user command
var userCmd = &cobra.Command{
	Use:   "user <screen_name>",
	Short: "Show an account's profile",
	Long:  `Look up one account with the active credential and print its profile counters.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runUser,
}

func init() {
	rootCmd.AddCommand(userCmd)
}

func runUser(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}

	u, err := s.harvester.UserInfo(cmd.Context(), strings.TrimPrefix(strings.TrimSpace(args[0]), "@"))
	if err != nil {
		return err
	}

	ui.PrintHighlight(fmt.Sprintf("@%s", u.ScreenName))
	ui.PrintInfo("Name", u.Name)
	ui.PrintInfo("ID", u.IDStr)
	if u.Description != "" {
		ui.PrintInfo("Bio", u.Description)
	}
	if u.Location != "" {
		ui.PrintInfo("Location", u.Location)
	}
	ui.PrintInfo("Joined", u.CreatedAt)
	ui.PrintInfo("Tweets", fmt.Sprint(u.StatusesCount))
	ui.PrintInfo("Following", fmt.Sprint(u.FriendsCount))
	ui.PrintInfo("Followers", fmt.Sprint(u.FollowersCount))
	ui.PrintInfo("Listed", fmt.Sprint(u.ListedCount))
	if u.Verified {
		ui.PrintSuccess("Verified account")
	}
	if u.Protected {
		ui.PrintWarning("Tweets are protected")
	}
	return nil
}
