package main

import (
	"github.com/spf13/cobra"
)

// friendsCmd represents the friends command
var friendsCmd = &cobra.Command{
	Use:   "friends [screen_name...]",
	Short: "Harvest the accounts users follow",
	Long: `Harvest the accounts each user follows into <screen_name>_friends.csv.

With no arguments the saved user list is used. The friend list is read with
cursor paging until the API reports no further page.`,
	Example: `  twharvest friends nasa
  twharvest friends --output ./graph`,
	RunE: runFriends,
}

func init() {
	rootCmd.AddCommand(friendsCmd)
}

func runFriends(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}

	users, err := resolveUsers(s.cfg, args)
	if err != nil {
		return err
	}

	outcomes, err := s.harvester.FriendsOf(cmd.Context(), users)
	printOutcomes(outcomes)
	return err
}
