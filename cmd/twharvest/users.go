package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"twharvest/pkg/ui"
	"twharvest/pkg/userlist"
)

// usersCmd represents the users command
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage the saved user list",
	Long: `Manage the list of screen names harvested when tweets or friends is run
without arguments. The list is stored as JSON in the data directory unless
users.file is set in the configuration.`,
}

var usersSetCmd = &cobra.Command{
	Use:     "set <screen_name>...",
	Short:   "Replace the saved user list",
	Example: `  twharvest users set nasa esa @jaxa_en`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runUsersSet,
}

var usersShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved user list",
	RunE:  runUsersShow,
}

var usersClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the saved user list",
	RunE:  runUsersClear,
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersSetCmd)
	usersCmd.AddCommand(usersShowCmd)
	usersCmd.AddCommand(usersClearCmd)
}

func userListManager() (*userlist.Manager, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return userlist.NewManager(cfg.Users.File)
}

func runUsersSet(cmd *cobra.Command, args []string) error {
	m, err := userListManager()
	if err != nil {
		return err
	}
	list, err := m.Set(args)
	if err != nil {
		return err
	}
	ui.PrintSuccess(fmt.Sprintf("Saved %d users to %s", len(list.Users), m.Path()))
	return nil
}

func runUsersShow(cmd *cobra.Command, args []string) error {
	m, err := userListManager()
	if err != nil {
		return err
	}
	list, err := m.Load()
	if err != nil {
		return err
	}
	if len(list.Users) == 0 {
		ui.PrintWarning("No users saved")
		return nil
	}
	ui.PrintInfo("File", m.Path())
	ui.PrintInfo("Updated", list.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	ui.PrintInfo("Users", strings.Join(list.Users, ", "))
	return nil
}

func runUsersClear(cmd *cobra.Command, args []string) error {
	m, err := userListManager()
	if err != nil {
		return err
	}
	if err := m.Clear(); err != nil {
		return err
	}
	ui.PrintSuccess("User list cleared")
	return nil
}
