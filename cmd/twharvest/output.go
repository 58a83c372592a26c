package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"twharvest/pkg/config"
	"twharvest/pkg/fetch"
	"twharvest/pkg/harvest"
	"twharvest/pkg/ui"
	"twharvest/pkg/userlist"
)

// resolveUsers returns args, or the saved user list when args is empty.
func resolveUsers(cfg *config.Config, args []string) ([]string, error) {
	m, err := userlist.NewManager(cfg.Users.File)
	if err != nil {
		return nil, err
	}
	users, err := m.Resolve(args)
	if errors.Is(err, userlist.ErrNoUsers) {
		fmt.Println("\nName users on the command line or save a default list:")
		fmt.Println("  twharvest users set <screen_name>...")
	}
	if err != nil {
		return nil, err
	}
	return users, nil
}

// printOutcomes prints one summary row per harvest.
func printOutcomes(outcomes []*harvest.Outcome) {
	if len(outcomes) == 0 {
		return
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TARGET\tSTATE\tPAGES\tROWS\tFILE")
	for _, o := range outcomes {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", o.Target, o.State, o.Pages, o.Items, o.Path)
	}
	w.Flush()

	for _, o := range outcomes {
		switch o.State {
		case fetch.StateAborted:
			ui.PrintWarning(fmt.Sprintf("%s aborted", o.Target), o.Reason)
		case fetch.StateDrained:
			ui.PrintWarning(fmt.Sprintf("%s interrupted, partial table kept", o.Target))
		}
	}
}
