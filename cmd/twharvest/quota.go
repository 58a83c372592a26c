package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"twharvest/pkg/quota"
	"twharvest/pkg/ui"
)

// quotaCmd represents the quota command
var quotaCmd = &cobra.Command{
	Use:   "quota [resource [endpoint]]",
	Short: "Show remaining calls for every credential",
	Long: `Query the rate limit status of every credential in the pool for one endpoint.

resource is one of timeline, friends or search (default timeline). Any other
resource must be given together with its endpoint path, for example
"users /users/show/:id".

With --active only the credential in use is queried, which costs one
status call instead of one per credential.`,
	Example: `  twharvest quota
  twharvest quota search
  twharvest quota --active friends
  twharvest quota users /users/show/:id`,
	Args: cobra.MaximumNArgs(2),
	RunE: runQuota,
}

var quotaActiveOnly bool

func init() {
	rootCmd.AddCommand(quotaCmd)
	quotaCmd.Flags().BoolVar(&quotaActiveOnly, "active", false, "only query the active credential")
}

func runQuota(cmd *cobra.Command, args []string) error {
	resource, endpoint := "timeline", ""
	if len(args) > 0 {
		resource = args[0]
	}
	if len(args) > 1 {
		endpoint = args[1]
	}
	target, err := quota.ParseTarget(resource, endpoint)
	if err != nil {
		return err
	}

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}

	if quotaActiveOnly {
		r, err := s.harvester.ActiveRemaining(cmd.Context(), target)
		if err != nil {
			return err
		}
		ui.Printf("%s: credential %d (%s) %d/%d, resets %s\n", target, r.Index, r.ConsumerKey,
			r.Remaining, r.Limit, resetsIn(r.ResetAt))
		return nil
	}

	rows, err := s.harvester.RemainingCalls(cmd.Context(), target)
	if len(rows) > 0 {
		ui.PrintHighlight(target.String())
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "\t#\tCONSUMER KEY\tREMAINING\tLIMIT\tRESETS")
		for _, r := range rows {
			mark := ""
			if r.Active {
				mark = "*"
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%d\t%s\n", mark, r.Index, r.ConsumerKey,
				r.Remaining, r.Limit, resetsIn(r.ResetAt))
		}
		w.Flush()
	}
	return err
}

func resetsIn(t time.Time) string {
	d := time.Until(t)
	if d <= 0 {
		return "now"
	}
	return fmt.Sprintf("in %s (%s)", ui.FormatDuration(d), t.Local().Format("15:04:05"))
}
