package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"twharvest/pkg/records"
	"twharvest/pkg/storage"
	"twharvest/pkg/ui"
)

var (
	inspectRows   int
	inspectPrefix string
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Summarize a result table",
	Long: `Read a result table written by tweets, friends or search and print its
query, row count and the first rows. Tweet tables also get a keyword tally.

Without a file, list the tables in the results directory.`,
	Example: `  twharvest inspect
  twharvest inspect --prefix search_
  twharvest inspect results/nasa_tweets.csv -n 10`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().IntVarP(&inspectRows, "rows", "n", 5, "number of rows to print")
	inspectCmd.Flags().StringVar(&inspectPrefix, "prefix", "", "only list tables whose name starts with this")
}

func runInspect(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return listTables()
	}

	t, err := storage.ReadTable(args[0])
	if err != nil {
		return err
	}

	ui.PrintInfo("File", args[0])
	if t.Query != "" {
		ui.PrintInfo("Query", t.Query)
	}
	ui.PrintInfo("Columns", fmt.Sprint(len(t.Header)))
	ui.PrintInfo("Rows", fmt.Sprint(len(t.Rows)))

	if isTweetTable(t.Header) {
		tally := map[string]int{}
		for _, row := range t.Records() {
			rec, err := records.ParseTweetRow(row)
			if err != nil {
				return err
			}
			for _, k := range rec.Keywords {
				tally[k]++
			}
		}
		keys := make([]string, 0, len(tally))
		for k := range tally {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			ui.PrintInfo("  "+k, fmt.Sprint(tally[k]))
		}
	}

	if inspectRows <= 0 || len(t.Rows) == 0 {
		return nil
	}
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(t.Header, "\t")))
	for i, row := range t.Rows {
		if i == inspectRows {
			break
		}
		cells := make([]string, len(row))
		for j, c := range row {
			cells[j] = truncate(c, 40)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	return w.Flush()
}

func isTweetTable(header []string) bool {
	return len(header) == len(records.TweetHeader) && header[0] == records.TweetHeader[0]
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// listTables prints the tables in the configured results directory.
func listTables() error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := storage.NewManager(cfg.Output.BaseDirectory)
	if err != nil {
		return err
	}

	ui.PrintInfo("Results", store.GetOutputDir())
	ui.PrintInfo("Tables", fmt.Sprint(store.GetTableCount()))
	for _, name := range store.Tables(inspectPrefix) {
		ui.Printf("  %s\n", name)
	}
	return nil
}
