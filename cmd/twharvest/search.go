package main

import (
	"strings"

	"github.com/spf13/cobra"

	"twharvest/pkg/harvest"
)

var (
	searchSinceID int64
	searchMaxID   int64
	searchLang    string
	searchLimit   int
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Harvest tweets matching a search query",
	Long: `Harvest recent tweets matching a search query into
search_<YYYYMMDD_HHMMSS>_tweets.csv. The query is recorded on the first line
of the table.

Queries use the standard search syntax: OR, quoted phrases, -exclusions,
#hashtags and operators such as from: or lang:. The plain terms of the query
become the keywords each row is tagged with.`,
	Example: `  twharvest search 'brexit OR "article 50" -from:bbc'
  twharvest search climate --lang en --limit 5000
  twharvest search nasa --since-id 1234567890`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().Int64Var(&searchSinceID, "since-id", 0, "only return tweets newer than this id")
	searchCmd.Flags().Int64Var(&searchMaxID, "max-id", 0, "only return tweets at or older than this id")
	searchCmd.Flags().StringVar(&searchLang, "lang", "", "restrict results to a language code")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "stop after this many tweets (0 = no limit)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}

	out, err := s.harvester.Search(cmd.Context(), harvest.SearchOptions{
		Query:    strings.Join(args, " "),
		SinceID:  searchSinceID,
		MaxID:    searchMaxID,
		Language: searchLang,
		Limit:    searchLimit,
	})
	if out != nil {
		printOutcomes([]*harvest.Outcome{out})
	}
	return err
}
