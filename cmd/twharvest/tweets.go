package main

import (
	"github.com/spf13/cobra"

	"twharvest/pkg/harvest"
)

var (
	tweetLimit    int
	tweetKeywords []string
)

// tweetsCmd represents the tweets command
var tweetsCmd = &cobra.Command{
	Use:   "tweets [screen_name...]",
	Short: "Harvest user timelines",
	Long: `Harvest the timelines of one or more users into <screen_name>_tweets.csv.

With no arguments the saved user list is used (see 'twharvest users set').
Paging walks backwards from the newest tweet until the API stops returning
older ones or --limit is reached. The last page is always kept whole.

--keyword tags each row with the keywords its text contains. Keywords are
case-insensitive regular expressions.`,
	Example: `  # Harvest two timelines
  twharvest tweets nasa esa

  # Harvest the saved list, tagging climate mentions
  twharvest tweets --keyword climate --keyword "carbon ?dioxide"

  # Stop after roughly 1000 tweets per user
  twharvest tweets nasa --limit 1000`,
	RunE: runTweets,
}

func init() {
	rootCmd.AddCommand(tweetsCmd)

	tweetsCmd.Flags().IntVarP(&tweetLimit, "limit", "n", 0, "stop after this many tweets per user (0 = no limit)")
	tweetsCmd.Flags().StringArrayVarP(&tweetKeywords, "keyword", "k", nil, "keyword to tag rows with (repeatable)")
}

func runTweets(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}

	users, err := resolveUsers(s.cfg, args)
	if err != nil {
		return err
	}

	outcomes, err := s.harvester.TimelinesOf(cmd.Context(), users, harvest.TimelineOptions{
		Limit:    tweetLimit,
		Keywords: tweetKeywords,
	})
	printOutcomes(outcomes)
	return err
}
