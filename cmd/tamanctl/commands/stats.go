package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"taman-digital/internal/app"
	"taman-digital/internal/domain"
)

// statsCmd shows author statistics
var statsCmd = &cobra.Command{
	Use:   "stats <username>",
	Short: "Show writing statistics for an author",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			stats, err := a.Content.Stats(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("stats for %s: %w", args[0], err)
			}
			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}
			return printStats(args[0], stats)
		})
	},
}

func printStats(username string, s *domain.AuthorStats) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	lastActive := "-"
	if s.LastActive != nil {
		lastActive = s.LastActive.Format("2006-01-02 15:04")
	}
	fmt.Fprintf(w, "Author:\t%s\n", username)
	fmt.Fprintf(w, "Posts:\t%d (%d published)\n", s.TotalPosts, s.PublishedCount)
	fmt.Fprintf(w, "Words:\t%d\n", s.TotalWords)
	fmt.Fprintf(w, "Last active:\t%s\n", lastActive)
	fmt.Fprintf(w, "Productive day:\t%s\n", s.ProductiveDay)
	fmt.Fprintf(w, "Time of day:\t%s\n", s.TimeOfDay)
	fmt.Fprintf(w, "Insight:\t%s\n", s.Insight)
	return w.Flush()
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
