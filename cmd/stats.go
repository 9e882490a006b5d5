package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show study statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		out := cmd.OutOrStdout()
		localOnly, _ := cmd.Flags().GetBool("local")

		if !localOnly && d.requireLogin() == nil {
			dash, err := d.client.DashboardStats(ctx)
			if err != nil {
				d.log.Warn("dashboard stats", zap.Error(err))
				fmt.Fprintf(out, "Server stats unavailable: %v\n\n", explain(err))
			} else {
				fmt.Fprintln(out, "Account")
				fmt.Fprintf(out, "  Words:         %d\n", dash.TotalWords)
				fmt.Fprintf(out, "  Collections:   %d\n", dash.TotalCollections)
				fmt.Fprintf(out, "  Learned today: %d\n", dash.TodayLearned)
				fmt.Fprintf(out, "  To review:     %d\n\n", dash.ToReview)
			}
		}

		stats, err := d.store.EventRepo().CollectionStats(ctx)
		if err != nil {
			return fmt.Errorf("local stats: %w", err)
		}
		if len(stats) == 0 {
			fmt.Fprintln(out, "No study history on this machine yet.")
			return nil
		}

		fmt.Fprintln(out, "This machine")
		fmt.Fprintf(out, "  %-24s  %8s  %8s  %8s  %8s\n", "Collection", "Sessions", "Answers", "Skipped", "Accuracy")
		fmt.Fprintln(out, "  "+strings.Repeat("─", 66))
		for _, s := range stats {
			fmt.Fprintf(out, "  %-24s  %8d  %8d  %8d  %7.0f%%\n",
				truncate(s.CollectionID, 24), s.Sessions, s.Answers, s.Skipped, s.Accuracy()*100)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().Bool("local", false, "Only show history stored on this machine")
}
