package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"subtitle-collector/internal/services"
)

func newSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search YouTube for videos matching a keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ytdlp := services.NewYTDLP(services.ExecRunner{}, cfg.YTDLPPath, cfg.ToolTimeout)
			results, err := ytdlp.Search(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "VIDEO ID\tTITLE")
			for _, res := range results {
				fmt.Fprintf(tw, "%s\t%s\n", res.VideoID, res.Title)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 30, "maximum number of results")
	return cmd
}
