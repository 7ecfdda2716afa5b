package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"subtitle-collector/internal/app"
	"subtitle-collector/internal/models"
)

const (
	maxPage    = 100000
	maxPerPage = 100
)

func newListCmd() *cobra.Command {
	var (
		search  string
		page    int
		perPage int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored subtitle records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if page < 1 || page > maxPage {
				return fmt.Errorf("--page must be between 1 and %d", maxPage)
			}
			if perPage < 1 || perPage > maxPerPage {
				return fmt.Errorf("--per-page must be between 1 and %d", maxPerPage)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			components, err := app.Build(ctx, cfg)
			if err != nil {
				return err
			}
			defer components.Close()

			records, total, err := components.Store.List(ctx, models.ListQuery{
				Search: search,
				Limit:  perPage,
				Offset: (page - 1) * perPage,
			})
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "VIDEO ID\tSTORED AT\tTITLE")
			for _, rec := range records {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", rec.VideoID, rec.DateTime, rec.Title)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d records\n", len(records), total)
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "filter by substring of the title or content")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&perPage, "per-page", 20, "records per page")
	return cmd
}
