package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"subtitle-collector/internal/app"
	"subtitle-collector/internal/models"
	"subtitle-collector/internal/services"
)

// stagePrinter reports pipeline progress on the command's output.
type stagePrinter struct {
	out io.Writer
}

func (p stagePrinter) Publish(_ context.Context, ev models.StageEvent) {
	if ev.Stage == models.StageFailed {
		fmt.Fprintf(p.out, "  ✗ %s: %s\n", ev.ErrorCode, ev.ErrorMessage)
		return
	}
	fmt.Fprintf(p.out, "  [%d/7] %s\n", ev.Step, ev.Stage)
}

func newSubmitCmd() *cobra.Command {
	var tag int

	cmd := &cobra.Command{
		Use:   "submit <youtube-url>",
		Short: "Fetch a video's English captions and store them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			pipeline, err := components.NewPipeline(stagePrinter{out: cmd.OutOrStdout()})
			if err != nil {
				return err
			}

			req := models.SubmitRequest{URL: args[0]}
			if cmd.Flags().Changed("tag") {
				req.NumericTag = &tag
			}

			res, err := pipeline.Submit(ctx, req)
			if err != nil {
				return fmt.Errorf("%s: %w", services.Classify(err), err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Stored %s (%q, %d characters)\n",
				res.Record.VideoID, res.Record.Title, len(res.Record.Content))
			if res.ArchiveError != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "  archive mirror failed: %s\n", res.ArchiveError)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&tag, "tag", 0, "numeric tag stored with the record")
	return cmd
}
