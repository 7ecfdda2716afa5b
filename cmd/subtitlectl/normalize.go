package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"subtitle-collector/internal/services"
)

func newNormalizeCmd() *cobra.Command {
	var clean bool

	cmd := &cobra.Command{
		Use:   "normalize <caption.vtt>",
		Short: "Print the plain text of a WebVTT caption file",
		Long:  "Normalizes a caption file the same way submissions do. The file is left in place.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			var opts []services.NormalizeOption
			if clean {
				opts = append(opts, services.DropCaptionHeader(), services.CollapseRollingCues())
			}
			text, err := services.NormalizeCaption(f, opts...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().BoolVar(&clean, "clean", false, "drop the VTT header and rolled-forward cue lines (as CAPTION_CLEANUP does)")
	return cmd
}
