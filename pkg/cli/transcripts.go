package cli

import (
	"fmt"
	"time"

	"scriptura/pkg/config"
	"scriptura/pkg/transcript"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newTranscriptsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "transcripts",
		Short: "Show the most recent archived agent conversations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sys := config.LoadSystemConfig(systemPath)
			if sys.TranscriptPath == "" {
				return fmt.Errorf("transcript_path is not set in %s", systemPath)
			}

			rec, err := transcript.Open(sys.TranscriptPath)
			if err != nil {
				return err
			}
			defer rec.Close()

			entries, err := rec.Recent(limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			head := color.New(color.FgCyan, color.Bold)
			for _, e := range entries {
				head.Fprintf(out, "%s  %s  request=%s  messages=%d\n",
					e.ID, e.CreatedAt.Format(time.RFC3339), e.RequestID, len(e.Messages))
				if e.Error != "" {
					color.New(color.FgRed).Fprintf(out, "  error: %s\n", e.Error)
				} else {
					fmt.Fprintf(out, "  %s\n", e.Answer)
				}
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No transcripts yet.")
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of conversations to show")
	return cmd
}
