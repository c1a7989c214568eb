package cli

import (
	"fmt"

	"scriptura/pkg/llm"
	"scriptura/pkg/router"
	"scriptura/pkg/utils"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newAskCmd() *cobra.Command {
	var showRoute bool

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer one question and exit",
		Example: `  scriptura ask "John 3:16"
  scriptura ask "Psalms 117 KJV"
  scriptura ask "Explain John 3:16"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			prompt := args[0]
			out := cmd.OutOrStdout()

			if showRoute {
				color.New(color.FgHiBlack).Fprintf(out, "[%s]\n", a.router.Classify(prompt))
			}

			ctx := llm.WithRequestID(cmd.Context(), utils.ShortID())
			answer, err := a.router.Route(ctx, prompt)
			if err != nil {
				color.New(color.FgRed).Fprintln(out, router.Explain(err))
				return err
			}
			fmt.Fprintln(out, answer)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showRoute, "route", false, "Print whether the question took the fast path or the agent")
	return cmd
}
