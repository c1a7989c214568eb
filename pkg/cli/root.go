// Package cli is the scriptura command line: the long-running gateway and a
// few one-shot commands that share its wiring.
package cli

import (
	"github.com/spf13/cobra"
)

// Version is stamped by the release build.
var Version = "dev"

var (
	configPath string
	systemPath string
	seed       bool
)

// NewRootCmd creates the top-level scriptura command with all subcommands.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scriptura",
		Short: "Scripture-grounded question answering",
		Long: `Scriptura answers questions about the Bible. Plain references such as
"John 3:16" are looked up directly; everything else goes to a language model
that can consult the scripture store through tools.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "config.json", "Application config file")
	cmd.PersistentFlags().StringVar(&systemPath, "system", "system.json", "Engine config file (hot reloaded)")
	cmd.PersistentFlags().BoolVar(&seed, "seed", false, "Create tables and load the sample fixture into a SQL store")

	cmd.AddCommand(
		newServeCmd(),
		newAskCmd(),
		newTranslationsCmd(),
		newTranscriptsCmd(),
	)

	return cmd
}
