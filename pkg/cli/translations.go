package cli

import (
	"fmt"

	"scriptura/pkg/store"

	"github.com/spf13/cobra"
)

func newTranslationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "translations",
		Short: "List the translations in the scripture store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			codes, err := a.store.Translations(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing translations: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), store.JoinCodes(codes))
			return nil
		},
	}
}
