package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mfukuda/studyset/internal/importer"
)

func newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <cards.yml>",
		Short: "Import card payloads from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := newAppContext(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = app.Close()
			}()

			imp, err := importer.NewImporter(app.cards)
			if err != nil {
				return fmt.Errorf("importer.NewImporter() > %w", err)
			}

			cards, err := imp.ImportFile(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d cards\n", len(cards))
			return nil
		},
	}
}
