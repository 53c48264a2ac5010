package cli

import (
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/learnerbot/internal/cli/formatter"
	"github.com/alexanderramin/learnerbot/internal/contract"
	"github.com/spf13/cobra"
)

func newProgressCmd(app *App) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "progress",
		Aliases: []string{"p"},
		Short:   "Show XP, level, streak and badges",
		RunE: func(cmd *cobra.Command, args []string) error {
			view := contract.NewProgressView(app.Progress.GetProgress())
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProgress(view))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print progress as JSON")
	return cmd
}
