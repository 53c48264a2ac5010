package cli

import (
	"fmt"
	"time"

	"github.com/alexanderramin/learnerbot/internal/cli/formatter"
	"github.com/alexanderramin/learnerbot/internal/export"
	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write progress and the current conversation to an .xlsx file",
		RunE: func(cmd *cobra.Command, args []string) error {
			report := export.Report{
				Progress:    app.Progress.GetProgress(),
				History:     app.Chat.History(),
				GeneratedAt: time.Now().UTC(),
			}
			if err := export.SaveFile(out, report); err != nil {
				return fmt.Errorf("exporting progress: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", formatter.StyleGreen.Render("Saved"), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "learnerbot-progress.xlsx", "Output file")
	return cmd
}
