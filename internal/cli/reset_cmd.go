package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/learnerbot/internal/cli/formatter"
	"github.com/alexanderramin/learnerbot/internal/service"
	"github.com/spf13/cobra"
)

// errNeedsConfirmation is returned when reset runs without a terminal
// and without --yes.
var errNeedsConfirmation = errors.New("reset needs confirmation: pass --yes")

func newResetCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase all XP, badges and answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				if !app.interactive() {
					return errNeedsConfirmation
				}
				confirm := app.Confirm
				if confirm == nil {
					confirm = huhConfirm
				}
				ok, err := confirm(cmd.Context(), "Reset all progress?", "XP, streak, badges and quiz answers will be erased.")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Reset cancelled."))
					return nil
				}
			}

			_, err := app.Progress.Reset(cmd.Context())
			if err != nil && !errors.Is(err, service.ErrNotPersisted) {
				return fmt.Errorf("resetting progress: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.StyleGreen.Render("Progress reset. A fresh start! 🌱"))
			if err != nil {
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPersistWarning(err.Error()))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
