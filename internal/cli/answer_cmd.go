package cli

import (
	"fmt"

	"github.com/alexanderramin/learnerbot/internal/cli/formatter"
	"github.com/alexanderramin/learnerbot/internal/contract"
	"github.com/alexanderramin/learnerbot/internal/service"
	"github.com/spf13/cobra"
)

func newAnswerCmd(app *App) *cobra.Command {
	var correct, wrong bool
	cmd := &cobra.Command{
		Use:   "answer",
		Short: "Record a quiz answer",
		Example: `  learnerbot answer --correct
  learnerbot answer --wrong`,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := service.RecordQuizAnswer(cmd.Context(), app.Progress, correct)
			if err != nil {
				return fmt.Errorf("recording answer: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatAnswerResult(contract.NewAnswerResultView(res), correct))
			return nil
		},
	}
	cmd.Flags().BoolVar(&correct, "correct", false, "The answer was correct")
	cmd.Flags().BoolVar(&wrong, "wrong", false, "The answer was wrong")
	cmd.MarkFlagsMutuallyExclusive("correct", "wrong")
	cmd.MarkFlagsOneRequired("correct", "wrong")
	return cmd
}
