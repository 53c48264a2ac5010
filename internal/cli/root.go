package cli

import (
	"context"
	"io"

	"github.com/alexanderramin/learnerbot/internal/config"
	"github.com/alexanderramin/learnerbot/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// App holds the services and settings CLI commands run against.
type App struct {
	Chat     service.ChatService
	Progress service.ProgressService
	Config   *config.Config
	Logger   *zap.Logger

	// IsInteractive reports whether stdin is a terminal. Nil means no.
	IsInteractive func() bool

	// Confirm asks a yes/no question. Nil uses a huh form.
	Confirm func(ctx context.Context, title, description string) (bool, error)

	// RunTUI runs the full-screen chat. Nil uses bubbletea.
	RunTUI func(ctx context.Context, app *App, in io.Reader, out io.Writer) error
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

// NewRootCmd creates the top-level "learnerbot" command. Without a
// subcommand it starts a chat.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "learnerbot",
		Short:         "Your AI learning buddy",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, app)
		},
	}

	root.AddCommand(
		newChatCmd(app),
		newServeCmd(app),
		newProgressCmd(app),
		newAnswerCmd(app),
		newResetCmd(app),
		newExportCmd(app),
	)
	return root
}
