package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/alexanderramin/learnerbot/internal/cli/formatter"
	"github.com/alexanderramin/learnerbot/internal/contract"
	"github.com/alexanderramin/learnerbot/internal/service"
	"github.com/spf13/cobra"
)

// Chat commands understood in both chat modes.
const (
	cmdQuit     = "/quit"
	cmdNew      = "/new"
	cmdProgress = "/progress"
	cmdHelp     = "/help"
)

func newChatCmd(app *App) *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with your learning buddy",
		RunE: func(cmd *cobra.Command, args []string) error {
			if plain {
				return runLineChat(cmd.Context(), app, cmd.InOrStdin(), cmd.OutOrStdout())
			}
			return runChat(cmd, app)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "Use line mode even on a terminal")
	return cmd
}

func runChat(cmd *cobra.Command, app *App) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if !app.interactive() {
		return runLineChat(ctx, app, cmd.InOrStdin(), cmd.OutOrStdout())
	}
	run := app.RunTUI
	if run == nil {
		run = runTUI
	}
	return run(ctx, app, cmd.InOrStdin(), cmd.OutOrStdout())
}

// runLineChat reads one message per line until EOF or /quit.
func runLineChat(ctx context.Context, app *App, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	fmt.Fprintln(out, formatter.FormatWelcome(service.Welcome()))

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Fprint(out, formatter.StyleBlue.Render("you")+formatter.Dim("> "))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		reply, quit := handleSlashCommand(app, line)
		if quit {
			fmt.Fprintln(out, formatter.Dim("See you next time! 👋"))
			return nil
		}
		if reply != "" {
			fmt.Fprintln(out, reply)
			continue
		}

		stop := func() {}
		if app.interactive() {
			stop = formatter.StartSpinner(out, "thinking...")
		}
		res, err := app.Chat.SubmitTurn(ctx, line)
		stop()
		if err != nil {
			fmt.Fprint(out, formatter.FormatError(err))
			continue
		}
		fmt.Fprintln(out, formatter.FormatTurnResult(contract.NewTurnResultView(res)))
	}
}

// handleSlashCommand runs a chat command. It returns the text to show, or
// quit=true. An empty reply means line is a regular message.
func handleSlashCommand(app *App, line string) (reply string, quit bool) {
	switch strings.ToLower(line) {
	case cmdQuit, "/exit":
		return "", true
	case cmdNew:
		app.Chat.NewSession()
		return formatter.Dim("New session started.") + "\n\n" + formatter.FormatWelcome(service.Welcome()), false
	case cmdProgress:
		return formatter.FormatProgress(contract.NewProgressView(app.Progress.GetProgress())), false
	case cmdHelp:
		return formatter.Dim(strings.Join([]string{
			cmdNew + "       start a new conversation",
			cmdProgress + "  show XP, level and badges",
			cmdQuit + "      leave the chat",
		}, "\n")), false
	}
	return "", false
}
