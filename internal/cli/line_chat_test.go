package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alexanderramin/learnerbot/internal/llm"
	"github.com/alexanderramin/learnerbot/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runLines(t *testing.T, app *App, input string) string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, runLineChat(context.Background(), app, strings.NewReader(input), &out))
	return out.String()
}

func TestLineChat_WelcomeAndReply(t *testing.T) {
	app, stub := testApp(t)

	out := runLines(t, app, "what is a volcano?\n")

	assert.Contains(t, out, service.WelcomeMessage)
	assert.Contains(t, out, "echo: what is a volcano?")
	assert.Contains(t, out, "+10 XP")
	assert.Contains(t, out, "First Hello")
	assert.Equal(t, 1, stub.Calls())
	assert.Equal(t, 10, app.Progress.GetProgress().XP)
}

func TestLineChat_BlankLinesSkipped(t *testing.T) {
	app, stub := testApp(t)

	runLines(t, app, "\n   \n\n")

	assert.Equal(t, 0, stub.Calls())
	assert.Empty(t, app.Chat.History())
}

func TestLineChat_FailureShowsFallback(t *testing.T) {
	app, stub := testApp(t)
	stub.Errs = []error{errors.Join(llm.ErrUnavailable, errors.New("connection refused"))}

	out := runLines(t, app, "hi\n")

	assert.Contains(t, out, "Oops! Something went wrong")
	assert.Contains(t, out, "reply failed")
	assert.Equal(t, 0, app.Progress.GetProgress().XP)
	assert.Len(t, app.Chat.History(), 2)
}

func TestLineChat_Commands(t *testing.T) {
	app, stub := testApp(t)

	out := runLines(t, app, "first question\n/progress\n/new\n/help\n/quit\nnever sent\n")

	assert.Equal(t, 1, stub.Calls())
	assert.Contains(t, out, "Your Learning Journey")
	assert.Contains(t, out, "New session started")
	assert.Contains(t, out, "/progress")
	assert.Contains(t, out, "See you next time")
	assert.Empty(t, app.Chat.History())
	// XP survives a new session.
	assert.Equal(t, 10, app.Progress.GetProgress().XP)
}

func TestHandleSlashCommand_PlainTextPassesThrough(t *testing.T) {
	app, _ := testApp(t)

	reply, quit := handleSlashCommand(app, "tell me about /new planets")
	assert.Empty(t, reply)
	assert.False(t, quit)

	_, quit = handleSlashCommand(app, "/EXIT")
	assert.True(t, quit)
}
