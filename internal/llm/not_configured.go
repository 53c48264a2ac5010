package llm

import (
	"context"

	"github.com/alexanderramin/learnerbot/internal/domain"
)

// NotConfiguredReply is returned verbatim when no API key is set.
const NotConfiguredReply = `Hey there, future genius! 🌟 I'm LearnerBot, your AI learning companion!

I'm here to help you explore any topic you're curious about - from science and math to history and beyond!

What would you like to learn about today? I can:
- Explain complex topics in simple ways
- Help with homework and projects
- Create fun quizzes to test your knowledge
- Answer any questions you have
- Make learning an exciting adventure!

Just ask me anything - I'm ready to help you discover amazing things! 🚀✨`

type notConfiguredClient struct{}

// NotConfigured returns a Completer that always answers with NotConfiguredReply.
func NotConfigured() Completer {
	return notConfiguredClient{}
}

func (notConfiguredClient) Send(context.Context, []domain.Turn) (*Reply, error) {
	return &Reply{Content: NotConfiguredReply, Model: "none", NotConfigured: true}, nil
}

func (notConfiguredClient) Configured() bool { return false }
