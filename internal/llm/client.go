package llm

import (
	"context"
	"fmt"

	"github.com/alexanderramin/learnerbot/internal/domain"
)

// Reply is the outcome of a successful completion call.
// NotConfigured marks the canned reply produced without a credential.
type Reply struct {
	Content       string
	Model         string
	LatencyMs     int64
	NotConfigured bool
}

// Completer turns an ordered context of turns into a reply.
type Completer interface {
	// Send returns the assistant reply for the given context.
	Send(ctx context.Context, turns []domain.Turn) (*Reply, error)

	// Configured reports whether a credential is present.
	Configured() bool
}

// Prober is implemented by completers that can check their endpoint
// without spending a completion.
type Prober interface {
	Available(ctx context.Context) bool
}

// Reachable reports whether c can be expected to answer. An unconfigured
// completer is never reachable; one without a probe is assumed reachable.
func Reachable(ctx context.Context, c Completer) bool {
	if !c.Configured() {
		return false
	}
	if p, ok := c.(Prober); ok {
		return p.Available(ctx)
	}
	return true
}

// NewCompleter builds the Completer for cfg. Without an API key it returns
// the not-configured collaborator so the chat still works out of the box.
func NewCompleter(cfg LLMConfig, observer Observer) (Completer, error) {
	if observer == nil {
		observer = NoopObserver{}
	}
	if !cfg.Configured() {
		return NotConfigured(), nil
	}
	switch cfg.Provider {
	case ProviderOpenRouter, "":
		return NewOpenRouterClient(cfg, observer), nil
	case ProviderGemini:
		return NewGeminiClient(context.Background(), cfg, observer)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
