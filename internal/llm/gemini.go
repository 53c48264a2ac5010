package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/learnerbot/internal/domain"
	"google.golang.org/genai"
)

// geminiClient implements Completer with the Google GenAI SDK.
type geminiClient struct {
	cfg      LLMConfig
	client   *genai.Client
	observer Observer
}

// NewGeminiClient creates a Completer backed by the Gemini API.
func NewGeminiClient(ctx context.Context, cfg LLMConfig, observer Observer) (Completer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if observer == nil {
		observer = NoopObserver{}
	}
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	// The default endpoint belongs to OpenRouter; anything else overrides the Gemini base URL.
	if cfg.Endpoint != "" && cfg.Endpoint != DefaultConfig().Endpoint {
		cc.HTTPOptions.BaseURL = cfg.Endpoint
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &geminiClient{cfg: cfg, client: client, observer: observer}, nil
}

func (c *geminiClient) Configured() bool { return c.cfg.Configured() }

func (c *geminiClient) Send(ctx context.Context, turns []domain.Turn) (*Reply, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutMs)*time.Millisecond)
	defer cancel()

	system, contents := toGeminiContents(turns)
	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: system,
		Temperature:       genai.Ptr(float32(c.cfg.Sampling.Temperature)),
		TopP:              genai.Ptr(float32(c.cfg.Sampling.TopP)),
		MaxOutputTokens:   int32(c.cfg.Sampling.MaxTokens),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.cfg.Model, contents, genCfg)
	if err == nil {
		text := strings.TrimSpace(resp.Text())
		if text == "" {
			err = fmt.Errorf("%w: empty candidate", ErrInvalidOutput)
		} else {
			latency := time.Since(start).Milliseconds()
			c.observer.OnCallComplete(CallEvent{
				Provider:  ProviderGemini,
				Model:     c.cfg.Model,
				Turns:     len(turns),
				LatencyMs: latency,
				Success:   true,
			})
			return &Reply{Content: text, Model: c.cfg.Model, LatencyMs: latency}, nil
		}
	}

	if ctx.Err() != nil {
		err = fmt.Errorf("%w: %v", ErrTimeout, err)
	} else if ErrorKind(err) == "UNKNOWN" {
		err = fmt.Errorf("%w: %v", ErrBadStatus, err)
	}
	c.observer.OnCallComplete(CallEvent{
		Provider:  ProviderGemini,
		Model:     c.cfg.Model,
		Turns:     len(turns),
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   false,
		ErrorCode: ErrorKind(err),
	})
	return nil, err
}

// toGeminiContents splits system turns into the system instruction and maps
// assistant turns onto the model role.
func toGeminiContents(turns []domain.Turn) (*genai.Content, []*genai.Content) {
	var system []string
	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case domain.RoleSystem:
			system = append(system, t.Content)
		case domain.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(t.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(t.Content, genai.RoleUser))
		}
	}
	if len(system) == 0 {
		return nil, contents
	}
	return genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser), contents
}
