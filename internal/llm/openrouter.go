package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/alexanderramin/learnerbot/internal/domain"
)

// openRouterClient implements Completer against an OpenAI-compatible
// chat/completions endpoint (OpenRouter by default).
type openRouterClient struct {
	cfg      LLMConfig
	http     *http.Client
	observer Observer
}

// NewOpenRouterClient creates a Completer for an OpenAI-compatible endpoint.
func NewOpenRouterClient(cfg LLMConfig, observer Observer) Completer {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &openRouterClient{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: observer,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the JSON body sent to POST /chat/completions.
type chatRequest struct {
	Model            string        `json:"model"`
	Messages         []chatMessage `json:"messages"`
	MaxTokens        int           `json:"max_tokens,omitempty"`
	Temperature      float64       `json:"temperature"`
	TopP             float64       `json:"top_p,omitempty"`
	FrequencyPenalty float64       `json:"frequency_penalty,omitempty"`
	PresencePenalty  float64       `json:"presence_penalty,omitempty"`
	Stream           bool          `json:"stream"`
}

type apiError struct {
	Message string `json:"message"`
}

// chatResponse is the JSON body returned by POST /chat/completions.
type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message *chatMessage `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

func (c *openRouterClient) Configured() bool { return c.cfg.Configured() }

func (c *openRouterClient) Send(ctx context.Context, turns []domain.Turn) (*Reply, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutMs)*time.Millisecond)
	defer cancel()

	body := chatRequest{
		Model:            c.cfg.Model,
		Messages:         toChatMessages(turns),
		MaxTokens:        c.cfg.Sampling.MaxTokens,
		Temperature:      c.cfg.Sampling.Temperature,
		TopP:             c.cfg.Sampling.TopP,
		FrequencyPenalty: c.cfg.Sampling.FrequencyPenalty,
		PresencePenalty:  c.cfg.Sampling.PresencePenalty,
		Stream:           false,
	}

	var lastErr error
	attempts := 1 + c.cfg.MaxRetries

	for i := 0; i < attempts; i++ {
		resp, err := c.doRequest(ctx, body)
		if err == nil {
			latency := time.Since(start).Milliseconds()
			model := resp.Model
			if model == "" {
				model = c.cfg.Model
			}
			c.observer.OnCallComplete(CallEvent{
				Provider:  ProviderOpenRouter,
				Model:     model,
				Turns:     len(turns),
				LatencyMs: latency,
				Success:   true,
			})
			return &Reply{
				Content:   strings.TrimSpace(resp.Choices[0].Message.Content),
				Model:     model,
				LatencyMs: latency,
			}, nil
		}
		lastErr = err

		// Don't retry on context cancellation/timeout or a response we cannot read.
		if ctx.Err() != nil || errors.Is(err, ErrInvalidOutput) {
			break
		}
	}

	err := classify(ctx, lastErr, attempts)
	c.observer.OnCallComplete(CallEvent{
		Provider:  ProviderOpenRouter,
		Model:     c.cfg.Model,
		Turns:     len(turns),
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   false,
		ErrorCode: ErrorKind(err),
	})
	return nil, err
}

func (c *openRouterClient) doRequest(ctx context.Context, body chatRequest) (*chatResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := strings.TrimRight(c.cfg.Endpoint, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if c.cfg.SiteURL != "" {
		httpReq.Header.Set("HTTP-Referer", c.cfg.SiteURL)
	}
	if c.cfg.SiteName != "" {
		httpReq.Header.Set("X-Title", c.cfg.SiteName)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		msg := strings.TrimSpace(string(respBody))
		var parsed chatResponse
		if json.Unmarshal(respBody, &parsed) == nil && parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		return nil, fmt.Errorf("%w: status %d: %s", ErrBadStatus, httpResp.StatusCode, msg)
	}

	var resp chatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrInvalidOutput, err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadStatus, resp.Error.Message)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil {
		return nil, fmt.Errorf("%w: no choices returned", ErrInvalidOutput)
	}

	return &resp, nil
}

// Available checks whether the endpoint answers its model listing.
func (c *openRouterClient) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	url := strings.TrimRight(c.cfg.Endpoint, "/") + "/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func toChatMessages(turns []domain.Turn) []chatMessage {
	out := make([]chatMessage, 0, len(turns))
	for _, t := range turns {
		out = append(out, chatMessage{Role: string(t.Role), Content: t.Content})
	}
	return out
}

// classify maps the last transport error to a sentinel kind.
func classify(ctx context.Context, err error, attempts int) error {
	switch {
	case ctx.Err() != nil:
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case isConnectionError(err):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	case errors.Is(err, ErrBadStatus), errors.Is(err, ErrInvalidOutput):
		if attempts > 1 {
			return fmt.Errorf("%w: %w", ErrRetryExhausted, err)
		}
		return err
	default:
		return fmt.Errorf("%w: %v", ErrRetryExhausted, err)
	}
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}
