package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/alexanderramin/learnerbot/internal/domain"
	"github.com/alexanderramin/learnerbot/internal/llm"
)

// Clock is a settable time source for deterministic streak tests.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AdvanceDays moves the clock forward by n calendar days.
func (c *Clock) AdvanceDays(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.AddDate(0, 0, n)
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// StubCompleter is a scripted llm.Completer. Each Send pops the next entry
// from Replies/Errs; when exhausted it echoes the last user message.
type StubCompleter struct {
	mu       sync.Mutex
	Replies  []*llm.Reply
	Errs     []error
	Contexts [][]domain.Turn
	// Block, when non-nil, is received from before Send returns.
	Block chan struct{}
}

func (s *StubCompleter) Send(ctx context.Context, turns []domain.Turn) (*llm.Reply, error) {
	s.mu.Lock()
	cp := make([]domain.Turn, len(turns))
	copy(cp, turns)
	s.Contexts = append(s.Contexts, cp)
	block := s.Block
	s.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Errs) > 0 {
		err := s.Errs[0]
		s.Errs = s.Errs[1:]
		if err != nil {
			return nil, err
		}
	}
	if len(s.Replies) > 0 {
		r := s.Replies[0]
		s.Replies = s.Replies[1:]
		return r, nil
	}
	last := ""
	if len(turns) > 0 {
		last = turns[len(turns)-1].Content
	}
	return &llm.Reply{Content: "echo: " + last, Model: "stub"}, nil
}

func (s *StubCompleter) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Contexts)
}

// Configured reports true; StubCompleter stands in for a keyed provider.
func (s *StubCompleter) Configured() bool { return true }
