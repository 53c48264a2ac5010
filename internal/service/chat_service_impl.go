package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/alexanderramin/learnerbot/internal/contract"
	"github.com/alexanderramin/learnerbot/internal/domain"
	"github.com/alexanderramin/learnerbot/internal/llm"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// XPPerTurn is awarded for every successful learner turn.
const XPPerTurn = 10

type chatService struct {
	completer llm.Completer
	progress  ProgressService
	logger    *zap.Logger
	observer  UseCaseObserver
	policy    ContextPolicy
	clock     func() time.Time
	newID     func() string

	mu           sync.Mutex
	sessionID    string
	history      []domain.Turn
	messageCount int
	busy         bool
}

// ChatOption configures a chat service.
type ChatOption func(*chatService)

func WithContextPolicy(p ContextPolicy) ChatOption {
	return func(s *chatService) { s.policy = p }
}

func WithChatClock(clock func() time.Time) ChatOption {
	return func(s *chatService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithIDGenerator overrides uuid-based turn and session ids.
func WithIDGenerator(gen func() string) ChatOption {
	return func(s *chatService) {
		if gen != nil {
			s.newID = gen
		}
	}
}

func WithUseCaseObserver(obs UseCaseObserver) ChatOption {
	return func(s *chatService) { s.observer = useCaseObserverOrNoop(obs) }
}

// NewChatService starts a session with empty history.
func NewChatService(completer llm.Completer, progress ProgressService, logger *zap.Logger, opts ...ChatOption) ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &chatService{
		completer: completer,
		progress:  progress,
		logger:    logger.Named("chat"),
		observer:  NoopUseCaseObserver{},
		policy:    DefaultContextPolicy,
		clock:     time.Now,
		newID:     func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.sessionID = s.newID()
	return s
}

// Welcome returns the greeting shown when a session starts.
func Welcome() contract.WelcomeView {
	opts := make([]string, len(StarterOptions))
	copy(opts, StarterOptions)
	return contract.WelcomeView{Message: WelcomeMessage, Options: opts}
}

// SubmitTurn sends one learner message. A failed completion is not returned
// as an error: the result carries the fallback reply and the failure in
// Err/ErrorKind. The returned error is reserved for rejected submissions.
func (s *chatService) SubmitTurn(ctx context.Context, text string) (*contract.TurnResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.busy = true
	sessionID := s.sessionID
	history := make([]domain.Turn, len(s.history))
	copy(history, s.history)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	started := s.clock()
	userTurn := s.turn(domain.RoleUser, text)
	reply, err := s.completer.Send(ctx, BuildContext(history, text, s.policy))
	if err == nil && (reply == nil || strings.TrimSpace(reply.Content) == "") {
		err = llm.ErrInvalidOutput
	}
	if err != nil {
		res := s.fail(sessionID, userTurn, err)
		s.observe(ctx, started, res)
		return res, nil
	}

	assistant := s.turn(domain.RoleAssistant, reply.Content)
	count, ok := s.commit(sessionID, userTurn, assistant, true)
	res := &contract.TurnResult{
		UserTurn:      userTurn,
		AssistantTurn: assistant,
		Success:       true,
		NotConfigured: reply.NotConfigured,
	}
	if !ok {
		res.Progress = s.progress.GetProgress()
		s.observe(ctx, started, res)
		return res, nil
	}

	// Progress writes outlive the caller's context.
	pctx := context.WithoutCancel(ctx)
	progress, err := s.progress.AddXP(pctx, XPPerTurn)
	if err := s.progressErr(res, err); err != nil {
		return nil, err
	}
	res.XPAwarded = XPPerTurn
	badges, err := s.progress.EvaluateBadges(pctx, domain.Event{Category: domain.CategoryMessage, MessageCount: count})
	if err := s.progressErr(res, err); err != nil {
		return nil, err
	}
	if len(badges) > 0 {
		progress = s.progress.GetProgress()
	}
	res.NewBadges = badges
	res.Progress = progress
	s.observe(ctx, started, res)
	return res, nil
}

func (s *chatService) fail(sessionID string, userTurn domain.Turn, err error) *contract.TurnResult {
	kind := llm.ErrorKind(err)
	s.logger.Warn("completion failed, using fallback reply",
		zap.String("session_id", sessionID),
		zap.String("error_kind", kind),
		zap.Error(err))
	fallback := s.turn(domain.RoleAssistant, FallbackReply)
	s.commit(sessionID, userTurn, fallback, false)
	return &contract.TurnResult{
		UserTurn:      userTurn,
		AssistantTurn: fallback,
		Success:       false,
		ErrorKind:     kind,
		ErrorMessage:  err.Error(),
		Progress:      s.progress.GetProgress(),
		Err:           err,
	}
}

// commit appends the exchange to the session it was submitted in. It reports
// false when a new session started while the call was pending.
func (s *chatService) commit(sessionID string, user, assistant domain.Turn, success bool) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessionID != sessionID {
		s.logger.Info("dropping reply for a closed session", zap.String("session_id", sessionID))
		return 0, false
	}
	s.history = append(s.history, user, assistant)
	if success {
		s.messageCount++
	}
	return s.messageCount, true
}

// progressErr folds a persistence failure into a warning on res. Any other
// error is returned.
func (s *chatService) progressErr(res *contract.TurnResult, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotPersisted) {
		s.logger.Warn("progress not persisted", zap.Error(err))
		res.PersistWarning = err.Error()
		return nil
	}
	s.logger.Error("progress update failed", zap.Error(err))
	return err
}

func (s *chatService) observe(ctx context.Context, started time.Time, res *contract.TurnResult) {
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      "submit_turn",
		StartedAt: started,
		Duration:  s.clock().Sub(started),
		Success:   res.Success,
		Err:       res.Err,
		Fields: map[string]any{
			"error_kind":     res.ErrorKind,
			"not_configured": res.NotConfigured,
			"new_badges":     len(res.NewBadges),
		},
	})
}

func (s *chatService) turn(role domain.Role, content string) domain.Turn {
	return domain.Turn{ID: s.newID(), Role: role, Content: content, CreatedAt: s.clock().UTC()}
}

func (s *chatService) History() []domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Turn, len(s.history))
	copy(out, s.history)
	return out
}

func (s *chatService) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

func (s *chatService) NewSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = s.newID()
	s.history = nil
	s.messageCount = 0
	s.logger.Info("session started", zap.String("session_id", s.sessionID))
}

func (s *chatService) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

func (s *chatService) Configured() bool {
	return s.completer.Configured()
}

func (s *chatService) Reachable(ctx context.Context) bool {
	return llm.Reachable(ctx, s.completer)
}
