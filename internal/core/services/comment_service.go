package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dgeene/comment-limiter/internal/core/domain"
	"github.com/dgeene/comment-limiter/internal/core/ports"
)

// Resultados reportados ao Observer.
const (
	ResultAllowed      = "allowed"
	ResultRejected     = "rejected"
	ResultPersistError = "persist_error"
	ResultInvalid      = "invalid"
	ResultError        = "error"
)

// Config agrega a regra aplicada a cada autor.
type Config struct {
	Rule domain.Rule
}

// Observer recebe o resultado de cada invocação (métricas).
type Observer interface {
	ObserveInvocation(result string)
	ObserveClosed()
}

type ServiceOption func(*CommentService)

func WithObserver(o Observer) ServiceOption {
	return func(s *CommentService) { s.observer = o }
}

func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *CommentService) { s.logger = logger }
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *CommentService) { s.now = now }
}

// CommentService mantém um RateLimitedAction por autor enquanto houver requisições
// em andamento para ele; os contadores ficam no Storage.
type CommentService struct {
	storage  ports.Storage
	persist  ports.Persister[domain.Comment]
	config   Config
	observer Observer
	logger   zerolog.Logger
	now      func() time.Time

	mu      sync.Mutex
	actions map[string]*trackedAction
}

type trackedAction struct {
	action *RateLimitedAction[domain.Comment]
	refs   int
}

var _ ports.Limiter = (*CommentService)(nil)

// NewCommentService cria uma nova instância do serviço.
func NewCommentService(storage ports.Storage, persist ports.Persister[domain.Comment], cfg Config, opts ...ServiceOption) (*CommentService, error) {
	if storage == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if persist == nil {
		return nil, fmt.Errorf("persister is required")
	}
	if err := cfg.Rule.Validate(); err != nil {
		return nil, err
	}

	s := &CommentService{
		storage:  storage,
		persist:  persist,
		config:   cfg,
		observer: nopObserver{},
		logger:   zerolog.Nop(),
		now:      time.Now,
		actions:  make(map[string]*trackedAction),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Allow registra o comentário do autor se o limiter dele ainda estiver aberto.
func (s *CommentService) Allow(ctx context.Context, author domain.Identity, text string) (domain.Decision, error) {
	identity := domain.Identity(strings.TrimSpace(string(author)))
	if identity == "" {
		s.observer.ObserveInvocation(ResultInvalid)
		return domain.Decision{}, fmt.Errorf("%w: author is required", domain.ErrInvalidRequest)
	}
	if strings.TrimSpace(text) == "" {
		s.observer.ObserveInvocation(ResultInvalid)
		return domain.Decision{}, fmt.Errorf("%w: comment text is required", domain.ErrInvalidRequest)
	}

	action, release, err := s.acquire(identity)
	if err != nil {
		return domain.Decision{}, err
	}
	defer release()

	comment := domain.Comment{
		ID:        uuid.NewString(),
		Author:    action.Identity(),
		Text:      text,
		CreatedAt: s.now().UTC(),
	}

	count, err := action.Invoke(ctx, comment)
	decision := domain.Decision{Identity: action.Identity(), Count: count, Threshold: s.config.Rule.Threshold}
	if err != nil {
		switch {
		case domain.IsRateLimitExceeded(err):
			s.observer.ObserveInvocation(ResultRejected)
			s.logger.Warn().Str("author", string(identity)).Int64("count", count).Msg("comment rejected")
		case domain.IsPersistError(err):
			s.observer.ObserveInvocation(ResultPersistError)
		default:
			s.observer.ObserveInvocation(ResultError)
		}
		return decision, err
	}

	s.observer.ObserveInvocation(ResultAllowed)
	if domain.StateFor(count, s.config.Rule) == domain.StateClosed {
		s.observer.ObserveClosed()
		s.logger.Info().Str("author", string(identity)).Int64("count", count).Msg("limiter closed")
	}

	decision.CommentID = comment.ID
	return decision, nil
}

// acquire devolve a ação do autor e a função que a libera. A entrada sai do mapa
// quando ninguém mais a usa e não há incrementos pendentes.
func (s *CommentService) acquire(identity domain.Identity) (*RateLimitedAction[domain.Comment], func(), error) {
	key := buildKey(identity)

	s.mu.Lock()
	defer s.mu.Unlock()

	tracked, ok := s.actions[key]
	if !ok {
		action, err := NewRateLimitedAction(identity, s.config.Rule, s.persist, WithStorage(s.storage, key))
		if err != nil {
			return nil, nil, err
		}
		tracked = &trackedAction{action: action}
		s.actions[key] = tracked
	}
	tracked.refs++

	release := func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		tracked.refs--
		if tracked.refs == 0 && tracked.action.Pending() == 0 {
			delete(s.actions, key)
		}
	}
	return tracked.action, release, nil
}

// tracked retorna quantos autores estão no mapa.
func (s *CommentService) tracked() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.actions)
}

func buildKey(identity domain.Identity) string {
	return fmt.Sprintf("ratelimit:comment:%s", strings.ToLower(strings.TrimSpace(string(identity))))
}

type nopObserver struct{}

func (nopObserver) ObserveInvocation(string) {}
func (nopObserver) ObserveClosed()           {}
