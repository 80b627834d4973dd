package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgeene/comment-limiter/internal/core/domain"
	"github.com/dgeene/comment-limiter/internal/core/ports"
)

// WriteStep é o passo puro do limiter: recebe o contador atual e devolve o próximo,
// sem guardar estado. Quando o contador já passou do limite, a ação não é executada.
func WriteStep[P any](ctx context.Context, count int64, rule domain.Rule, identity domain.Identity, persist ports.Persister[P], payload P) (int64, error) {
	if count > int64(rule.Threshold) {
		return count, &domain.RateLimitExceededError{Identity: identity}
	}

	if err := persist.Persist(ctx, identity, payload); err != nil {
		var persistErr *domain.PersistError
		if errors.As(err, &persistErr) {
			return count, err
		}
		return count, &domain.PersistError{Identity: identity, Err: err}
	}

	return count + 1, nil
}

// Option ajusta a construção de um RateLimitedAction.
type Option func(*actionOptions)

type actionOptions struct {
	storage ports.Storage
	key     string
}

// WithStorage guarda o contador em um Storage compartilhado sob a chave informada.
func WithStorage(storage ports.Storage, key string) Option {
	return func(o *actionOptions) {
		o.storage = storage
		o.key = key
	}
}

// RateLimitedAction envolve uma ação com um contador de invocações por identidade.
type RateLimitedAction[P any] struct {
	mu       sync.Mutex
	identity domain.Identity
	rule     domain.Rule
	persist  ports.Persister[P]
	storage  ports.Storage
	key      string
	local    int64
	// pending conta ações persistidas cujo incremento no storage falhou.
	pending  int64
}

// NewRateLimitedAction cria uma nova instância com contador próprio, iniciado em zero.
func NewRateLimitedAction[P any](identity domain.Identity, rule domain.Rule, persist ports.Persister[P], opts ...Option) (*RateLimitedAction[P], error) {
	if persist == nil {
		return nil, fmt.Errorf("persister is required")
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	var o actionOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.storage != nil && o.key == "" {
		return nil, fmt.Errorf("storage key is required")
	}

	return &RateLimitedAction[P]{
		identity: identity,
		rule:     rule,
		persist:  persist,
		storage:  o.storage,
		key:      o.key,
	}, nil
}

// MakeRateLimitedAction devolve apenas a operação de invocação; cada chamada produz
// um contador isolado.
func MakeRateLimitedAction[P any](identity domain.Identity, threshold int, persist ports.Persister[P]) (func(ctx context.Context, payload P) (int64, error), error) {
	action, err := NewRateLimitedAction(identity, domain.Rule{Threshold: threshold}, persist)
	if err != nil {
		return nil, err
	}
	return action.Invoke, nil
}

// Invoke executa a ação e retorna o contador atualizado. Invocações na mesma
// instância são serializadas.
func (a *RateLimitedAction[P]) Invoke(ctx context.Context, payload P) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	count, err := a.load(ctx)
	if err != nil {
		return 0, err
	}

	next, err := WriteStep(ctx, count, a.rule, a.identity, a.persist, payload)
	if err != nil {
		return count, err
	}

	if a.storage == nil {
		a.local = next
		return next, nil
	}
	stored, err := a.storage.Increment(ctx, a.key)
	if err != nil {
		a.pending++
		return count, fmt.Errorf("increment counter %s: %w", a.key, err)
	}
	return stored + a.pending, nil
}

func (a *RateLimitedAction[P]) Identity() domain.Identity {
	return a.identity
}

func (a *RateLimitedAction[P]) Rule() domain.Rule {
	return a.rule
}

// Count retorna o número de invocações concluídas.
func (a *RateLimitedAction[P]) Count(ctx context.Context) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.load(ctx)
}

func (a *RateLimitedAction[P]) State(ctx context.Context) (domain.State, error) {
	count, err := a.Count(ctx)
	if err != nil {
		return domain.StateOpen, err
	}
	return domain.StateFor(count, a.rule), nil
}

// Pending retorna quantas ações foram persistidas sem que o storage registrasse o incremento.
func (a *RateLimitedAction[P]) Pending() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending
}

func (a *RateLimitedAction[P]) load(ctx context.Context) (int64, error) {
	if a.storage == nil {
		return a.local, nil
	}
	count, err := a.storage.Count(ctx, a.key)
	if err != nil {
		return 0, fmt.Errorf("load counter %s: %w", a.key, err)
	}
	return count + a.pending, nil
}
