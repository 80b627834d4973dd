// Package ports define contratos que conectam o domínio a implementações externas.
package ports

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/dgeene/comment-limiter/internal/core/domain"
)

// Persister executa a ação com efeito colateral protegida pelo limiter.
type Persister[P any] interface {
	Persist(ctx context.Context, identity domain.Identity, payload P) error
}

// PersistFunc permite usar uma função simples como Persister.
type PersistFunc[P any] func(ctx context.Context, identity domain.Identity, payload P) error

func (f PersistFunc[P]) Persist(ctx context.Context, identity domain.Identity, payload P) error {
	return f(ctx, identity, payload)
}

// WithErrorHandler centraliza o tratamento de falhas: toda falha passa por handle,
// que pode traduzi-la ou descartá-la retornando nil.
func (f PersistFunc[P]) WithErrorHandler(handle func(identity domain.Identity, err error) error) PersistFunc[P] {
	return func(ctx context.Context, identity domain.Identity, payload P) error {
		if err := f(ctx, identity, payload); err != nil {
			return handle(identity, err)
		}
		return nil
	}
}

func (f PersistFunc[P]) WithLogging(logger zerolog.Logger) PersistFunc[P] {
	return func(ctx context.Context, identity domain.Identity, payload P) error {
		err := f(ctx, identity, payload)
		if err != nil {
			logger.Error().Err(err).Str("identity", string(identity)).Msg("persist failed")
			return err
		}
		logger.Debug().Str("identity", string(identity)).Msg("persisted")
		return nil
	}
}
