// Package logpersist grava comentários como eventos estruturados no log.
package logpersist

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/dgeene/comment-limiter/internal/core/domain"
	"github.com/dgeene/comment-limiter/internal/core/ports"
)

type Persister struct {
	logger zerolog.Logger
}

var _ ports.Persister[domain.Comment] = (*Persister)(nil)

func New(logger zerolog.Logger) *Persister {
	return &Persister{logger: logger}
}

func (p *Persister) Persist(_ context.Context, identity domain.Identity, comment domain.Comment) error {
	p.logger.Info().
		Str("comment_id", comment.ID).
		Str("author", string(identity)).
		Str("text", comment.Text).
		Time("created_at", comment.CreatedAt).
		Msg("comment saved")
	return nil
}
