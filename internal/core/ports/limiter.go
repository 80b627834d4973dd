// Package ports define contratos que conectam o domínio a implementações externas.
package ports

import (
	"context"

	"github.com/dgeene/comment-limiter/internal/core/domain"
)

type Limiter interface {
	Allow(ctx context.Context, author domain.Identity, text string) (domain.Decision, error)
}
