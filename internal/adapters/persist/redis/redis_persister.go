// Package redis grava comentários em listas Redis, uma por autor.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"

	"github.com/dgeene/comment-limiter/internal/core/domain"
	"github.com/dgeene/comment-limiter/internal/core/ports"
)

type Persister struct {
	client *redis.Client
}

var _ ports.Persister[domain.Comment] = (*Persister)(nil)

func New(client *redis.Client) (*Persister, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &Persister{client: client}, nil
}

func (p *Persister) Persist(ctx context.Context, identity domain.Identity, comment domain.Comment) error {
	body, err := json.Marshal(comment)
	if err != nil {
		return fmt.Errorf("encode comment: %w", err)
	}
	return p.client.RPush(ctx, ListKey(identity), body).Err()
}

// Comments retorna os comentários gravados para o autor, em ordem de escrita.
func (p *Persister) Comments(ctx context.Context, identity domain.Identity) ([]domain.Comment, error) {
	raw, err := p.client.LRange(ctx, ListKey(identity), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	comments := make([]domain.Comment, 0, len(raw))
	for _, item := range raw {
		var c domain.Comment
		if err := json.Unmarshal([]byte(item), &c); err != nil {
			return nil, fmt.Errorf("decode comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, nil
}

func ListKey(identity domain.Identity) string {
	return fmt.Sprintf("comments:%s", strings.ToLower(strings.TrimSpace(string(identity))))
}
