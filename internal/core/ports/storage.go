// Package ports define contratos que conectam o domínio a implementações externas.
package ports

import "context"

// Storage guarda contadores de invocação por chave. Contadores nunca são decrementados.
type Storage interface {
	Count(ctx context.Context, key string) (int64, error)
	Increment(ctx context.Context, key string) (int64, error)
}
