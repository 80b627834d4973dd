// Command demo reproduz o cenário dos comentários: Tom via construção direta e
// dave via fábrica, cinco comentários cada com limite 3.
package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/dgeene/comment-limiter/internal/adapters/persist/logpersist"
	"github.com/dgeene/comment-limiter/internal/core/domain"
	"github.com/dgeene/comment-limiter/internal/core/ports"
	"github.com/dgeene/comment-limiter/internal/core/services"
)

const threshold = 3

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	ctx := context.Background()

	saved := logpersist.New(logger)
	saveComment := ports.PersistFunc[string](func(ctx context.Context, author domain.Identity, text string) error {
		return saved.Persist(ctx, author, domain.Comment{Author: author, Text: text})
	})

	tom, err := services.NewRateLimitedAction[string]("Tom", domain.Rule{Threshold: threshold}, saveComment)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create limiter for Tom")
	}
	run(logger, "Tom", func(text string) (int64, error) { return tom.Invoke(ctx, text) }, "Check it out")

	currentUserWritesComment, err := services.MakeRateLimitedAction[string]("dave", threshold, saveComment)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create limiter for dave")
	}
	run(logger, "dave", func(text string) (int64, error) { return currentUserWritesComment(ctx, text) }, "check this out")
}

func run(logger zerolog.Logger, author string, write func(string) (int64, error), text string) {
	for i := 1; i <= threshold+2; i++ {
		count, err := write(text)
		if err != nil {
			logger.Error().Err(err).Str("author", author).Int("attempt", i).Msg("comment rejected")
			return
		}
		logger.Info().Str("author", author).Int("attempt", i).Int64("count", count).Msg("comment written")
	}
}
