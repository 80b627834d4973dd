package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dgeene/comment-limiter/internal/adapters/http/middleware"
	"github.com/dgeene/comment-limiter/internal/core/domain"
	"github.com/dgeene/comment-limiter/internal/core/ports"
)

const maxCommentBytes = 64 << 10

type createCommentRequest struct {
	Text string `json:"text"`
}

type createCommentResponse struct {
	ID     string `json:"id"`
	Author string `json:"author"`
	Count  int64  `json:"count"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewCommentHandler grava o comentário em nome da identidade resolvida pelo middleware.
func NewCommentHandler(limiter ports.Limiter, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := middleware.IdentityFrom(r.Context())
		if !ok {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "author is required"})
			return
		}

		var req createCommentRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCommentBytes)).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
			return
		}

		decision, err := limiter.Allow(r.Context(), identity, req.Text)
		if err != nil {
			switch {
			case domain.IsRateLimitExceeded(err):
				writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: err.Error()})
			case errors.Is(err, domain.ErrInvalidRequest):
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			case domain.IsPersistError(err):
				logger.Error().Err(err).Str("author", string(identity)).Msg("comment persist failed")
				writeJSON(w, http.StatusBadGateway, errorResponse{Error: http.StatusText(http.StatusBadGateway)})
			default:
				logger.Error().Err(err).Str("author", string(identity)).Msg("comment limiter failed")
				writeJSON(w, http.StatusInternalServerError, errorResponse{Error: http.StatusText(http.StatusInternalServerError)})
			}
			return
		}

		writeJSON(w, http.StatusCreated, createCommentResponse{
			ID:     decision.CommentID,
			Author: string(decision.Identity),
			Count:  decision.Count,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
