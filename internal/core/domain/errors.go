package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrPersist           = errors.New("persist failed")
	ErrInvalidRequest    = errors.New("invalid request")
)

// RateLimitExceededError é retornado quando o limiter da identidade já está fechado.
type RateLimitExceededError struct {
	Identity Identity
}

func (e *RateLimitExceededError) Error() string {
	return fmt.Sprintf("%s executed too many actions!", e.Identity)
}

func (e *RateLimitExceededError) Is(target error) bool {
	return target == ErrRateLimitExceeded
}

// PersistError envolve a falha da ação delegada.
type PersistError struct {
	Identity Identity
	Err      error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist for %s: %v", e.Identity, e.Err)
}

func (e *PersistError) Is(target error) bool {
	return target == ErrPersist
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

func IsRateLimitExceeded(err error) bool {
	return errors.Is(err, ErrRateLimitExceeded)
}

func IsPersistError(err error) bool {
	return errors.Is(err, ErrPersist)
}
