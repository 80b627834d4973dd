// Package domain concentra entidades e estruturas centrais do rate limiter.
package domain

import (
	"fmt"
	"time"
)

// Identity é o rótulo sob o qual o contador de invocações é mantido (ex.: nome do autor).
type Identity string

// Rule define quantas invocações além da primeira são toleradas antes da rejeição.
type Rule struct {
	Threshold int
}

// Validate garante que o limite não é negativo.
func (r Rule) Validate() error {
	if r.Threshold < 0 {
		return fmt.Errorf("threshold must not be negative, got %d", r.Threshold)
	}
	return nil
}

// State representa a situação lógica de um limiter.
type State int

const (
	StateOpen State = iota
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// StateFor calcula o estado a partir do contador atual.
func StateFor(count int64, rule Rule) State {
	if count > int64(rule.Threshold) {
		return StateClosed
	}
	return StateOpen
}

type Comment struct {
	ID        string    `json:"id"`
	Author    Identity  `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type Decision struct {
	Identity  Identity
	Count     int64
	Threshold int
	CommentID string
}
