// Package notify implements the in-process notification queue that backs
// toast messages. Each notification carries its own expiry timer; the queue
// preserves insertion order and removal is always idempotent.
package notify

import (
	"errors"
	"fmt"
	"time"
)

// Kind represents the severity of a notification. It only affects presentation.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
)

// DefaultDuration is the expiry applied by callers that have no preference.
const DefaultDuration = 5 * time.Second

var (
	ErrInvalidKind      = errors.New("invalid notification kind")
	ErrNegativeDuration = errors.New("notification duration must not be negative")
	ErrClosed           = errors.New("notification queue is closed")
)

// Kinds returns every valid kind in display priority order.
func Kinds() []Kind {
	return []Kind{KindSuccess, KindError, KindWarning, KindInfo}
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindSuccess, KindError, KindWarning, KindInfo:
		return true
	}
	return false
}

// ParseKind converts a string to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
	return k, nil
}

// Notification represents a single active notification.
type Notification struct {
	ID        string        `json:"id"`
	Kind      Kind          `json:"kind"`
	Title     string        `json:"title"`
	Message   string        `json:"message"`
	Duration  time.Duration `json:"duration"` // 0 = never expires
	CreatedAt time.Time     `json:"created_at"`
}

// Persistent reports whether the notification must be dismissed manually.
func (n Notification) Persistent() bool {
	return n.Duration == 0
}
