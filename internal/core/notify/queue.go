package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	// Stop prevents the callback from firing. It returns false if the
	// callback already fired or is running.
	Stop() bool
}

// Scheduler runs f once after d has elapsed. f must not be invoked
// synchronously from within the Scheduler call.
type Scheduler func(d time.Duration, f func()) Timer

// AfterFunc is the default Scheduler backed by time.AfterFunc.
func AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type entry struct {
	n     Notification
	timer Timer
}

// Queue holds the active notifications in insertion order. It is safe for
// concurrent use; expiry callbacks run on their own goroutines.
type Queue struct {
	mu      sync.Mutex
	entries []*entry
	index   map[string]*entry
	closed  bool
	changed chan struct{}

	schedule Scheduler
	now      func() time.Time
	newID    func() string
	logger   zerolog.Logger
}

// Option configures a Queue.
type Option func(*Queue)

// WithScheduler overrides the timer primitive used for expiry.
func WithScheduler(s Scheduler) Option {
	return func(q *Queue) { q.schedule = s }
}

// WithClock overrides the clock used to stamp CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) { q.now = now }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l zerolog.Logger) Option {
	return func(q *Queue) { q.logger = l }
}

// New creates an empty queue.
func New(opts ...Option) *Queue {
	q := &Queue{
		index:    make(map[string]*entry),
		changed:  make(chan struct{}, 1),
		schedule: AfterFunc,
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Notify appends a notification and, when d > 0, schedules its removal d
// after insertion. It returns the generated ID.
func (q *Queue) Notify(kind Kind, title, message string, d time.Duration) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	if d < 0 {
		return "", fmt.Errorf("%w: %s", ErrNegativeDuration, d)
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return "", ErrClosed
	}

	e := &entry{n: Notification{
		ID:        q.newID(),
		Kind:      kind,
		Title:     title,
		Message:   message,
		Duration:  d,
		CreatedAt: q.now(),
	}}
	for q.index[e.n.ID] != nil {
		e.n.ID = q.newID()
	}

	q.entries = append(q.entries, e)
	q.index[e.n.ID] = e
	if d > 0 {
		e.timer = q.schedule(d, func() { q.expire(e) })
	}
	q.mu.Unlock()

	q.logger.Debug().
		Str("id", e.n.ID).
		Str("kind", string(kind)).
		Dur("duration", d).
		Msg("notification queued")

	q.signal()
	return e.n.ID, nil
}

// Success queues a success notification.
func (q *Queue) Success(title, message string, d time.Duration) (string, error) {
	return q.Notify(KindSuccess, title, message, d)
}

// Error queues an error notification.
func (q *Queue) Error(title, message string, d time.Duration) (string, error) {
	return q.Notify(KindError, title, message, d)
}

// Warning queues a warning notification.
func (q *Queue) Warning(title, message string, d time.Duration) (string, error) {
	return q.Notify(KindWarning, title, message, d)
}

// Info queues an info notification.
func (q *Queue) Info(title, message string, d time.Duration) (string, error) {
	return q.Notify(KindInfo, title, message, d)
}

// Dismiss removes the notification with the given ID and cancels its timer.
// Unknown IDs are ignored.
func (q *Queue) Dismiss(id string) {
	q.mu.Lock()
	e, ok := q.index[id]
	if ok {
		q.removeLocked(e)
	}
	q.mu.Unlock()

	if ok {
		q.logger.Debug().Str("id", id).Msg("notification dismissed")
		q.signal()
	}
}

// DismissAll removes every active notification.
func (q *Queue) DismissAll() {
	q.mu.Lock()
	n := q.clearLocked()
	q.mu.Unlock()

	if n > 0 {
		q.signal()
	}
}

// Snapshot returns the active notifications in insertion order.
func (q *Queue) Snapshot() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Notification, len(q.entries))
	for i, e := range q.entries {
		out[i] = e.n
	}
	return out
}

// Len returns the number of active notifications.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Newest returns the most recently inserted active notification.
func (q *Queue) Newest() (Notification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == 0 {
		return Notification{}, false
	}
	return q.entries[len(q.entries)-1].n, true
}

// Changes returns a channel that receives a value after the queue changes.
// Signals are coalesced: several mutations may produce a single receive.
func (q *Queue) Changes() <-chan struct{} {
	return q.changed
}

// Close cancels all pending timers and empties the queue. Subsequent calls to
// Notify return ErrClosed.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	n := q.clearLocked()
	q.mu.Unlock()

	q.logger.Debug().Int("discarded", n).Msg("notification queue closed")
	q.signal()
}

// expire is the timer callback. The entry pointer guards against a timer
// that lost its race with Dismiss: only the exact entry it was created for
// can be removed.
func (q *Queue) expire(e *entry) {
	q.mu.Lock()
	current, ok := q.index[e.n.ID]
	removed := ok && current == e
	if removed {
		q.removeLocked(e)
	}
	q.mu.Unlock()

	if removed {
		q.logger.Debug().Str("id", e.n.ID).Msg("notification expired")
		q.signal()
	}
}

func (q *Queue) removeLocked(e *entry) {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	delete(q.index, e.n.ID)

	for i, cur := range q.entries {
		if cur == e {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			break
		}
	}
}

func (q *Queue) clearLocked() int {
	n := len(q.entries)
	for _, e := range q.entries {
		if e.timer != nil {
			e.timer.Stop()
			e.timer = nil
		}
	}
	q.entries = nil
	q.index = make(map[string]*entry)
	return n
}

func (q *Queue) signal() {
	select {
	case q.changed <- struct{}{}:
	default:
	}
}
