package notify

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeScheduler records scheduled callbacks so tests decide when they fire.
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (s *fakeScheduler) schedule(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

// fire runs the i-th scheduled callback regardless of whether it was stopped,
// simulating a timer that already started running when Stop was called.
func (s *fakeScheduler) fire(i int) {
	s.mu.Lock()
	t := s.timers[i]
	t.fired = true
	s.mu.Unlock()
	t.f()
}

func newTestQueue(t *testing.T) (*Queue, *fakeScheduler) {
	t.Helper()
	s := &fakeScheduler{}
	q := New(WithScheduler(s.schedule))
	t.Cleanup(q.Close)
	return q, s
}

func titles(ns []Notification) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.Title
	}
	return out
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	_, err := ParseKind("fatal")
	require.ErrorIs(t, err, ErrInvalidKind)
}

func TestQueue_Notify_appends_in_insertion_order(t *testing.T) {
	q, _ := newTestQueue(t)

	_, err := q.Error("A", "first", 0)
	require.NoError(t, err)
	_, err = q.Info("B", "second", 0)
	require.NoError(t, err)
	_, err = q.Success("C", "third", 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, titles(q.Snapshot()))
}

func TestQueue_Notify_sets_fields(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	q := New(WithClock(func() time.Time { return now }))
	t.Cleanup(q.Close)

	id, err := q.Warning("Rate limit", "slow down", 0)
	require.NoError(t, err)

	got := q.Snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
	assert.Equal(t, KindWarning, got[0].Kind)
	assert.Equal(t, "Rate limit", got[0].Title)
	assert.Equal(t, "slow down", got[0].Message)
	assert.Equal(t, now, got[0].CreatedAt)
	assert.True(t, got[0].Persistent())
}

func TestQueue_Notify_generates_unique_ids(t *testing.T) {
	q, _ := newTestQueue(t)

	seen := make(map[string]bool)
	for i := range 50 {
		id, err := q.Info(fmt.Sprint(i), "", 0)
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestQueue_Notify_retries_colliding_ids(t *testing.T) {
	q, _ := newTestQueue(t)
	ids := []string{"same", "same", "other"}
	q.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	first, err := q.Info("a", "", 0)
	require.NoError(t, err)
	second, err := q.Info("b", "", 0)
	require.NoError(t, err)

	assert.Equal(t, "same", first)
	assert.Equal(t, "other", second)
	assert.Equal(t, 2, q.Len())
}

func TestQueue_Notify_rejects_invalid_input(t *testing.T) {
	q, s := newTestQueue(t)

	_, err := q.Notify(Kind("fatal"), "x", "y", time.Second)
	require.ErrorIs(t, err, ErrInvalidKind)

	_, err = q.Info("x", "y", -time.Millisecond)
	require.ErrorIs(t, err, ErrNegativeDuration)

	assert.Zero(t, q.Len())
	assert.Empty(t, s.timers)
}

func TestQueue_Notify_empty_strings_allowed(t *testing.T) {
	q, _ := newTestQueue(t)

	_, err := q.Info("", "", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, q.Len())
}

func TestQueue_zero_duration_schedules_nothing(t *testing.T) {
	q, s := newTestQueue(t)

	_, err := q.Error("Failed", "Could not reach server", 0)
	require.NoError(t, err)

	assert.Empty(t, s.timers)
	assert.Equal(t, 1, q.Len())
}

func TestQueue_positive_duration_schedules_one_timer(t *testing.T) {
	q, s := newTestQueue(t)

	_, err := q.Success("Saved", "ok", 100*time.Millisecond)
	require.NoError(t, err)

	require.Len(t, s.timers, 1)
	assert.Equal(t, 100*time.Millisecond, s.timers[0].d)
}

func TestQueue_expiry_removes_only_its_entry(t *testing.T) {
	q, s := newTestQueue(t)

	_, err := q.Info("A", "msg", 5*time.Second)
	require.NoError(t, err)
	_, err = q.Info("B", "msg", 10*time.Millisecond)
	require.NoError(t, err)

	s.fire(1)

	assert.Equal(t, []string{"A"}, titles(q.Snapshot()))
}

func TestQueue_Dismiss(t *testing.T) {
	q, s := newTestQueue(t)

	id, err := q.Info("A", "msg", time.Minute)
	require.NoError(t, err)
	_, err = q.Info("B", "msg", 0)
	require.NoError(t, err)

	q.Dismiss(id)

	assert.Equal(t, []string{"B"}, titles(q.Snapshot()))
	assert.True(t, s.timers[0].stopped, "dismiss should cancel the pending timer")
}

func TestQueue_Dismiss_is_idempotent(t *testing.T) {
	q, _ := newTestQueue(t)

	id, err := q.Info("A", "msg", 0)
	require.NoError(t, err)
	_, err = q.Info("B", "msg", 0)
	require.NoError(t, err)

	q.Dismiss(id)
	once := q.Snapshot()
	q.Dismiss(id)

	assert.Equal(t, once, q.Snapshot())
}

func TestQueue_Dismiss_unknown_id_is_noop(t *testing.T) {
	q, _ := newTestQueue(t)
	_, err := q.Info("A", "msg", 0)
	require.NoError(t, err)

	q.Dismiss("does-not-exist")

	assert.Equal(t, 1, q.Len())
}

func TestQueue_late_timer_after_dismiss_is_noop(t *testing.T) {
	q, s := newTestQueue(t)

	id, err := q.Info("A", "msg", time.Second)
	require.NoError(t, err)
	q.Dismiss(id)

	_, err = q.Info("B", "msg", 0)
	require.NoError(t, err)

	// The first timer fires anyway, as if it had already started when Stop ran.
	s.fire(0)

	assert.Equal(t, []string{"B"}, titles(q.Snapshot()))
}

func TestQueue_DismissAll(t *testing.T) {
	q, s := newTestQueue(t)

	_, _ = q.Info("A", "", time.Second)
	_, _ = q.Info("B", "", 0)
	_, _ = q.Info("C", "", time.Second)

	q.DismissAll()

	assert.Zero(t, q.Len())
	for _, tm := range s.timers {
		assert.True(t, tm.stopped)
	}
}

func TestQueue_Newest(t *testing.T) {
	q, _ := newTestQueue(t)

	_, ok := q.Newest()
	assert.False(t, ok)

	_, _ = q.Info("A", "", 0)
	_, _ = q.Info("B", "", 0)

	n, ok := q.Newest()
	require.True(t, ok)
	assert.Equal(t, "B", n.Title)
}

func TestQueue_Snapshot_does_not_alias_queue(t *testing.T) {
	q, _ := newTestQueue(t)
	_, _ = q.Info("A", "", 0)

	snap := q.Snapshot()
	snap[0].Title = "mutated"

	assert.Equal(t, "A", q.Snapshot()[0].Title)
}

func TestQueue_Changes_signals_on_mutation(t *testing.T) {
	q, s := newTestQueue(t)

	id, _ := q.Info("A", "", time.Second)
	requireSignal(t, q)

	q.Dismiss(id)
	requireSignal(t, q)

	_, _ = q.Info("B", "", time.Second)
	requireSignal(t, q)

	s.fire(1)
	requireSignal(t, q)
}

func TestQueue_Changes_coalesces(t *testing.T) {
	q, _ := newTestQueue(t)

	for range 10 {
		_, _ = q.Info("x", "", 0)
	}

	requireSignal(t, q)
	select {
	case <-q.Changes():
		t.Fatal("expected coalesced signal")
	default:
	}
}

func TestQueue_Close_cancels_timers_and_rejects_notify(t *testing.T) {
	s := &fakeScheduler{}
	q := New(WithScheduler(s.schedule))

	_, _ = q.Info("A", "", time.Second)
	_, _ = q.Info("B", "", time.Second)

	q.Close()
	q.Close()

	assert.Zero(t, q.Len())
	for _, tm := range s.timers {
		assert.True(t, tm.stopped)
	}

	_, err := q.Info("C", "", 0)
	require.ErrorIs(t, err, ErrClosed)

	// Stale callbacks after teardown must not panic or resurrect entries.
	s.fire(0)
	assert.Zero(t, q.Len())
}

func TestQueue_concurrent_use(t *testing.T) {
	q := New()
	t.Cleanup(q.Close)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := q.Info(fmt.Sprint(i), "", time.Millisecond)
			if err != nil {
				return
			}
			_ = q.Snapshot()
			q.Dismiss(id)
		}()
	}
	wg.Wait()

	assert.Eventually(t, func() bool { return q.Len() == 0 }, time.Second, 5*time.Millisecond)
}

// Real-timer scenarios.

func TestQueue_real_timer_expiry(t *testing.T) {
	q := New()
	t.Cleanup(q.Close)

	_, err := q.Success("Saved", "Your changes were saved", 100*time.Millisecond)
	require.NoError(t, err)

	got := q.Snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, KindSuccess, got[0].Kind)

	assert.Eventually(t, func() bool { return q.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestQueue_real_timer_not_before_deadline(t *testing.T) {
	q := New()
	t.Cleanup(q.Close)

	_, err := q.Info("A", "msg", 300*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, q.Len())
}

func TestQueue_real_timer_later_shorter_expires_first(t *testing.T) {
	q := New()
	t.Cleanup(q.Close)

	_, err := q.Info("A", "msg", 5*time.Second)
	require.NoError(t, err)
	_, err = q.Info("B", "msg", 10*time.Millisecond)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		snap := q.Snapshot()
		return len(snap) == 1 && snap[0].Title == "A"
	}, 2*time.Second, 5*time.Millisecond)
}

func TestQueue_real_zero_duration_persists(t *testing.T) {
	q := New()
	t.Cleanup(q.Close)

	id, err := q.Error("Failed", "Could not reach server", 0)
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, q.Len())

	q.Dismiss(id)
	assert.Zero(t, q.Len())
}

func requireSignal(t *testing.T, q *Queue) {
	t.Helper()
	select {
	case <-q.Changes():
	case <-time.After(time.Second):
		t.Fatal("expected change signal")
	}
}
