package service

import (
	"context"
	"sync"
	"time"

	"github.com/AVSAkash/interview-assistant/internal/domain/dedupe"
	"github.com/AVSAkash/interview-assistant/pkg/logger"
)

// countdown is the one-shot timer of a single question.
type countdown struct {
	sessionID string
	index     int
	duration  time.Duration
	startedAt time.Time
	cancel    context.CancelFunc
}

// TimerManager runs one countdown per question, keyed by session and index.
type TimerManager struct {
	timers sync.Map // key: "sessionID:index", value: *countdown
	logger logger.Logger
}

// NewTimerManager creates a new timer manager.
func NewTimerManager(l logger.Logger) *TimerManager {
	if l == nil {
		l = logger.NewNop()
	}
	return &TimerManager{logger: l}
}

// Start arms the countdown for a question, replacing any running one.
// onTimeout runs on the timer goroutine, only if the countdown was not
// cancelled first.
func (m *TimerManager) Start(sessionID string, index int, d time.Duration, onTimeout func(sessionID string, index int)) {
	key := dedupe.SubmissionKey(sessionID, index)
	m.cancel(key)

	ctx, cancel := context.WithCancel(context.Background())
	c := &countdown{
		sessionID: sessionID,
		index:     index,
		duration:  d,
		startedAt: time.Now(),
		cancel:    cancel,
	}
	m.timers.Store(key, c)
	go m.run(ctx, key, c, onTimeout)
}

func (m *TimerManager) run(ctx context.Context, key string, c *countdown, onTimeout func(string, int)) {
	t := time.NewTimer(c.duration)
	defer t.Stop()

	select {
	case <-t.C:
		// Only the registered countdown may fire; a cancel that won the race
		// already removed it.
		if !m.timers.CompareAndDelete(key, c) {
			return
		}
		c.cancel()
		m.logger.Info(context.Background(), "question countdown expired",
			logger.String("session_id", c.sessionID),
			logger.Int("index", c.index))
		onTimeout(c.sessionID, c.index)
	case <-ctx.Done():
	}
}

// Cancel stops the countdown of a question. It reports whether one was running.
func (m *TimerManager) Cancel(sessionID string, index int) bool {
	return m.cancel(dedupe.SubmissionKey(sessionID, index))
}

func (m *TimerManager) cancel(key string) bool {
	v, ok := m.timers.LoadAndDelete(key)
	if !ok {
		return false
	}
	v.(*countdown).cancel()
	return true
}

// CancelSession stops every countdown of a session.
func (m *TimerManager) CancelSession(sessionID string) {
	m.timers.Range(func(key, value any) bool {
		if value.(*countdown).sessionID == sessionID {
			m.cancel(key.(string))
		}
		return true
	})
}

// Remaining returns the time left on a question's countdown.
func (m *TimerManager) Remaining(sessionID string, index int) (time.Duration, bool) {
	v, ok := m.timers.Load(dedupe.SubmissionKey(sessionID, index))
	if !ok {
		return 0, false
	}
	c := v.(*countdown)
	left := c.duration - time.Since(c.startedAt)
	if left < 0 {
		left = 0
	}
	return left, true
}

// Active returns the number of running countdowns.
func (m *TimerManager) Active() int {
	n := 0
	m.timers.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Shutdown cancels all countdowns.
func (m *TimerManager) Shutdown() {
	m.timers.Range(func(key, _ any) bool {
		m.cancel(key.(string))
		return true
	})
}
