package advice

import (
	"sync"
	"time"
)

type record struct {
	Level   Level
	Message string
}

type recordingSink struct {
	mu      sync.Mutex
	records []record
}

func (s *recordingSink) Log(level Level, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record{Level: level, Message: message})
	return nil
}

func (s *recordingSink) Records() []record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]record(nil), s.records...)
}

// stepClock сдвигается на step при каждом чтении и считает чтения.
type stepClock struct {
	mu    sync.Mutex
	t     time.Time
	step  time.Duration
	reads int
}

func newStepClock(step time.Duration) *stepClock {
	return &stepClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), step: step}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reads++
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

func (c *stepClock) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

type illegalStateError struct {
	msg string
}

func (e *illegalStateError) Error() string {
	return e.msg
}
