// Package player defines the video player boundary used by the sync
// editor and a clock-driven player that stands in for real playback.
package player

import "time"

// Player is the playback surface sync actions read the playhead from.
// Times are in ms.
type Player interface {
	CurrentTime() int
	Duration() int
	Seek(ms int)
	Play()
	Pause()
	Playing() bool
	SetVolume(v float64)
	Volume() float64
	OnTimeUpdate(fn func(ms int))
	OnStateChange(fn func(playing bool))
}

type Option func(*Clock)

// WithNow replaces the wall clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(c *Clock) {
		c.now = now
	}
}

// Clock plays a timeline of a fixed duration against the wall clock.
// A duration of zero or less plays without an end.
type Clock struct {
	now      func() time.Time
	duration int

	position  int
	startedAt time.Time
	playing   bool
	volume    float64

	timeListeners  []func(int)
	stateListeners []func(bool)
}

func NewClock(duration int, opts ...Option) *Clock {
	c := &Clock{
		now:      time.Now,
		duration: duration,
		volume:   1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Clock) CurrentTime() int {
	if !c.playing {
		return c.position
	}
	return c.clamp(c.position + int(c.now().Sub(c.startedAt)/time.Millisecond))
}

func (c *Clock) Duration() int {
	return c.duration
}

func (c *Clock) Seek(ms int) {
	c.position = c.clamp(ms)
	c.startedAt = c.now()
	c.fireTime(c.position)
}

func (c *Clock) Play() {
	if c.playing {
		return
	}
	if c.duration > 0 && c.position >= c.duration {
		c.position = 0
	}
	c.startedAt = c.now()
	c.playing = true
	c.fireState()
}

func (c *Clock) Pause() {
	if !c.playing {
		return
	}
	c.position = c.CurrentTime()
	c.playing = false
	c.fireState()
}

// Toggle switches between playing and paused.
func (c *Clock) Toggle() {
	if c.playing {
		c.Pause()
	} else {
		c.Play()
	}
}

func (c *Clock) Playing() bool {
	return c.playing
}

func (c *Clock) SetVolume(v float64) {
	switch {
	case v < 0:
		v = 0
	case v > 1:
		v = 1
	}
	c.volume = v
}

func (c *Clock) Volume() float64 {
	return c.volume
}

func (c *Clock) OnTimeUpdate(fn func(ms int)) {
	c.timeListeners = append(c.timeListeners, fn)
}

func (c *Clock) OnStateChange(fn func(playing bool)) {
	c.stateListeners = append(c.stateListeners, fn)
}

// Tick publishes the current time while playing and pauses at the end of
// the timeline. Callers drive it from their own timer.
func (c *Clock) Tick() {
	if !c.playing {
		return
	}
	t := c.CurrentTime()
	if c.duration > 0 && t >= c.duration {
		c.position = c.duration
		c.playing = false
		c.fireTime(t)
		c.fireState()
		return
	}
	c.fireTime(t)
}

func (c *Clock) clamp(ms int) int {
	if ms < 0 {
		return 0
	}
	if c.duration > 0 && ms > c.duration {
		return c.duration
	}
	return ms
}

func (c *Clock) fireTime(ms int) {
	for _, fn := range c.timeListeners {
		fn(ms)
	}
}

func (c *Clock) fireState() {
	for _, fn := range c.stateListeners {
		fn(c.playing)
	}
}

var _ Player = (*Clock)(nil)
