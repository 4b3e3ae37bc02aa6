package draw

import (
	"fmt"
	"sync"
	"time"

	"github.com/committeehq/committee-client/pkg/logger"
)

const (
	// DefaultCountdown is the duration the timer arms with.
	DefaultCountdown = time.Minute

	// announceThreshold is the remaining time below which every tick is
	// announced.
	announceThreshold = 10 * time.Second
)

// Announcer receives spoken-text announcements. Voice selection and playback
// live outside this package; tests and the CLI supply plain-text sinks.
type Announcer func(text string)

// CountdownConfig configures a Countdown.
type CountdownConfig struct {
	Duration time.Duration // default DefaultCountdown
	Tick     time.Duration // default 1s; tests shorten it
	Announce Announcer     // optional
	OnTick   func(remaining time.Duration)
	OnExpire func()
	Logger   *logger.Logger
}

// Countdown is the draw timer: Configuring on creation, Running after Start,
// Expired at zero. Reset re-arms the default duration and keeps running.
// Every scheduled task is owned by the Countdown and cancelled by Stop.
type Countdown struct {
	mu        sync.Mutex
	status    Status
	remaining time.Duration

	duration time.Duration
	tick     time.Duration
	announce Announcer
	onTick   func(time.Duration)
	onExpire func()
	log      *logger.Logger

	stop chan struct{}
	done chan struct{}
}

// NewCountdown arms a timer in the Configuring state.
func NewCountdown(cfg CountdownConfig) *Countdown {
	if cfg.Duration <= 0 {
		cfg.Duration = DefaultCountdown
	}
	if cfg.Tick <= 0 {
		cfg.Tick = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewDefault("draw-timer")
	}
	return &Countdown{
		status:    StatusConfiguring,
		remaining: cfg.Duration,
		duration:  cfg.Duration,
		tick:      cfg.Tick,
		announce:  cfg.Announce,
		onTick:    cfg.OnTick,
		onExpire:  cfg.OnExpire,
		log:       cfg.Logger,
	}
}

// Start begins the countdown. Starting from Expired re-arms the default
// duration first.
func (c *Countdown) Start() error {
	c.mu.Lock()
	if c.status == StatusRunning {
		c.mu.Unlock()
		return TransitionError{From: StatusRunning, To: StatusRunning}
	}
	if !CanTransition(c.status, StatusRunning) {
		err := TransitionError{From: c.status, To: StatusRunning}
		c.mu.Unlock()
		return err
	}
	if c.status == StatusExpired || c.remaining <= 0 {
		c.remaining = c.duration
	}
	c.status = StatusRunning
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	stop, done := c.stop, c.done
	c.mu.Unlock()

	c.say("time is start")
	go c.run(stop, done)
	return nil
}

// Reset re-arms the default duration and restarts the countdown.
func (c *Countdown) Reset() error {
	c.halt()

	c.mu.Lock()
	c.status = StatusConfiguring
	c.remaining = c.duration
	c.mu.Unlock()

	return c.Start()
}

// Stop cancels the countdown and returns the timer to Idle. Safe to call at
// any point, including after expiry; it is the teardown hook of the hosting
// view.
func (c *Countdown) Stop() {
	c.halt()
	c.mu.Lock()
	c.status = StatusIdle
	c.mu.Unlock()
}

// Status returns the current state.
func (c *Countdown) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Remaining returns the time left on the countdown.
func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

func (c *Countdown) run(stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.status != StatusRunning {
				c.mu.Unlock()
				return
			}
			c.remaining -= time.Second
			if c.remaining < 0 {
				c.remaining = 0
			}
			remaining := c.remaining
			expired := remaining == 0
			if expired {
				c.status = StatusExpired
			}
			c.mu.Unlock()

			if c.onTick != nil {
				c.onTick(remaining)
			}
			if expired {
				c.say("time is up")
				c.log.Debug("countdown expired")
				if c.onExpire != nil {
					c.onExpire()
				}
				return
			}
			if remaining <= announceThreshold {
				c.say(fmt.Sprintf("you have left %d seconds", int(remaining/time.Second)))
			}
		}
	}
}

// halt stops the run goroutine if one is active and waits for it to exit.
func (c *Countdown) halt() {
	c.mu.Lock()
	stop, done := c.stop, c.done
	c.stop, c.done = nil, nil
	c.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}

func (c *Countdown) say(text string) {
	if c.announce != nil {
		c.announce(text)
	}
}
