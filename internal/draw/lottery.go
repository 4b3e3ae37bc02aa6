package draw

import (
	"context"
	"sync"
	"time"

	"github.com/committeehq/committee-client/internal/api"
	"github.com/committeehq/committee-client/internal/committee"
	"github.com/committeehq/committee-client/pkg/logger"
)

// DefaultRevealDuration is how long the reveal animation plays before the
// winner is requested.
const DefaultRevealDuration = 2 * time.Second

// PickFunc requests a server-selected winner. The server owns the
// randomness; the client never chooses.
type PickFunc func(ctx context.Context) (committee.Winner, string, error)

// LotteryConfig configures a lottery session.
type LotteryConfig struct {
	Pick     PickFunc
	Reveal   time.Duration // default DefaultRevealDuration
	OnFrame  func(frame int)
	OnWinner func(winner committee.Winner, message string)
	OnError  func(err error) // not invoked for session expiry
	Logger   *logger.Logger
}

// Lottery runs one dialog lifecycle of the lottery draw: Open starts the
// reveal animation, AnimationDone requests the winner (at most once per
// lifecycle, however often the animation callback fires), Close returns to
// Idle and resets everything.
type Lottery struct {
	mu        sync.Mutex
	status    Status
	requested bool
	winner    *committee.Winner
	gen       uint64 // bumped by Open and Close; stale picks are dropped

	pick     PickFunc
	reveal   time.Duration
	onFrame  func(int)
	onWinner func(committee.Winner, string)
	onError  func(error)
	log      *logger.Logger

	animStop chan struct{}
}

// NewLottery creates an idle lottery session.
func NewLottery(cfg LotteryConfig) *Lottery {
	if cfg.Reveal <= 0 {
		cfg.Reveal = DefaultRevealDuration
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewDefault("lottery")
	}
	return &Lottery{
		status:   StatusIdle,
		pick:     cfg.Pick,
		reveal:   cfg.Reveal,
		onFrame:  cfg.OnFrame,
		onWinner: cfg.OnWinner,
		onError:  cfg.OnError,
		log:      cfg.Logger,
	}
}

// Open starts the reveal animation and, when it completes, requests the
// winner. The animation is a fixed-duration frame loop; a winner arriving
// early halts it.
func (l *Lottery) Open(ctx context.Context) error {
	l.mu.Lock()
	if !CanTransition(l.status, StatusAnimating) {
		err := TransitionError{From: l.status, To: StatusAnimating}
		l.mu.Unlock()
		return err
	}
	l.status = StatusAnimating
	l.requested = false
	l.winner = nil
	l.gen++
	l.animStop = make(chan struct{})
	stop := l.animStop
	l.mu.Unlock()

	go l.animate(ctx, stop)
	return nil
}

// AnimationDone is the animation-completion callback. It requests the winner
// exactly once per lifecycle; duplicate invocations are ignored. After a
// failed request the guard re-opens so the draw can be retried. A result or
// error from a lifecycle that was closed while the request was in flight is
// dropped, even when a new lifecycle has been opened since.
func (l *Lottery) AnimationDone(ctx context.Context) {
	l.mu.Lock()
	if l.status != StatusAnimating || l.requested {
		l.mu.Unlock()
		return
	}
	l.requested = true
	gen := l.gen
	l.mu.Unlock()

	winner, message, err := l.pick(ctx)
	if err != nil {
		l.mu.Lock()
		stale := l.gen != gen
		if !stale {
			l.requested = false
		}
		l.mu.Unlock()
		if stale {
			return
		}

		// Session expiry is handled by the session layer; surfacing it
		// again here would double the user feedback.
		if api.IsSessionExpired(err) {
			return
		}
		l.log.Errorf("lottery pick failed: %v", err)
		if l.onError != nil {
			l.onError(err)
		}
		return
	}

	l.mu.Lock()
	if l.gen != gen || l.status != StatusAnimating {
		// The owning lifecycle closed while the request was in flight;
		// drop the result even if a new lifecycle is animating.
		l.mu.Unlock()
		return
	}
	l.status = StatusWinnerRevealed
	l.winner = &winner
	stop := l.animStop
	l.animStop = nil
	l.mu.Unlock()

	if stop != nil {
		close(stop)
	}
	l.log.Infof("lottery winner: user %d", winner.WinnerUserID())
	if l.onWinner != nil {
		l.onWinner(winner, message)
	}
}

// Close dismisses the dialog, cancelling any in-flight animation and
// discarding the revealed winner.
func (l *Lottery) Close() {
	l.mu.Lock()
	stop := l.animStop
	l.animStop = nil
	l.status = StatusIdle
	l.requested = false
	l.winner = nil
	l.gen++
	l.mu.Unlock()

	if stop != nil {
		close(stop)
	}
}

// Status returns the current state.
func (l *Lottery) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// Winner returns the revealed winner, or nil before reveal.
func (l *Lottery) Winner() *committee.Winner {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.winner
}

// animate drives the frame callback for the reveal duration, then reports
// completion. Halted early when a winner lands or the dialog closes.
func (l *Lottery) animate(ctx context.Context, stop chan struct{}) {
	const frameInterval = 50 * time.Millisecond

	frames := int(l.reveal / frameInterval)
	if frames < 1 {
		frames = 1
	}
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for frame := 0; frame < frames; frame++ {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if l.onFrame != nil {
				l.onFrame(frame)
			}
		}
	}
	l.AnimationDone(ctx)
}
