// Package draw holds the screen-local machinery around committee draws: the
// countdown timer, the lottery winner selection flow and the debounced
// draw-amount sync. All of it is cooperative, cancellable and resets when the
// hosting view closes.
package draw

import (
	"encoding/json"
	"fmt"
)

// Status is the lifecycle status of a draw interaction.
type Status int32

const (
	// StatusIdle indicates no draw interaction is open.
	StatusIdle Status = iota

	// StatusConfiguring indicates a draw is selected and the timer is armed
	// with its default duration but not yet started.
	StatusConfiguring

	// StatusRunning indicates the countdown is ticking.
	StatusRunning

	// StatusExpired indicates the countdown reached zero and halted.
	StatusExpired

	// StatusAnimating indicates the lottery reveal animation is playing.
	StatusAnimating

	// StatusWinnerRevealed indicates a winner has been received. Terminal
	// until the interaction is closed.
	StatusWinnerRevealed
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusConfiguring:
		return "configuring"
	case StatusRunning:
		return "running"
	case StatusExpired:
		return "expired"
	case StatusAnimating:
		return "animating"
	case StatusWinnerRevealed:
		return "winner-revealed"
	default:
		return fmt.Sprintf("status(%d)", s)
	}
}

// MarshalJSON implements json.Marshaler.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*s = ParseStatus(str)
	return nil
}

// ParseStatus converts a string to Status.
func ParseStatus(s string) Status {
	switch s {
	case "configuring":
		return StatusConfiguring
	case "running":
		return StatusRunning
	case "expired":
		return StatusExpired
	case "animating":
		return StatusAnimating
	case "winner-revealed":
		return StatusWinnerRevealed
	default:
		return StatusIdle
	}
}

// IsTerminal reports whether the status ends the interaction until the
// hosting view is dismissed.
func (s Status) IsTerminal() bool {
	return s == StatusExpired || s == StatusWinnerRevealed
}

// ValidTransitions defines allowed state transitions.
var ValidTransitions = map[Status][]Status{
	StatusIdle:           {StatusConfiguring, StatusAnimating},
	StatusConfiguring:    {StatusRunning, StatusIdle},
	StatusRunning:        {StatusExpired, StatusRunning, StatusIdle},
	StatusExpired:        {StatusRunning, StatusIdle},
	StatusAnimating:      {StatusWinnerRevealed, StatusIdle},
	StatusWinnerRevealed: {StatusIdle},
}

// CanTransition returns true if the transition from -> to is valid.
func CanTransition(from, to Status) bool {
	allowed, ok := ValidTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// TransitionError represents an invalid state transition.
type TransitionError struct {
	From Status
	To   Status
}

// Error implements error.
func (e TransitionError) Error() string {
	return fmt.Sprintf("invalid state transition: %s -> %s", e.From, e.To)
}
