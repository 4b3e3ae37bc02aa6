package draw

import (
	"encoding/json"
	"testing"
)

func TestStatus_StringRoundTrip(t *testing.T) {
	statuses := []Status{
		StatusIdle,
		StatusConfiguring,
		StatusRunning,
		StatusExpired,
		StatusAnimating,
		StatusWinnerRevealed,
	}
	for _, s := range statuses {
		if got := ParseStatus(s.String()); got != s {
			t.Errorf("ParseStatus(%q) = %v, want %v", s.String(), got, s)
		}
	}
}

func TestStatus_JSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(StatusWinnerRevealed)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `"winner-revealed"` {
		t.Errorf("Marshal() = %s, want \"winner-revealed\"", data)
	}

	var s Status
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if s != StatusWinnerRevealed {
		t.Errorf("Unmarshal() = %v, want winner-revealed", s)
	}
}

func TestParseStatus_UnknownIsIdle(t *testing.T) {
	if got := ParseStatus("nonsense"); got != StatusIdle {
		t.Errorf("ParseStatus(nonsense) = %v, want idle", got)
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusIdle, StatusConfiguring, true},
		{StatusIdle, StatusAnimating, true},
		{StatusConfiguring, StatusRunning, true},
		{StatusRunning, StatusExpired, true},
		{StatusExpired, StatusRunning, true},
		{StatusAnimating, StatusWinnerRevealed, true},
		{StatusWinnerRevealed, StatusIdle, true},
		{StatusIdle, StatusWinnerRevealed, false},
		{StatusConfiguring, StatusExpired, false},
		{StatusWinnerRevealed, StatusAnimating, false},
		{StatusExpired, StatusAnimating, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%v, %v) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	if !StatusExpired.IsTerminal() || !StatusWinnerRevealed.IsTerminal() {
		t.Error("expired and winner-revealed should be terminal")
	}
	if StatusRunning.IsTerminal() || StatusAnimating.IsTerminal() {
		t.Error("running and animating should not be terminal")
	}
}

func TestTransitionError_Message(t *testing.T) {
	err := TransitionError{From: StatusIdle, To: StatusWinnerRevealed}
	want := "invalid state transition: idle -> winner-revealed"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
