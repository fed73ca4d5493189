package model

import "testing"

func TestCanTransition(t *testing.T) {
	allowed := map[[2]string]bool{
		{StateRequested, StateWaiting}:     true,
		{StateRequested, StateCancelled}:   true,
		{StateWaiting, StateScheduled}:     true,
		{StateWaiting, StateCancelled}:     true,
		{StateScheduled, StateInProgress}:  true,
		{StateScheduled, StateCancelled}:   true,
		{StateInProgress, StateCompleted}:  true,
		{StateInProgress, StateCancelled}:  true,
	}

	// Every (from, to) pair not in the table must be rejected.
	for _, from := range States() {
		for _, to := range States() {
			want := allowed[[2]string{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	for _, terminal := range []string{StateCancelled, StateCompleted} {
		if !IsTerminal(terminal) {
			t.Errorf("expected %s to be terminal", terminal)
		}
		for _, to := range States() {
			if CanTransition(terminal, to) {
				t.Errorf("terminal state %s allows transition to %s", terminal, to)
			}
		}
	}
	for _, open := range []string{StateRequested, StateWaiting, StateScheduled, StateInProgress} {
		if IsTerminal(open) {
			t.Errorf("did not expect %s to be terminal", open)
		}
	}
}

func TestValidState(t *testing.T) {
	for _, s := range States() {
		if !ValidState(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	for _, s := range []string{"", "done", "Requested", "in_progress"} {
		if ValidState(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}
