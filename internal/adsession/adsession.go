// Package adsession models the rewarded-ad lifecycle of one video play session.
//
// A session moves idle -> ad_loading -> ad_showing -> completed. A viewer who skips
// or closes the ad moves the session to abandoned. Only the ad_showing -> completed
// transition may lead to a reward, and each session completes at most once.
package adsession

import (
	"errors"
	"fmt"
)

type State string

const (
	StateIdle      State = "idle"
	StateLoading   State = "ad_loading"
	StateShowing   State = "ad_showing"
	StateCompleted State = "completed"
	StateAbandoned State = "abandoned"
)

type Event string

const (
	EventLoad     Event = "load"
	EventShow     Event = "show"
	EventComplete Event = "complete"
	EventAbandon  Event = "abandon"
)

var ErrInvalidTransition = errors.New("invalid ad session transition")

func (s State) Terminal() bool {
	return s == StateCompleted || s == StateAbandoned
}

func ParseEvent(raw string) (Event, error) {
	switch e := Event(raw); e {
	case EventLoad, EventShow, EventComplete, EventAbandon:
		return e, nil
	}
	return "", fmt.Errorf("unknown ad session event %q", raw)
}

// Next returns the state reached by applying ev to from.
func Next(from State, ev Event) (State, error) {
	switch ev {
	case EventLoad:
		if from == StateIdle {
			return StateLoading, nil
		}
	case EventShow:
		if from == StateLoading {
			return StateShowing, nil
		}
	case EventComplete:
		if from == StateShowing {
			return StateCompleted, nil
		}
	case EventAbandon:
		if !from.Terminal() {
			return StateAbandoned, nil
		}
	}
	return from, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, ev, from)
}

// Rewardable reports whether moving from -> to is the one transition that earns a reward.
func Rewardable(from, to State) bool {
	return from == StateShowing && to == StateCompleted
}
