// Package fsm defines the per-submission review workflow.
package fsm

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition reports an event that the current state does not accept.
var ErrInvalidTransition = errors.New("invalid transition")

type State string

type Event string

const (
	StateUnreviewed State = "unreviewed"
	StateRecording  State = "recording"
	StateDrafted    State = "drafted"
	StateGenerated  State = "generated"
	StateSaved      State = "saved"
)

const (
	EventRecord   Event = "record"
	EventCaptured Event = "captured"
	EventGenerate Event = "generate"
	EventEdit     Event = "edit"
	EventSave     Event = "save"
)

func Transition(current State, event Event) (State, error) {
	switch current {
	case StateUnreviewed:
		switch event {
		case EventRecord:
			return StateRecording, nil
		case EventEdit:
			return StateDrafted, nil
		case EventSave:
			return StateSaved, nil
		}
	case StateRecording:
		if event == EventCaptured {
			return StateDrafted, nil
		}
	case StateDrafted, StateSaved:
		switch event {
		case EventRecord:
			return StateRecording, nil
		case EventGenerate:
			return StateGenerated, nil
		case EventEdit:
			return StateDrafted, nil
		case EventSave:
			return StateSaved, nil
		}
	case StateGenerated:
		switch event {
		case EventRecord:
			return StateRecording, nil
		case EventGenerate, EventEdit:
			return StateGenerated, nil
		case EventSave:
			return StateSaved, nil
		}
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
	return current, fmt.Errorf("%w: %s --(%s)--> ?", ErrInvalidTransition, current, event)
}

// Unsaved reports whether state holds work that has not been persisted.
func Unsaved(state State) bool {
	return state == StateDrafted || state == StateGenerated
}
