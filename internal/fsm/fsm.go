package fsm

import "fmt"

type State string

type Event string

const (
	StateIdle         State = "idle"
	StateSynthesizing State = "synthesizing"
	StatePlaying      State = "playing"
	StateRecording    State = "recording"
	StateError        State = "error"
)

const (
	EventSpeak       Event = "speak"
	EventSynthesized Event = "synthesized"
	EventPlay        Event = "play"
	EventPlayed      Event = "played"
	EventRecord      Event = "record"
	EventRecorded    Event = "recorded"
	EventCancel      Event = "cancel"
	EventFail        Event = "fail"
	EventReset       Event = "reset"
)

func Transition(current State, event Event) (State, error) {
	if event == EventFail {
		return StateError, nil
	}

	switch current {
	case StateIdle:
		switch event {
		case EventSpeak:
			return StateSynthesizing, nil
		case EventPlay:
			return StatePlaying, nil
		case EventRecord:
			return StateRecording, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateSynthesizing:
		switch event {
		case EventSynthesized:
			return StatePlaying, nil
		case EventCancel:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StatePlaying:
		switch event {
		case EventPlayed:
			return StateIdle, nil
		case EventCancel:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateRecording:
		switch event {
		case EventRecorded:
			return StateIdle, nil
		case EventCancel:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateError:
		switch event {
		case EventReset:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
