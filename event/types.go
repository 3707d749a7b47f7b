// Package event carries control-surface intents to the synth controller
package event

import "fmt"

// Type identifies an intent
type Type int

const (
	// EventNoteToggle adds or removes a note from the selection
	// Trigger: note grid key | Payload: *NoteTogglePayload
	EventNoteToggle Type = iota

	// EventParamChange moves one of the six knobs
	// Trigger: knob keys | Payload: *ParamChangePayload
	EventParamChange

	// EventTransportStart voices the selection
	// Trigger: start key | Payload: nil
	EventTransportStart

	// EventTransportStop silences every voice
	// Trigger: stop key | Payload: nil
	EventTransportStop

	// EventChangeChord retargets sounding voices to the selection
	// Trigger: change key | Payload: nil
	EventChangeChord

	// EventQuit ends the session
	// Trigger: quit key, signal | Payload: nil
	EventQuit
)

var typeNames = [...]string{
	EventNoteToggle:     "note_toggle",
	EventParamChange:    "param_change",
	EventTransportStart: "transport_start",
	EventTransportStop:  "transport_stop",
	EventChangeChord:    "change_chord",
	EventQuit:           "quit",
}

func (t Type) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("event(%d)", int(t))
}

// Event is a queued intent
type Event struct {
	Type    Type
	Payload any
}

// NoteTogglePayload names the toggled note, e.g. "C#4"
type NoteTogglePayload struct {
	Note string
}

// ParamChangePayload carries a knob position
type ParamChangePayload struct {
	Index int     // 1-6
	Value float64 // 0-100
}

// NoteToggle builds a toggle event
func NoteToggle(note string) Event {
	return Event{Type: EventNoteToggle, Payload: &NoteTogglePayload{Note: note}}
}

// ParamChange builds a knob event
func ParamChange(index int, value float64) Event {
	return Event{Type: EventParamChange, Payload: &ParamChangePayload{Index: index, Value: value}}
}
