// Package executor performs physical input actions at coordinates computed
// from parsed screen elements. Action kinds form a closed set: requests
// are decoded into concrete action values at the boundary, so an unknown
// kind is rejected before execution rather than silently skipped.
package executor

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind names an action variant on the wire.
type Kind string

const (
	KindClick    Kind = "click"
	KindType     Kind = "type"
	KindPress    Kind = "press"
	KindHotkey   Kind = "hotkey"
	KindDrag     Kind = "drag"
	KindScroll   Kind = "scroll"
	KindWait     Kind = "wait"
	KindSequence Kind = "sequence"
)

// Action is one executable input action. The interface is sealed: only the
// variants in this package implement it.
type Action interface {
	Kind() Kind
	perform(d Driver) error
}

// Click presses a mouse button at screen coordinates.
type Click struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Button string `json:"button"`
	Clicks int    `json:"clicks"`
}

func (a Click) Kind() Kind { return KindClick }

func (a Click) perform(d Driver) error {
	d.MoveMouse(a.X, a.Y)
	clicks := a.Clicks
	if clicks < 1 {
		clicks = 1
	}
	button := a.Button
	if button == "" {
		button = "left"
	}
	for i := 0; i < clicks; i++ {
		if err := d.Click(button); err != nil {
			return err
		}
	}
	return nil
}

// TypeText types a string on the keyboard.
type TypeText struct {
	Text string `json:"text"`
}

func (a TypeText) Kind() Kind { return KindType }

func (a TypeText) perform(d Driver) error {
	return d.TypeText(a.Text)
}

// Press taps a single named key.
type Press struct {
	Key string `json:"key"`
}

func (a Press) Kind() Kind { return KindPress }

func (a Press) perform(d Driver) error {
	return d.KeyTap(a.Key)
}

// Hotkey taps a key with modifiers held, e.g. ["ctrl", "c"].
type Hotkey struct {
	Keys []string `json:"keys"`
}

func (a Hotkey) Kind() Kind { return KindHotkey }

func (a Hotkey) perform(d Driver) error {
	if len(a.Keys) == 0 {
		return fmt.Errorf("hotkey requires at least one key")
	}
	// Last key is the tap, the rest are held modifiers.
	key := a.Keys[len(a.Keys)-1]
	return d.KeyTap(key, a.Keys[:len(a.Keys)-1]...)
}

// Drag presses at the start point and releases at the end point.
type Drag struct {
	StartX int `json:"start_x"`
	StartY int `json:"start_y"`
	EndX   int `json:"end_x"`
	EndY   int `json:"end_y"`
}

func (a Drag) Kind() Kind { return KindDrag }

func (a Drag) perform(d Driver) error {
	d.MoveMouse(a.StartX, a.StartY)
	return d.Drag(a.EndX, a.EndY)
}

// Scroll scrolls the wheel in a direction.
type Scroll struct {
	Direction string `json:"direction"`
	Amount    int    `json:"amount"`
}

func (a Scroll) Kind() Kind { return KindScroll }

func (a Scroll) perform(d Driver) error {
	direction := a.Direction
	if direction == "" {
		direction = "down"
	}
	amount := a.Amount
	if amount <= 0 {
		amount = 10
	}
	return d.Scroll(direction, amount)
}

// Wait pauses between actions.
type Wait struct {
	Seconds float64 `json:"seconds"`
}

func (a Wait) Kind() Kind { return KindWait }

func (a Wait) perform(Driver) error {
	time.Sleep(time.Duration(a.Seconds * float64(time.Second)))
	return nil
}

// Sequence runs actions in order, stopping at the first failure.
type Sequence struct {
	Actions []Action
}

func (a Sequence) Kind() Kind { return KindSequence }

func (a Sequence) perform(Driver) error {
	// Sequences are unrolled by the executor so each step gets its own
	// result entry.
	return nil
}

// request is the wire form of an action: a kind tag plus parameters.
type request struct {
	Type   string          `json:"type"`
	Params json.RawMessage `json:"params"`
}

type sequenceParams struct {
	Actions []json.RawMessage `json:"actions"`
}

// Decode parses a wire action into its concrete variant. Unknown kinds
// are an error; nothing is silently dropped.
func Decode(data []byte) (Action, error) {
	var req request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parse action: %w", err)
	}
	if len(req.Params) == 0 {
		req.Params = json.RawMessage("{}")
	}

	switch Kind(req.Type) {
	case KindClick:
		return decodeParams[Click](req.Params)
	case KindType:
		return decodeParams[TypeText](req.Params)
	case KindPress:
		return decodeParams[Press](req.Params)
	case KindHotkey:
		return decodeParams[Hotkey](req.Params)
	case KindDrag:
		return decodeParams[Drag](req.Params)
	case KindScroll:
		return decodeParams[Scroll](req.Params)
	case KindWait:
		return decodeParams[Wait](req.Params)
	case KindSequence:
		var params sequenceParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return nil, fmt.Errorf("parse sequence params: %w", err)
		}
		seq := Sequence{Actions: make([]Action, 0, len(params.Actions))}
		for i, raw := range params.Actions {
			inner, err := Decode(raw)
			if err != nil {
				return nil, fmt.Errorf("sequence action %d: %w", i, err)
			}
			seq.Actions = append(seq.Actions, inner)
		}
		return seq, nil
	default:
		return nil, fmt.Errorf("unknown action type %q", req.Type)
	}
}

func decodeParams[T Action](raw json.RawMessage) (Action, error) {
	var a T
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("parse %s params: %w", a.Kind(), err)
	}
	return a, nil
}
