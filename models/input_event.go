package models

// EventKind distinguishes gamepad buttons from analog axes.
type EventKind int

const (
	ButtonEvent EventKind = iota
	AxisEvent
)

func (k EventKind) String() string {
	switch k {
	case ButtonEvent:
		return "button"
	case AxisEvent:
		return "axis"
	default:
		return "unknown"
	}
}

// InputEvent is a single decoded gamepad event. Name is the Linux input code
// name (BTN_WEST, ABS_X …). Pressed is only meaningful for buttons, Value
// only for axes.
type InputEvent struct {
	Kind    EventKind
	Name    string
	Pressed bool
	Value   int
}

// Button builds a button event.
func Button(name string, pressed bool) InputEvent {
	return InputEvent{Kind: ButtonEvent, Name: name, Pressed: pressed}
}

// Axis builds an axis event.
func Axis(name string, value int) InputEvent {
	return InputEvent{Kind: AxisEvent, Name: name, Value: value}
}
