package sapling

import (
	"github.com/google/uuid"
)

// UID identifies a visualisation. A data node is mirrored by at most one
// node shape per UID.
type UID = uuid.UUID

// NewUID returns a fresh random visualisation identifier.
func NewUID() UID {
	return uuid.New()
}

// AllLayers makes the Create and Destroy layer walks unbounded.
const AllLayers = int(^uint(0) >> 1)

// StateField names one boolean of a node shape's [State].
type StateField uint8

const (
	StateNone     StateField = iota // no field changed (redundant state call)
	StateHover                      // pointer is over the shape
	StateExpanded                   // every data child has a rendered shape
	StateSelected                   // shape holds the visualisation's selection
	StateFocused                    // shape holds the visualisation's focus
	StateDragged                    // shape is being dragged
)

// String returns the lower-case field name.
func (f StateField) String() string {
	switch f {
	case StateHover:
		return "hover"
	case StateExpanded:
		return "expanded"
	case StateSelected:
		return "selected"
	case StateFocused:
		return "focused"
	case StateDragged:
		return "dragged"
	default:
		return "none"
	}
}

// State is the set of booleans a node shape's appearance reacts to.
type State struct {
	Hover    bool
	Expanded bool
	Selected bool
	Focused  bool
	Dragged  bool
}

// Get returns the value of field. StateNone always reads false.
func (s State) Get(field StateField) bool {
	switch field {
	case StateHover:
		return s.Hover
	case StateExpanded:
		return s.Expanded
	case StateSelected:
		return s.Selected
	case StateFocused:
		return s.Focused
	case StateDragged:
		return s.Dragged
	}
	return false
}

// set assigns field. StateNone is ignored.
func (s *State) set(field StateField, value bool) {
	switch field {
	case StateHover:
		s.Hover = value
	case StateExpanded:
		s.Expanded = value
	case StateSelected:
		s.Selected = value
	case StateFocused:
		s.Focused = value
	case StateDragged:
		s.Dragged = value
	}
}

// PointerEventType identifies a kind of pointer event delivered to a shape.
type PointerEventType uint8

const (
	PointerDown  PointerEventType = iota // a pointer button was pressed over the shape
	PointerUp                            // a pointer button was released over the shape
	PointerMove                          // the pointer moved over the shape
	PointerEnter                         // the pointer started hovering the shape
	PointerLeave                         // the pointer stopped hovering the shape
)

// PointerButton identifies a mouse button.
type PointerButton uint8

const (
	ButtonLeft   PointerButton = iota // primary (left) mouse button
	ButtonRight                       // secondary (right) mouse button
	ButtonMiddle                      // middle mouse button
)

// PointerEvent carries pointer data for hover, click and pointer listeners.
// World is the pointer position projected into the visualisation; Local is
// relative to the shape's location.
type PointerEvent struct {
	Type   PointerEventType
	Shape  *Shape
	World  Vec
	Local  Vec
	Button PointerButton
}
