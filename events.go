package prism

import (
	"github.com/akmonengine/prism/pick"
)

const (
	POINTER_ENTER EventType = iota
	POINTER_STAY
	POINTER_EXIT
	POINTER_DOWN
	POINTER_UP
	CLICK
)

type EventType uint8

func (t EventType) String() string {
	switch t {
	case POINTER_ENTER:
		return "POINTER_ENTER"
	case POINTER_STAY:
		return "POINTER_STAY"
	case POINTER_EXIT:
		return "POINTER_EXIT"
	case POINTER_DOWN:
		return "POINTER_DOWN"
	case POINTER_UP:
		return "POINTER_UP"
	case CLICK:
		return "CLICK"
	}

	return "UNKNOWN"
}

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// Hover events
type PointerEnterEvent struct {
	Volume *pick.ClickVolume
	X, Y   float64
}

func (e PointerEnterEvent) Type() EventType { return POINTER_ENTER }

type PointerStayEvent struct {
	Volume *pick.ClickVolume
	X, Y   float64
}

func (e PointerStayEvent) Type() EventType { return POINTER_STAY }

type PointerExitEvent struct {
	Volume *pick.ClickVolume
	X, Y   float64
}

func (e PointerExitEvent) Type() EventType { return POINTER_EXIT }

// Button events
type PointerDownEvent struct {
	Volume *pick.ClickVolume
	X, Y   float64
}

func (e PointerDownEvent) Type() EventType { return POINTER_DOWN }

type PointerUpEvent struct {
	Volume *pick.ClickVolume
	X, Y   float64
}

func (e PointerUpEvent) Type() EventType { return POINTER_UP }

// ClickEvent is sent when the button is released over a volume it was
// pressed on.
type ClickEvent struct {
	Volume *pick.ClickVolume
	X, Y   float64
}

func (e ClickEvent) Type() EventType { return CLICK }

// EventListener - callback for events
type EventListener func(event Event)

// Events manager
type Events struct {
	// Listeners by event type
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event

	// Hover tracking for Enter/Stay/Exit detection, in pick order
	previousHovered []*pick.ClickVolume
	currentHovered  []*pick.ClickVolume
	hoverX, hoverY  float64

	// Volumes under the pointer when the button went down
	pressed map[*pick.ClickVolume]bool
}

func NewEvents() Events {
	return Events{
		listeners: make(map[EventType][]EventListener),
		buffer:    make([]Event, 0, 64),
		pressed:   make(map[*pick.ClickVolume]bool),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// recordHover sets the volumes under the pointer for the current frame.
func (e *Events) recordHover(hits []*pick.ClickVolume, x, y float64) {
	e.currentHovered = append(e.currentHovered[:0], hits...)
	e.hoverX, e.hoverY = x, y
}

func (e *Events) recordDown(hits []*pick.ClickVolume, x, y float64) {
	clear(e.pressed)
	for _, v := range hits {
		e.pressed[v] = true
		e.buffer = append(e.buffer, PointerDownEvent{Volume: v, X: x, Y: y})
	}
}

func (e *Events) recordUp(hits []*pick.ClickVolume, x, y float64) {
	for _, v := range hits {
		e.buffer = append(e.buffer, PointerUpEvent{Volume: v, X: x, Y: y})
	}
	for _, v := range hits {
		if e.pressed[v] {
			e.buffer = append(e.buffer, ClickEvent{Volume: v, X: x, Y: y})
		}
	}
	clear(e.pressed)
}

func contains(volumes []*pick.ClickVolume, v *pick.ClickVolume) bool {
	for _, other := range volumes {
		if other == v {
			return true
		}
	}

	return false
}

// processHoverEvents compares current and previous hovered volumes to detect
// Enter/Stay/Exit
func (e *Events) processHoverEvents() {
	for _, v := range e.currentHovered {
		if contains(e.previousHovered, v) {
			e.buffer = append(e.buffer, PointerStayEvent{Volume: v, X: e.hoverX, Y: e.hoverY})
		} else {
			e.buffer = append(e.buffer, PointerEnterEvent{Volume: v, X: e.hoverX, Y: e.hoverY})
		}
	}

	for _, v := range e.previousHovered {
		if !contains(e.currentHovered, v) {
			e.buffer = append(e.buffer, PointerExitEvent{Volume: v, X: e.hoverX, Y: e.hoverY})
		}
	}

	// Swap for next frame and clear current
	e.previousHovered, e.currentHovered = e.currentHovered, e.previousHovered[:0]
}

// forget drops every tracking entry of a volume removed from the scene
func (e *Events) forget(volume *pick.ClickVolume) {
	delete(e.pressed, volume)
	e.previousHovered = remove(e.previousHovered, volume)
	e.currentHovered = remove(e.currentHovered, volume)
}

func remove(volumes []*pick.ClickVolume, v *pick.ClickVolume) []*pick.ClickVolume {
	n := 0
	for _, other := range volumes {
		if other != v {
			volumes[n] = other
			n++
		}
	}

	return volumes[:n]
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	e.processHoverEvents()

	for _, event := range e.buffer {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	e.buffer = e.buffer[:0]
}
