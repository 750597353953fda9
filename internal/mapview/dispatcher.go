package mapview

import (
	"sync"

	"bikeflow.dev/internal/traffic"
)

// EventKind identifies what changed in a Session.
type EventKind int

const (
	EventMove EventKind = iota
	EventZoom
	EventResize
	EventTimeChange
)

func (k EventKind) String() string {
	switch k {
	case EventMove:
		return "move"
	case EventZoom:
		return "zoom"
	case EventResize:
		return "resize"
	case EventTimeChange:
		return "time"
	default:
		return "unknown"
	}
}

// Event carries the state of the Session after a change.
type Event struct {
	Kind     EventKind
	Viewport Viewport
	Window   traffic.TimeWindow
}

type Handler func(Event)

type subscription struct {
	id      int
	kind    EventKind
	handler Handler
}

// Dispatcher delivers events to the handlers subscribed to their kind, in
// subscription order, on the goroutine calling Notify.
type Dispatcher struct {
	mutex  sync.Mutex
	nextID int
	subs   []subscription
}

// Subscribe registers handler for kind and returns a function that removes it.
func (d *Dispatcher) Subscribe(kind EventKind, handler Handler) (unsubscribe func()) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.nextID++
	id := d.nextID
	d.subs = append(d.subs, subscription{id: id, kind: kind, handler: handler})

	var once sync.Once
	return func() {
		once.Do(func() { d.remove(id) })
	}
}

func (d *Dispatcher) remove(id int) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	for i, s := range d.subs {
		if s.id == id {
			d.subs = append(d.subs[:i:i], d.subs[i+1:]...)
			return
		}
	}
}

// Notify calls every handler subscribed to ev.Kind and returns how many ran.
// Handlers may subscribe or unsubscribe while being notified; the change
// applies from the next Notify.
func (d *Dispatcher) Notify(ev Event) int {
	d.mutex.Lock()
	var handlers []Handler
	for _, s := range d.subs {
		if s.kind == ev.Kind {
			handlers = append(handlers, s.handler)
		}
	}
	d.mutex.Unlock()

	for _, h := range handlers {
		h(ev)
	}
	return len(handlers)
}

// Len returns the number of registered handlers.
func (d *Dispatcher) Len() int {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return len(d.subs)
}
