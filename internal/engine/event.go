package engine

// Event is a Unity-style multi-cast event system.
// AddListener returns an id so listeners can be removed again; function
// values are not comparable in Go, so an id system is the only reliable way.
type Event struct {
	listeners []eventListener
	nextID    int
}

type eventListener struct {
	id int
	fn func()
}

// AddListener adds a callback and returns its listener id.
func (e *Event) AddListener(callback func()) int {
	if callback == nil {
		return 0
	}
	e.nextID++
	e.listeners = append(e.listeners, eventListener{id: e.nextID, fn: callback})
	return e.nextID
}

// RemoveListener removes the callback registered under the given id.
func (e *Event) RemoveListener(id int) {
	for i, l := range e.listeners {
		if l.id == id {
			e.listeners = append(e.listeners[:i], e.listeners[i+1:]...)
			return
		}
	}
}

// RemoveAllListeners clears all listeners
func (e *Event) RemoveAllListeners() {
	e.listeners = nil
}

// Invoke calls all registered listeners in registration order
func (e *Event) Invoke() {
	for _, l := range e.listeners {
		if l.fn != nil {
			l.fn()
		}
	}
}

// GetListenerCount returns the number of registered listeners (for debugging)
func (e *Event) GetListenerCount() int {
	return len(e.listeners)
}

// EventWithArg is a generic event with one argument
type EventWithArg[T any] struct {
	listeners []argListener[T]
	nextID    int
}

type argListener[T any] struct {
	id int
	fn func(T)
}

func (e *EventWithArg[T]) AddListener(callback func(T)) int {
	if callback == nil {
		return 0
	}
	e.nextID++
	e.listeners = append(e.listeners, argListener[T]{id: e.nextID, fn: callback})
	return e.nextID
}

func (e *EventWithArg[T]) RemoveListener(id int) {
	for i, l := range e.listeners {
		if l.id == id {
			e.listeners = append(e.listeners[:i], e.listeners[i+1:]...)
			return
		}
	}
}

func (e *EventWithArg[T]) RemoveAllListeners() {
	e.listeners = nil
}

func (e *EventWithArg[T]) Invoke(arg T) {
	for _, l := range e.listeners {
		if l.fn != nil {
			l.fn(arg)
		}
	}
}

func (e *EventWithArg[T]) GetListenerCount() int {
	return len(e.listeners)
}
