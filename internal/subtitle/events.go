package subtitle

type ChangeType string

const (
	ChangeInsert ChangeType = "insert"
	ChangeRemove ChangeType = "remove"
	ChangeUpdate ChangeType = "update"
	ChangeReload ChangeType = "reload"
)

// Change describes one mutation. Before is set for inserts only: the
// subtitle the new one was placed ahead of, nil when appended.
type Change struct {
	Type     ChangeType
	Subtitle *StoredSubtitle
	Before   *StoredSubtitle
}

type ChangeFunc func(Change)

type CallbackID int

type callback struct {
	id CallbackID
	fn ChangeFunc
}

// WorkNotifier receives the generic "work changed" signal.
type WorkNotifier interface {
	WorkChanged()
}

// WorkFunc adapts a plain function to WorkNotifier.
type WorkFunc func()

func (f WorkFunc) WorkChanged() {
	if f != nil {
		f()
	}
}

// AddChangeCallback subscribes fn. Callbacks run synchronously in
// subscription order.
func (l *List) AddChangeCallback(fn ChangeFunc) CallbackID {
	l.nextCallbackID++
	id := l.nextCallbackID
	l.callbacks = append(l.callbacks, callback{id: id, fn: fn})
	return id
}

// RemoveChangeCallback unsubscribes; takes effect from the next event.
func (l *List) RemoveChangeCallback(id CallbackID) {
	for i, cb := range l.callbacks {
		if cb.id == id {
			l.callbacks = append(l.callbacks[:i:i], l.callbacks[i+1:]...)
			return
		}
	}
}

// emit delivers c to every subscriber. A callback that mutates the list
// has its events queued behind the one being delivered.
func (l *List) emit(c Change) {
	l.pending = append(l.pending, c)
	if l.dispatching {
		return
	}
	l.dispatching = true
	defer func() {
		l.dispatching = false
		l.pending = nil
	}()

	for len(l.pending) > 0 {
		next := l.pending[0]
		l.pending = l.pending[1:]
		snapshot := append([]callback(nil), l.callbacks...)
		for _, cb := range snapshot {
			cb.fn(next)
		}
	}
}
