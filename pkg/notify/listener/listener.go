/*
Package listener contains the notifier's per-connection subscription record.
*/
package listener

import (
	"strconv"

	"github.com/nspcc-dev/dagnotify/pkg/notify/connection"
	"github.com/nspcc-dev/dagnotify/pkg/notify/events"
	"github.com/nspcc-dev/dagnotify/pkg/notify/scope"
)

// ID is an opaque listener identifier unique within the process.
type ID uint64

// InvalidID is never assigned to a registered listener.
const InvalidID ID = 0

// String implements the fmt.Stringer interface.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Listener binds a connection to its active scopes. It's not thread-safe,
// the owner (notifier) serializes access to it.
type Listener struct {
	id     ID
	conn   connection.Connection
	scopes map[events.Type]map[string]scope.Scope
}

// New creates a Listener without any active scopes.
func New(id ID, conn connection.Connection) *Listener {
	return &Listener{
		id:     id,
		conn:   conn,
		scopes: make(map[events.Type]map[string]scope.Scope),
	}
}

// ID returns listener identifier.
func (l *Listener) ID() ID {
	return l.id
}

// Connection returns the connection the listener delivers to.
func (l *Listener) Connection() connection.Connection {
	return l.conn
}

// AddScope adds the scope to the active set. It returns false if the same
// scope is already there.
func (l *Listener) AddScope(s scope.Scope) bool {
	t := s.EventType()
	byKey, ok := l.scopes[t]
	if !ok {
		byKey = make(map[string]scope.Scope)
		l.scopes[t] = byKey
	}
	k := s.Key()
	if _, ok := byKey[k]; ok {
		return false
	}
	byKey[k] = s
	return true
}

// RemoveScope removes the scope from the active set. It returns false if
// there was no such scope.
func (l *Listener) RemoveScope(s scope.Scope) bool {
	t := s.EventType()
	byKey, ok := l.scopes[t]
	if !ok {
		return false
	}
	k := s.Key()
	if _, ok := byKey[k]; !ok {
		return false
	}
	delete(byKey, k)
	if len(byKey) == 0 {
		delete(l.scopes, t)
	}
	return true
}

// HasScope checks whether the same scope is already active.
func (l *Listener) HasScope(s scope.Scope) bool {
	_, ok := l.scopes[s.EventType()][s.Key()]
	return ok
}

// Scopes returns active scopes for the given event type.
func (l *Listener) Scopes(t events.Type) []scope.Scope {
	byKey := l.scopes[t]
	if len(byKey) == 0 {
		return nil
	}
	res := make([]scope.Scope, 0, len(byKey))
	for _, s := range byKey {
		res = append(res, s)
	}
	return res
}

// HasEvent checks whether the listener has any scope for the event type.
func (l *Listener) HasEvent(t events.Type) bool {
	return len(l.scopes[t]) != 0
}

// EventTypes returns the list of event types the listener is subscribed to.
func (l *Listener) EventTypes() []events.Type {
	var res []events.Type
	for _, t := range events.All {
		if l.HasEvent(t) {
			res = append(res, t)
		}
	}
	return res
}

// ScopeCount returns the total number of active scopes.
func (l *Listener) ScopeCount() int {
	var n int
	for _, byKey := range l.scopes {
		n += len(byKey)
	}
	return n
}
