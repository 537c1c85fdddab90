/*
Package notifier implements the notification core: a registry of listeners
with their subscription scopes and a dispatcher fanning out events to
matching listeners.

Listeners are registered with a connection, subscribed to scopes via
StartNotify/StopNotify and removed with UnregisterListener. Events come
either synchronously via Dispatch or asynchronously via Notify (and
collectors) that queue them for background broadcaster workers started by
Start. Join stops the notifier, waiting for all in-flight work.
*/
package notifier

import (
	"errors"
	"fmt"
	"sync"

	"github.com/nspcc-dev/dagnotify/pkg/config"
	"github.com/nspcc-dev/dagnotify/pkg/notify/connection"
	"github.com/nspcc-dev/dagnotify/pkg/notify/events"
	"github.com/nspcc-dev/dagnotify/pkg/notify/listener"
	"github.com/nspcc-dev/dagnotify/pkg/notify/notification"
	"github.com/nspcc-dev/dagnotify/pkg/notify/scope"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// State is the notifier lifecycle state.
type State int32

// Notifier lifecycle is Created -> Running -> Stopped, it never goes back.
const (
	Created State = iota
	Running
	Stopped
)

// String implements the fmt.Stringer interface.
func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

var (
	// ErrListenerNotFound is returned for unknown (or already
	// unregistered) listener IDs.
	ErrListenerNotFound = errors.New("listener not found")
	// ErrEventNotEnabled is returned on attempts to subscribe to events
	// the notifier doesn't emit.
	ErrEventNotEnabled = errors.New("event type is not enabled")
	// ErrTooManyScopes is returned when the listener reaches its scope limit.
	ErrTooManyScopes = errors.New("maximum number of scopes is reached")
	// ErrAlreadyStarted is returned by the second Start call.
	ErrAlreadyStarted = errors.New("notifier is already started")
	// ErrStopped is returned by operations that can't be performed after Join.
	ErrStopped = errors.New("notifier is stopped")
	// ErrQueueFull is returned by Notify when the notification queue is full.
	ErrQueueFull = errors.New("notification queue is full")
)

// Subscriber is an upstream event source the notifier subscribes to when
// the first listener of some event type appears and unsubscribes from when
// the last one goes away.
type Subscriber interface {
	Subscribe(events.Type) error
	Unsubscribe(events.Type) error
}

// Notifier is a listener registry and notification dispatcher. All of its
// methods are thread-safe.
type Notifier struct {
	name         string
	log          *zap.Logger
	enabled      events.Set
	broadcasters int
	maxScopes    int

	lastID atomic.Uint64

	// lock protects listeners and index, dispatch only reads them.
	lock      sync.RWMutex
	listeners map[listener.ID]*listener.Listener
	// index contains listeners with at least one scope for the event type.
	index map[events.Type]map[listener.ID]*listener.Listener

	// subsLock serializes table mutations together with upstream
	// subscription changes they cause. It's always taken before lock.
	subsLock    sync.Mutex
	subscribers []Subscriber

	queue      chan notification.Notification
	collectors []<-chan notification.Notification

	stateLock sync.RWMutex
	state     State
	shutdown  chan struct{}
	finished  chan struct{}
	workers   sync.WaitGroup
	inflight  sync.WaitGroup
}

// New creates a Notifier with the given diagnostic name and configuration.
// Zero numeric settings are replaced with defaults.
func New(name string, cfg config.Notifier, log *zap.Logger) (*Notifier, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("notifier", name))
	enabled, err := cfg.EventSet()
	if err != nil {
		return nil, fmt.Errorf("enabled events: %w", err)
	}
	if cfg.Broadcasters <= 0 {
		cfg.Broadcasters = config.DefaultBroadcasters
		log.Debug("Broadcasters is not set or wrong, setting default value", zap.Int("Broadcasters", cfg.Broadcasters))
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = config.DefaultQueueSize
		log.Debug("QueueSize is not set or wrong, setting default value", zap.Int("QueueSize", cfg.QueueSize))
	}
	return &Notifier{
		name:         name,
		log:          log,
		enabled:      enabled,
		broadcasters: cfg.Broadcasters,
		maxScopes:    cfg.MaxScopesPerListener,

		listeners: make(map[listener.ID]*listener.Listener),
		index:     make(map[events.Type]map[listener.ID]*listener.Listener),

		queue:    make(chan notification.Notification, cfg.QueueSize),
		shutdown: make(chan struct{}),
		finished: make(chan struct{}),
	}, nil
}

// Name returns notifier's diagnostic name.
func (n *Notifier) Name() string {
	return n.name
}

// State returns the current lifecycle state.
func (n *Notifier) State() State {
	n.stateLock.RLock()
	defer n.stateLock.RUnlock()
	return n.state
}

// EnabledEvents returns the set of events listeners can subscribe to.
func (n *Notifier) EnabledEvents() events.Set {
	return n.enabled
}

// ListenerCount returns the number of registered listeners.
func (n *Notifier) ListenerCount() int {
	n.lock.RLock()
	defer n.lock.RUnlock()
	return len(n.listeners)
}

// AddCollector adds a source of notifications that will be consumed and
// queued for dispatch after Start until the channel is closed or the
// notifier is stopped. Collectors can only be added before Start.
func (n *Notifier) AddCollector(ch <-chan notification.Notification) error {
	n.stateLock.Lock()
	defer n.stateLock.Unlock()
	if n.state != Created {
		return fmt.Errorf("can't add collector: %w", ErrAlreadyStarted)
	}
	n.collectors = append(n.collectors, ch)
	return nil
}

// AddSubscriber adds an upstream Subscriber. If there are already active
// subscriptions, it's immediately subscribed to the respective events.
func (n *Notifier) AddSubscriber(s Subscriber) {
	n.subsLock.Lock()
	defer n.subsLock.Unlock()
	n.subscribers = append(n.subscribers, s)
	n.lock.RLock()
	active := n.activeTypes()
	n.lock.RUnlock()
	for _, t := range active {
		n.subscribeUpstream([]Subscriber{s}, t)
	}
}

// RegisterNewListener registers the given connection and returns a fresh
// listener ID for it. The notifier doesn't own the connection and never
// closes it. After Join it does nothing and returns listener.InvalidID.
func (n *Notifier) RegisterNewListener(conn connection.Connection) listener.ID {
	n.stateLock.RLock()
	defer n.stateLock.RUnlock()
	if n.state == Stopped {
		n.log.Warn("listener registration after stop")
		return listener.InvalidID
	}
	n.lock.Lock()
	id := listener.ID(n.lastID.Inc())
	if _, ok := n.listeners[id]; ok {
		n.lock.Unlock()
		panic(fmt.Sprintf("listener ID %d is already in use", id))
	}
	n.listeners[id] = listener.New(id, conn)
	cnt := len(n.listeners)
	n.lock.Unlock()

	setListenersGauge(n.name, cnt)
	n.log.Debug("listener registered", zap.Stringer("id", id))
	return id
}

// UnregisterListener removes the listener with all of its scopes. It returns
// ErrListenerNotFound if there is no such listener, so the second call for
// the same ID always fails.
func (n *Notifier) UnregisterListener(id listener.ID) error {
	n.subsLock.Lock()
	defer n.subsLock.Unlock()

	n.lock.Lock()
	l, ok := n.listeners[id]
	if !ok {
		n.lock.Unlock()
		return fmt.Errorf("%w: %s", ErrListenerNotFound, id)
	}
	delete(n.listeners, id)
	var emptied []events.Type
	for _, t := range l.EventTypes() {
		if n.removeFromIndex(t, id) {
			emptied = append(emptied, t)
		}
	}
	cnt := len(n.listeners)
	n.lock.Unlock()

	for _, t := range emptied {
		n.unsubscribeUpstream(n.subscribers, t)
	}
	setListenersGauge(n.name, cnt)
	n.log.Debug("listener unregistered", zap.Stringer("id", id))
	return nil
}

// StartNotify adds the scope to the listener's active set. Adding the scope
// that is already active is a no-op.
func (n *Notifier) StartNotify(id listener.ID, s scope.Scope) error {
	if s == nil {
		return fmt.Errorf("%w: nil scope", scope.ErrInvalidScope)
	}
	if err := s.IsValid(); err != nil {
		return err
	}
	t := s.EventType()

	n.subsLock.Lock()
	defer n.subsLock.Unlock()

	n.lock.Lock()
	l, ok := n.listeners[id]
	if !ok {
		n.lock.Unlock()
		return fmt.Errorf("%w: %s", ErrListenerNotFound, id)
	}
	if !n.enabled.Has(t) {
		n.lock.Unlock()
		return fmt.Errorf("%w: %s", ErrEventNotEnabled, t)
	}
	if l.HasScope(s) {
		n.lock.Unlock()
		return nil
	}
	if n.maxScopes > 0 && l.ScopeCount() >= n.maxScopes {
		n.lock.Unlock()
		return fmt.Errorf("%w: %d", ErrTooManyScopes, n.maxScopes)
	}
	l.AddScope(s)
	first := n.addToIndex(t, l)
	n.lock.Unlock()

	if first {
		n.subscribeUpstream(n.subscribers, t)
	}
	n.log.Debug("notifications started", zap.Stringer("id", id), zap.Stringer("event", t))
	return nil
}

// StopNotify removes the scope from the listener's active set. Removing the
// scope that is not active is a no-op.
func (n *Notifier) StopNotify(id listener.ID, s scope.Scope) error {
	if s == nil {
		return fmt.Errorf("%w: nil scope", scope.ErrInvalidScope)
	}
	t := s.EventType()

	n.subsLock.Lock()
	defer n.subsLock.Unlock()

	n.lock.Lock()
	l, ok := n.listeners[id]
	if !ok {
		n.lock.Unlock()
		return fmt.Errorf("%w: %s", ErrListenerNotFound, id)
	}
	var last bool
	if l.RemoveScope(s) && !l.HasEvent(t) {
		last = n.removeFromIndex(t, id)
	}
	n.lock.Unlock()

	if last {
		n.unsubscribeUpstream(n.subscribers, t)
	}
	n.log.Debug("notifications stopped", zap.Stringer("id", id), zap.Stringer("event", t))
	return nil
}

// addToIndex must be called with lock held, it returns true if l is the
// first listener for t.
func (n *Notifier) addToIndex(t events.Type, l *listener.Listener) bool {
	byID, ok := n.index[t]
	if !ok {
		byID = make(map[listener.ID]*listener.Listener)
		n.index[t] = byID
	}
	byID[l.ID()] = l
	return !ok
}

// removeFromIndex must be called with lock held, it returns true if there
// are no more listeners for t.
func (n *Notifier) removeFromIndex(t events.Type, id listener.ID) bool {
	byID, ok := n.index[t]
	if !ok {
		return false
	}
	delete(byID, id)
	if len(byID) == 0 {
		delete(n.index, t)
		return true
	}
	return false
}

// activeTypes must be called with lock held.
func (n *Notifier) activeTypes() []events.Type {
	var res []events.Type
	for _, t := range events.All {
		if len(n.index[t]) != 0 {
			res = append(res, t)
		}
	}
	return res
}

// subscribeUpstream must be called with subsLock held.
func (n *Notifier) subscribeUpstream(subs []Subscriber, t events.Type) {
	for _, s := range subs {
		if err := s.Subscribe(t); err != nil {
			n.log.Warn("failed to subscribe upstream", zap.Stringer("event", t), zap.Error(err))
		}
	}
}

// unsubscribeUpstream must be called with subsLock held.
func (n *Notifier) unsubscribeUpstream(subs []Subscriber, t events.Type) {
	for _, s := range subs {
		if err := s.Unsubscribe(t); err != nil {
			n.log.Warn("failed to unsubscribe upstream", zap.Stringer("event", t), zap.Error(err))
		}
	}
}
