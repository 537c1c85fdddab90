package config

import (
	"errors"
	"slices"

	"github.com/nspcc-dev/dagnotify/pkg/notify/events"
)

// Notifier defaults.
const (
	// DefaultBroadcasters is the default number of dispatch workers.
	DefaultBroadcasters = 1
	// DefaultQueueSize is the default depth of the asynchronous
	// notification queue.
	DefaultQueueSize = 1024
	// DefaultListenerBufferSize is the default per-listener notification
	// buffer depth for in-process listeners.
	DefaultListenerBufferSize = 1024
)

// Notifier is the notification core configuration.
type Notifier struct {
	// EnabledEvents lists event names listeners can subscribe to, empty
	// list enables all of them.
	EnabledEvents []string `yaml:"EnabledEvents"`
	// Broadcasters is the number of workers dispatching queued
	// notifications.
	Broadcasters int `yaml:"Broadcasters"`
	// QueueSize is the asynchronous notification queue depth.
	QueueSize int `yaml:"QueueSize"`
	// ListenerBufferSize is the per-listener buffer depth.
	ListenerBufferSize int `yaml:"ListenerBufferSize"`
	// MaxScopesPerListener limits the number of active scopes of a single
	// listener, zero means no limit.
	MaxScopesPerListener int `yaml:"MaxScopesPerListener"`
}

// Validate checks Notifier for internal consistency.
func (n *Notifier) Validate() error {
	if _, err := n.EventSet(); err != nil {
		return err
	}
	if n.Broadcasters < 0 {
		return errors.New("Broadcasters can't be negative")
	}
	if n.QueueSize < 0 {
		return errors.New("QueueSize can't be negative")
	}
	if n.ListenerBufferSize < 0 {
		return errors.New("ListenerBufferSize can't be negative")
	}
	if n.MaxScopesPerListener < 0 {
		return errors.New("MaxScopesPerListener can't be negative")
	}
	return nil
}

// EventSet returns the set of enabled events.
func (n *Notifier) EventSet() (events.Set, error) {
	return events.ParseSet(n.EnabledEvents)
}

// Equals checks if Notifier is equal to another one.
func (n Notifier) Equals(o Notifier) bool {
	return slices.Equal(n.EnabledEvents, o.EnabledEvents) &&
		n.Broadcasters == o.Broadcasters &&
		n.QueueSize == o.QueueSize &&
		n.ListenerBufferSize == o.ListenerBufferSize &&
		n.MaxScopesPerListener == o.MaxScopesPerListener
}
