/*
Package connection defines what the notifier needs from a notification
destination and provides simple in-process implementations of it.
*/
package connection

import (
	"errors"
	"sync"

	"github.com/nspcc-dev/dagnotify/pkg/notify/notification"
	"go.uber.org/atomic"
)

var (
	// ErrClosed is returned when the destination is gone.
	ErrClosed = errors.New("connection is closed")
	// ErrOverflow is returned when the destination can't accept more
	// notifications at the moment.
	ErrOverflow = errors.New("connection buffer overflow")
)

// Connection is a notification destination. It's owned by the transport,
// the notifier only keeps a reference to it. Send must never block.
type Connection interface {
	// Send delivers the notification or returns ErrClosed/ErrOverflow.
	Send(notification.Notification) error
	// IsClosed returns true when the destination is gone.
	IsClosed() bool
}

// ChannelConnection is a Connection backed by a buffered channel. When the
// buffer overflows, notifications are dropped until there is some space
// again and then a single Missed notification is delivered.
type ChannelConnection struct {
	ch        chan notification.Notification
	done      chan struct{}
	closeOnce sync.Once
	// lock protects ch closing, senders hold it for reading.
	lock      sync.RWMutex
	closed    atomic.Bool
	overflown atomic.Bool
}

// NewChannelConnection creates a ChannelConnection with the given buffer
// size (zero buffer is replaced by one).
func NewChannelConnection(size int) *ChannelConnection {
	if size <= 0 {
		size = 1
	}
	return &ChannelConnection{
		ch:   make(chan notification.Notification, size),
		done: make(chan struct{}),
	}
}

// Receiver returns the channel notifications are delivered to. It's closed
// by Close.
func (c *ChannelConnection) Receiver() <-chan notification.Notification {
	return c.ch
}

// Send implements the Connection interface.
func (c *ChannelConnection) Send(n notification.Notification) error {
	c.lock.RLock()
	defer c.lock.RUnlock()
	if c.closed.Load() {
		return ErrClosed
	}
	if c.overflown.Load() {
		return ErrOverflow
	}
	select {
	case c.ch <- n:
		return nil
	default:
	}
	if c.overflown.CompareAndSwap(false, true) {
		// Missed is to be delivered eventually.
		go c.sendMissed()
	}
	return ErrOverflow
}

func (c *ChannelConnection) sendMissed() {
	c.lock.RLock()
	defer c.lock.RUnlock()
	if c.closed.Load() {
		return
	}
	select {
	case c.ch <- &notification.Missed{}:
		c.overflown.Store(false)
	case <-c.done:
	}
}

// IsClosed implements the Connection interface.
func (c *ChannelConnection) IsClosed() bool {
	return c.closed.Load()
}

// Close closes the connection and its receiver channel. It's safe to call
// it multiple times.
func (c *ChannelConnection) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.lock.Lock()
		c.closed.Store(true)
		close(c.ch)
		c.lock.Unlock()
	})
}

// FuncConnection is a Connection calling the function for every
// notification. It's never closed.
type FuncConnection func(notification.Notification) error

// Send implements the Connection interface.
func (f FuncConnection) Send(n notification.Notification) error {
	return f(n)
}

// IsClosed implements the Connection interface.
func (f FuncConnection) IsClosed() bool {
	return false
}
