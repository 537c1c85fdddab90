package notifier

import (
	"errors"

	"github.com/nspcc-dev/dagnotify/pkg/notify/connection"
	"github.com/nspcc-dev/dagnotify/pkg/notify/listener"
	"github.com/nspcc-dev/dagnotify/pkg/notify/notification"
	"github.com/nspcc-dev/dagnotify/pkg/notify/scope"
	"go.uber.org/zap"
)

// target is a listener matched for some notification along with its
// matching scopes.
type target struct {
	l      *listener.Listener
	scopes []scope.Scope
}

// Start spawns broadcaster workers and collectors. It can only be done once,
// subsequent calls return ErrAlreadyStarted (or ErrStopped after Join).
func (n *Notifier) Start() error {
	n.stateLock.Lock()
	defer n.stateLock.Unlock()
	switch n.state {
	case Running:
		n.log.Info("notifier already started")
		return ErrAlreadyStarted
	case Stopped:
		return ErrStopped
	}
	n.state = Running
	n.workers.Add(n.broadcasters + len(n.collectors))
	for i := 0; i < n.broadcasters; i++ {
		go n.broadcast()
	}
	for _, ch := range n.collectors {
		go n.collect(ch)
	}
	n.log.Info("notifier started",
		zap.Int("broadcasters", n.broadcasters),
		zap.Int("collectors", len(n.collectors)))
	return nil
}

// Join stops the notifier. It stops accepting new notifications, waits for
// the workers to dispatch everything already queued and for all in-flight
// Dispatch calls to finish. It's a no-op for a notifier that was never
// started, concurrent and repeated calls wait for the first one to complete.
func (n *Notifier) Join() error {
	n.stateLock.Lock()
	switch n.state {
	case Created:
		n.stateLock.Unlock()
		return nil
	case Stopped:
		n.stateLock.Unlock()
		<-n.finished
		return nil
	}
	n.state = Stopped
	n.stateLock.Unlock()

	// Signal to broadcasters and collectors.
	close(n.shutdown)
	n.workers.Wait()
	n.inflight.Wait()

	// No subscription routine can run concurrently with this one and
	// even if one is to run later it won't affect upstreams anymore.
	n.subsLock.Lock()
	n.lock.RLock()
	active := n.activeTypes()
	n.lock.RUnlock()
	for _, t := range active {
		n.unsubscribeUpstream(n.subscribers, t)
	}
	n.subscribers = nil
	n.subsLock.Unlock()

	close(n.finished)
	n.log.Info("notifier stopped")
	return nil
}

// Notify queues the notification for asynchronous dispatch. It never
// blocks, ErrQueueFull is returned if the queue is full. Notifications
// queued before Start are dispatched after it.
func (n *Notifier) Notify(ntf notification.Notification) error {
	if ntf == nil {
		return errors.New("nil notification")
	}
	n.stateLock.RLock()
	defer n.stateLock.RUnlock()
	if n.state == Stopped {
		return ErrStopped
	}
	select {
	case n.queue <- ntf:
		return nil
	default:
		queueOverflowed(n.name)
		return ErrQueueFull
	}
}

// Dispatch synchronously delivers the notification to every listener that
// has a matching scope. Delivery errors are logged and don't affect other
// listeners. It returns ErrStopped after Join.
func (n *Notifier) Dispatch(ntf notification.Notification) error {
	if ntf == nil {
		return errors.New("nil notification")
	}
	n.stateLock.RLock()
	if n.state == Stopped {
		n.stateLock.RUnlock()
		return ErrStopped
	}
	n.inflight.Add(1)
	n.stateLock.RUnlock()
	defer n.inflight.Done()

	n.dispatch(ntf)
	return nil
}

func (n *Notifier) broadcast() {
	defer n.workers.Done()
	for {
		select {
		case <-n.shutdown:
			// Deliver whatever was queued before the stop.
			for {
				select {
				case ntf := <-n.queue:
					n.dispatch(ntf)
				default:
					return
				}
			}
		case ntf := <-n.queue:
			n.dispatch(ntf)
		}
	}
}

func (n *Notifier) collect(ch <-chan notification.Notification) {
	defer n.workers.Done()
	for {
		select {
		case <-n.shutdown:
			return
		case ntf, ok := <-ch:
			if !ok {
				return
			}
			select {
			case n.queue <- ntf:
			case <-n.shutdown:
				return
			}
		}
	}
}

// dispatch takes a snapshot of matching listeners and delivers the
// notification to them outside of the lock.
func (n *Notifier) dispatch(ntf notification.Notification) {
	t := ntf.EventType()

	n.lock.RLock()
	subs := n.index[t]
	targets := make([]target, 0, len(subs))
	for _, l := range subs {
		var matched []scope.Scope
		for _, s := range l.Scopes(t) {
			if notification.Matches(s, ntf) {
				matched = append(matched, s)
			}
		}
		if len(matched) != 0 {
			targets = append(targets, target{l: l, scopes: matched})
		}
	}
	n.lock.RUnlock()

	for _, tg := range targets {
		out := notification.Apply(tg.scopes, ntf)
		if out == nil {
			continue
		}
		err := tg.l.Connection().Send(out)
		if err != nil {
			reason := "error"
			switch {
			case errors.Is(err, connection.ErrClosed):
				reason = "closed"
			case errors.Is(err, connection.ErrOverflow):
				reason = "overflow"
			}
			deliveryFailed(n.name, reason)
			n.log.Debug("failed to deliver notification",
				zap.Stringer("id", tg.l.ID()),
				zap.Stringer("event", t),
				zap.Error(err))
			continue
		}
		notificationDelivered(n.name, t)
	}
}
