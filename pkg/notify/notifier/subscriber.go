package notifier

import (
	"github.com/nspcc-dev/dagnotify/pkg/notify/connection"
	"github.com/nspcc-dev/dagnotify/pkg/notify/events"
	"github.com/nspcc-dev/dagnotify/pkg/notify/listener"
	"github.com/nspcc-dev/dagnotify/pkg/notify/scope"
)

// ParentSubscriber is a Subscriber chaining a child notifier to a parent
// one: the child is registered as a parent's listener and gets all
// notifications of the event types its own listeners need queued via
// Notify. Filtering is left to the child.
type ParentSubscriber struct {
	parent *Notifier
	id     listener.ID
}

// NewParentSubscriber registers child as a listener of parent and returns a
// Subscriber to be added to the child.
func NewParentSubscriber(parent, child *Notifier) *ParentSubscriber {
	return &ParentSubscriber{
		parent: parent,
		id:     parent.RegisterNewListener(connection.FuncConnection(child.Notify)),
	}
}

// ID returns the child's listener ID in the parent notifier.
func (p *ParentSubscriber) ID() listener.ID {
	return p.id
}

// Subscribe implements the Subscriber interface.
func (p *ParentSubscriber) Subscribe(t events.Type) error {
	s, err := scope.New(t)
	if err != nil {
		return err
	}
	return p.parent.StartNotify(p.id, s)
}

// Unsubscribe implements the Subscriber interface.
func (p *ParentSubscriber) Unsubscribe(t events.Type) error {
	s, err := scope.New(t)
	if err != nil {
		return err
	}
	return p.parent.StopNotify(p.id, s)
}

// Close unregisters the child from the parent.
func (p *ParentSubscriber) Close() error {
	return p.parent.UnregisterListener(p.id)
}
