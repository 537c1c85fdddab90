package rpcsrv

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/nspcc-dev/dagnotify/pkg/dagrpc"
	"github.com/nspcc-dev/dagnotify/pkg/notify/connection"
	"github.com/nspcc-dev/dagnotify/pkg/notify/events"
	"github.com/nspcc-dev/dagnotify/pkg/notify/listener"
	"github.com/nspcc-dev/dagnotify/pkg/notify/notification"
	"go.uber.org/atomic"
)

// subscriber is a websocket client registered as a notifier listener. It
// serializes notifications into websocket messages and queues them for the
// writer routine.
type subscriber struct {
	id      listener.ID
	session uuid.UUID

	events      chan *websocket.PreparedMessage
	overflowMsg *websocket.PreparedMessage
	overflown   atomic.Bool
	closed      atomic.Bool
	done        chan struct{}
	closeOnce   sync.Once
}

var _ connection.Connection = (*subscriber)(nil)

func newSubscriber(ch chan *websocket.PreparedMessage, overflowMsg *websocket.PreparedMessage) *subscriber {
	return &subscriber{
		session:     uuid.New(),
		events:      ch,
		overflowMsg: overflowMsg,
		done:        make(chan struct{}),
	}
}

// Send implements the connection.Connection interface.
func (sub *subscriber) Send(ntf notification.Notification) error {
	if sub.closed.Load() {
		return connection.ErrClosed
	}
	if sub.overflown.Load() {
		return connection.ErrOverflow
	}
	msg, err := prepareNotification(ntf.EventType(), ntf)
	if err != nil {
		return err
	}
	select {
	case sub.events <- msg:
		return nil
	default:
	}
	if sub.overflown.CAS(false, true) {
		// MissedEvent is to be delivered eventually.
		go func() {
			select {
			case sub.events <- sub.overflowMsg:
				sub.overflown.Store(false)
			case <-sub.done:
			}
		}()
	}
	return connection.ErrOverflow
}

// IsClosed implements the connection.Connection interface.
func (sub *subscriber) IsClosed() bool {
	return sub.closed.Load()
}

func (sub *subscriber) close() {
	sub.closeOnce.Do(func() {
		sub.closed.Store(true)
		close(sub.done)
	})
}

func prepareNotification(event events.Type, payload ...any) (*websocket.PreparedMessage, error) {
	if payload == nil {
		payload = make([]any, 0)
	}
	b, err := json.Marshal(dagrpc.Notification{
		JSONRPC: dagrpc.JSONRPCVersion,
		Event:   event,
		Payload: payload,
	})
	if err != nil {
		return nil, err
	}
	return websocket.NewPreparedMessage(websocket.TextMessage, b)
}

func newOverflowMessage() (*websocket.PreparedMessage, error) {
	return prepareNotification(events.Missed)
}
