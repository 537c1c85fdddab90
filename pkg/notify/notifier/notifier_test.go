package notifier

import (
	"sync"
	"testing"
	"time"

	"github.com/nspcc-dev/dagnotify/pkg/config"
	"github.com/nspcc-dev/dagnotify/pkg/notify/address"
	"github.com/nspcc-dev/dagnotify/pkg/notify/connection"
	"github.com/nspcc-dev/dagnotify/pkg/notify/events"
	"github.com/nspcc-dev/dagnotify/pkg/notify/listener"
	"github.com/nspcc-dev/dagnotify/pkg/notify/notification"
	"github.com/nspcc-dev/dagnotify/pkg/notify/scope"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	addrA = address.MustParse("kaspa:qqa")
	addrB = address.MustParse("kaspa:qqz")
)

// recordConn stores everything sent to it.
type recordConn struct {
	lock   sync.Mutex
	got    []notification.Notification
	closed bool
}

func (c *recordConn) Send(n notification.Notification) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.closed {
		return connection.ErrClosed
	}
	c.got = append(c.got, n)
	return nil
}

func (c *recordConn) IsClosed() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.closed
}

func (c *recordConn) close() {
	c.lock.Lock()
	c.closed = true
	c.lock.Unlock()
}

func (c *recordConn) received() []notification.Notification {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]notification.Notification(nil), c.got...)
}

// recordSubscriber counts upstream subscription calls.
type recordSubscriber struct {
	lock   sync.Mutex
	active map[events.Type]int
	subs   int
	unsubs int
}

func newRecordSubscriber() *recordSubscriber {
	return &recordSubscriber{active: make(map[events.Type]int)}
}

func (s *recordSubscriber) Subscribe(t events.Type) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.active[t]++
	s.subs++
	return nil
}

func (s *recordSubscriber) Unsubscribe(t events.Type) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.active[t]--
	s.unsubs++
	return nil
}

func (s *recordSubscriber) counts(t events.Type) (int, int, int) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.active[t], s.subs, s.unsubs
}

func newTestNotifier(t *testing.T, cfg config.Notifier) *Notifier {
	n, err := New("test", cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	return n
}

func utxoChange(addrs ...address.Address) *notification.UtxosChanged {
	res := new(notification.UtxosChanged)
	for _, a := range addrs {
		res.Added = append(res.Added, notification.UtxosByAddressesEntry{Address: a})
	}
	return res
}

func TestNew(t *testing.T) {
	_, err := New("bad", config.Notifier{EnabledEvents: []string{"no_such_event"}}, nil)
	require.Error(t, err)

	n, err := New("rpc-core", config.Notifier{}, nil)
	require.NoError(t, err)
	require.Equal(t, "rpc-core", n.Name())
	require.Equal(t, Created, n.State())
	require.Equal(t, events.FullSet(), n.EnabledEvents())
	require.Equal(t, config.DefaultBroadcasters, n.broadcasters)
	require.Equal(t, config.DefaultQueueSize, cap(n.queue))
	require.Equal(t, 0, n.ListenerCount())
}

func TestRegisterNewListener(t *testing.T) {
	n := newTestNotifier(t, config.Notifier{})

	const count = 100
	var (
		wg  sync.WaitGroup
		ids = make(chan listener.ID, count)
	)
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- n.RegisterNewListener(new(recordConn))
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[listener.ID]bool)
	for id := range ids {
		require.NotEqual(t, listener.InvalidID, id)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	require.Equal(t, count, n.ListenerCount())
}

func TestUnregisterListener(t *testing.T) {
	n := newTestNotifier(t, config.Notifier{})
	c := new(recordConn)
	id := n.RegisterNewListener(c)
	require.NoError(t, n.StartNotify(id, scope.BlockAddedScope{}))

	require.NoError(t, n.UnregisterListener(id))
	require.ErrorIs(t, n.UnregisterListener(id), ErrListenerNotFound)
	require.ErrorIs(t, n.UnregisterListener(listener.InvalidID), ErrListenerNotFound)
	require.ErrorIs(t, n.StartNotify(id, scope.BlockAddedScope{}), ErrListenerNotFound)
	require.ErrorIs(t, n.StopNotify(id, scope.BlockAddedScope{}), ErrListenerNotFound)
	require.Equal(t, 0, n.ListenerCount())

	require.NoError(t, n.Dispatch(&notification.BlockAdded{}))
	require.Empty(t, c.received())
	require.Empty(t, n.index)
}

func TestStartStopNotify(t *testing.T) {
	t.Run("idempotent start", func(t *testing.T) {
		n := newTestNotifier(t, config.Notifier{})
		c := new(recordConn)
		id := n.RegisterNewListener(c)
		require.NoError(t, n.StartNotify(id, scope.BlockAddedScope{}))
		require.NoError(t, n.StartNotify(id, scope.BlockAddedScope{}))

		require.NoError(t, n.Dispatch(&notification.BlockAdded{}))
		require.Len(t, c.received(), 1)
	})
	t.Run("absent stop", func(t *testing.T) {
		n := newTestNotifier(t, config.Notifier{})
		c := new(recordConn)
		id := n.RegisterNewListener(c)
		require.NoError(t, n.StopNotify(id, scope.BlockAddedScope{}))
		require.NoError(t, n.StartNotify(id, scope.SinkBlueScoreChangedScope{}))
		require.NoError(t, n.StopNotify(id, scope.BlockAddedScope{}))

		require.NoError(t, n.Dispatch(&notification.SinkBlueScoreChanged{SinkBlueScore: 1}))
		require.Len(t, c.received(), 1)
	})
	t.Run("stop", func(t *testing.T) {
		n := newTestNotifier(t, config.Notifier{})
		c := new(recordConn)
		id := n.RegisterNewListener(c)
		require.NoError(t, n.StartNotify(id, scope.BlockAddedScope{}))
		require.NoError(t, n.StopNotify(id, scope.BlockAddedScope{}))

		require.NoError(t, n.Dispatch(&notification.BlockAdded{}))
		require.Empty(t, c.received())
		require.Equal(t, 1, n.ListenerCount())
	})
	t.Run("not enabled", func(t *testing.T) {
		n := newTestNotifier(t, config.Notifier{EnabledEvents: []string{"block_added"}})
		id := n.RegisterNewListener(new(recordConn))
		require.NoError(t, n.StartNotify(id, scope.BlockAddedScope{}))
		require.ErrorIs(t, n.StartNotify(id, scope.UtxosChangedScope{}), ErrEventNotEnabled)
	})
	t.Run("invalid scope", func(t *testing.T) {
		n := newTestNotifier(t, config.Notifier{})
		id := n.RegisterNewListener(new(recordConn))
		require.ErrorIs(t, n.StartNotify(id, nil), scope.ErrInvalidScope)
		require.ErrorIs(t, n.StopNotify(id, nil), scope.ErrInvalidScope)
	})
	t.Run("too many scopes", func(t *testing.T) {
		n := newTestNotifier(t, config.Notifier{MaxScopesPerListener: 2})
		id := n.RegisterNewListener(new(recordConn))
		require.NoError(t, n.StartNotify(id, scope.BlockAddedScope{}))
		require.NoError(t, n.StartNotify(id, scope.UtxosChangedScope{Addresses: []address.Address{addrA}}))
		require.ErrorIs(t, n.StartNotify(id, scope.UtxosChangedScope{Addresses: []address.Address{addrB}}), ErrTooManyScopes)
		// Existing scope is not a new one.
		require.NoError(t, n.StartNotify(id, scope.BlockAddedScope{}))
	})
}

func TestDispatch(t *testing.T) {
	n := newTestNotifier(t, config.Notifier{})
	c1, c2 := new(recordConn), new(recordConn)
	l1 := n.RegisterNewListener(c1)
	l2 := n.RegisterNewListener(c2)
	require.NoError(t, n.StartNotify(l1, scope.BlockAddedScope{}))
	require.NoError(t, n.StartNotify(l2, scope.UtxosChangedScope{Addresses: []address.Address{addrA}}))

	ba := &notification.BlockAdded{Block: new(notification.Block)}
	require.NoError(t, n.Dispatch(ba))
	require.Equal(t, []notification.Notification{ba}, c1.received())
	require.Empty(t, c2.received())

	uc := utxoChange(addrA)
	require.NoError(t, n.Dispatch(uc))
	require.Equal(t, []notification.Notification{uc}, c2.received())
	require.Len(t, c1.received(), 1)

	require.NoError(t, n.Dispatch(utxoChange(addrB)))
	require.Len(t, c1.received(), 1)
	require.Len(t, c2.received(), 1)

	// Only the watched part is delivered.
	require.NoError(t, n.Dispatch(utxoChange(addrA, addrB)))
	got := c2.received()
	require.Len(t, got, 2)
	require.Equal(t, utxoChange(addrA), got[1])
}

func TestDispatchAcceptedTransactionIDs(t *testing.T) {
	n := newTestNotifier(t, config.Notifier{})
	full, short := new(recordConn), new(recordConn)
	require.NoError(t, n.StartNotify(n.RegisterNewListener(full),
		scope.VirtualChainChangedScope{IncludeAcceptedTransactionIDs: true}))
	require.NoError(t, n.StartNotify(n.RegisterNewListener(short),
		scope.VirtualChainChangedScope{}))

	vcc := &notification.VirtualChainChanged{
		AcceptedTransactionIDs: []notification.AcceptedTransactionIDs{{}},
	}
	require.NoError(t, n.Dispatch(vcc))
	require.Equal(t, []notification.Notification{vcc}, full.received())
	got := short.received()
	require.Len(t, got, 1)
	require.Empty(t, got[0].(*notification.VirtualChainChanged).AcceptedTransactionIDs)
}

func TestDispatchClosedConnection(t *testing.T) {
	n := newTestNotifier(t, config.Notifier{})
	dead, alive := new(recordConn), new(recordConn)
	deadID := n.RegisterNewListener(dead)
	require.NoError(t, n.StartNotify(deadID, scope.BlockAddedScope{}))
	require.NoError(t, n.StartNotify(n.RegisterNewListener(alive), scope.BlockAddedScope{}))
	dead.close()

	require.NoError(t, n.Dispatch(&notification.BlockAdded{}))
	require.Len(t, alive.received(), 1)
	require.Empty(t, dead.received())
	// Connection is not ours to close or forget.
	require.Equal(t, 2, n.ListenerCount())
	require.NoError(t, n.UnregisterListener(deadID))
}

func TestDispatchChannelConnectionOverflow(t *testing.T) {
	n := newTestNotifier(t, config.Notifier{})
	c := connection.NewChannelConnection(1)
	require.NoError(t, n.StartNotify(n.RegisterNewListener(c), scope.BlockAddedScope{}))

	require.NoError(t, n.Dispatch(&notification.BlockAdded{}))
	require.NoError(t, n.Dispatch(&notification.BlockAdded{}))

	require.IsType(t, &notification.BlockAdded{}, <-c.Receiver())
	select {
	case ntf := <-c.Receiver():
		require.IsType(t, &notification.Missed{}, ntf)
	case <-time.After(time.Second):
		t.Fatal("no missed event")
	}
	c.Close()
}

func TestLifecycle(t *testing.T) {
	t.Run("join without start", func(t *testing.T) {
		n := newTestNotifier(t, config.Notifier{})
		require.NoError(t, n.Join())
		require.Equal(t, Created, n.State())
		require.NoError(t, n.Start())
		require.NoError(t, n.Join())
	})
	t.Run("double start", func(t *testing.T) {
		n := newTestNotifier(t, config.Notifier{})
		require.NoError(t, n.Start())
		require.ErrorIs(t, n.Start(), ErrAlreadyStarted)
		require.Equal(t, Running, n.State())
		require.NoError(t, n.Join())
		require.ErrorIs(t, n.Start(), ErrStopped)
		require.Equal(t, Stopped, n.State())
	})
	t.Run("stopped", func(t *testing.T) {
		n := newTestNotifier(t, config.Notifier{})
		c := new(recordConn)
		id := n.RegisterNewListener(c)
		require.NoError(t, n.StartNotify(id, scope.BlockAddedScope{}))
		require.NoError(t, n.Start())
		require.NoError(t, n.Join())
		require.NoError(t, n.Join())

		require.ErrorIs(t, n.Dispatch(&notification.BlockAdded{}), ErrStopped)
		require.ErrorIs(t, n.Notify(&notification.BlockAdded{}), ErrStopped)
		require.Equal(t, listener.InvalidID, n.RegisterNewListener(new(recordConn)))
		require.Empty(t, c.received())
		require.NoError(t, n.UnregisterListener(id))
	})
	t.Run("concurrent join", func(t *testing.T) {
		n := newTestNotifier(t, config.Notifier{Broadcasters: 4})
		require.NoError(t, n.Start())
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				require.NoError(t, n.Join())
				require.Equal(t, Stopped, n.State())
			}()
		}
		wg.Wait()
	})
	t.Run("register during join", func(t *testing.T) {
		n := newTestNotifier(t, config.Notifier{})
		require.NoError(t, n.Start())
		var (
			wg         sync.WaitGroup
			registered [8]int
		)
		for i := range registered {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				for n.RegisterNewListener(new(recordConn)) != listener.InvalidID {
					registered[i]++
				}
			}(i)
		}
		require.NoError(t, n.Join())
		cnt := n.ListenerCount()
		wg.Wait()

		var total int
		for _, r := range registered {
			total += r
		}
		require.Equal(t, cnt, n.ListenerCount())
		require.Equal(t, total, cnt)
	})
}

func TestNotify(t *testing.T) {
	n := newTestNotifier(t, config.Notifier{QueueSize: 2, Broadcasters: 2})
	c := new(recordConn)
	require.NoError(t, n.StartNotify(n.RegisterNewListener(c), scope.BlockAddedScope{}))

	require.NoError(t, n.Notify(&notification.BlockAdded{}))
	require.NoError(t, n.Notify(&notification.BlockAdded{}))
	require.ErrorIs(t, n.Notify(&notification.BlockAdded{}), ErrQueueFull)
	require.Empty(t, c.received())

	require.NoError(t, n.Start())
	require.NoError(t, n.Join())
	require.Len(t, c.received(), 2)
}

func TestCollector(t *testing.T) {
	n := newTestNotifier(t, config.Notifier{})
	c := new(recordConn)
	require.NoError(t, n.StartNotify(n.RegisterNewListener(c), scope.VirtualDaaScoreChangedScope{}))

	src := make(chan notification.Notification)
	require.NoError(t, n.AddCollector(src))
	require.NoError(t, n.Start())
	require.Error(t, n.AddCollector(make(chan notification.Notification)))

	for i := 0; i < 5; i++ {
		src <- &notification.VirtualDaaScoreChanged{VirtualDaaScore: uint64(i)}
	}
	require.Eventually(t, func() bool { return len(c.received()) == 5 }, time.Second, 10*time.Millisecond)
	close(src)
	require.NoError(t, n.Join())
}

func TestUpstreamSubscriber(t *testing.T) {
	n := newTestNotifier(t, config.Notifier{})
	s := newRecordSubscriber()
	n.AddSubscriber(s)

	l1 := n.RegisterNewListener(new(recordConn))
	l2 := n.RegisterNewListener(new(recordConn))
	require.NoError(t, n.StartNotify(l1, scope.UtxosChangedScope{Addresses: []address.Address{addrA}}))
	require.NoError(t, n.StartNotify(l1, scope.UtxosChangedScope{Addresses: []address.Address{addrB}}))
	require.NoError(t, n.StartNotify(l2, scope.UtxosChangedScope{}))
	active, subs, unsubs := s.counts(events.UtxosChanged)
	require.Equal(t, 1, active)
	require.Equal(t, 1, subs)
	require.Equal(t, 0, unsubs)

	require.NoError(t, n.StopNotify(l1, scope.UtxosChangedScope{Addresses: []address.Address{addrA}}))
	require.NoError(t, n.UnregisterListener(l1))
	active, _, _ = s.counts(events.UtxosChanged)
	require.Equal(t, 1, active)

	require.NoError(t, n.StopNotify(l2, scope.UtxosChangedScope{}))
	active, subs, unsubs = s.counts(events.UtxosChanged)
	require.Equal(t, 0, active)
	require.Equal(t, 1, subs)
	require.Equal(t, 1, unsubs)

	// Late subscriber catches up with active events, Join releases them.
	require.NoError(t, n.StartNotify(l2, scope.BlockAddedScope{}))
	late := newRecordSubscriber()
	n.AddSubscriber(late)
	active, _, _ = late.counts(events.BlockAdded)
	require.Equal(t, 1, active)

	require.NoError(t, n.Start())
	require.NoError(t, n.Join())
	active, _, _ = late.counts(events.BlockAdded)
	require.Equal(t, 0, active)
	active, _, _ = s.counts(events.BlockAdded)
	require.Equal(t, 0, active)
}

func TestParentSubscriber(t *testing.T) {
	parent := newTestNotifier(t, config.Notifier{})
	child, err := New("child", config.Notifier{}, zaptest.NewLogger(t))
	require.NoError(t, err)

	ps := NewParentSubscriber(parent, child)
	child.AddSubscriber(ps)
	require.NoError(t, child.Start())

	c := new(recordConn)
	id := child.RegisterNewListener(c)
	require.NoError(t, child.StartNotify(id, scope.UtxosChangedScope{Addresses: []address.Address{addrA}}))

	require.NoError(t, parent.Dispatch(utxoChange(addrB)))
	require.NoError(t, parent.Dispatch(utxoChange(addrA, addrB)))
	require.NoError(t, parent.Dispatch(&notification.BlockAdded{}))
	require.Eventually(t, func() bool { return len(c.received()) == 1 }, time.Second, 10*time.Millisecond)
	require.Equal(t, utxoChange(addrA), c.received()[0])

	require.NoError(t, child.UnregisterListener(id))
	require.NoError(t, parent.Dispatch(utxoChange(addrA)))
	require.NoError(t, child.Join())
	require.Len(t, c.received(), 1)

	require.NoError(t, ps.Close())
	require.Equal(t, 0, parent.ListenerCount())
}

func TestConcurrentAccess(t *testing.T) {
	n := newTestNotifier(t, config.Notifier{Broadcasters: 2})
	require.NoError(t, n.Start())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				id := n.RegisterNewListener(new(recordConn))
				require.NoError(t, n.StartNotify(id, scope.BlockAddedScope{}))
				require.NoError(t, n.StartNotify(id, scope.UtxosChangedScope{Addresses: []address.Address{addrA}}))
				require.NoError(t, n.StopNotify(id, scope.BlockAddedScope{}))
				require.NoError(t, n.UnregisterListener(id))
			}
		}()
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				require.NoError(t, n.Dispatch(&notification.BlockAdded{}))
				require.NoError(t, n.Dispatch(utxoChange(addrA)))
				_ = n.Notify(utxoChange(addrA))
			}
		}()
	}
	wg.Wait()
	require.NoError(t, n.Join())
	require.Equal(t, 0, n.ListenerCount())
	require.Empty(t, n.index)
}
