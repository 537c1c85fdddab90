package listener

import (
	"testing"

	"github.com/nspcc-dev/dagnotify/pkg/notify/address"
	"github.com/nspcc-dev/dagnotify/pkg/notify/connection"
	"github.com/nspcc-dev/dagnotify/pkg/notify/events"
	"github.com/nspcc-dev/dagnotify/pkg/notify/scope"
	"github.com/stretchr/testify/require"
)

func TestScopes(t *testing.T) {
	conn := connection.NewChannelConnection(1)
	l := New(5, conn)
	require.Equal(t, ID(5), l.ID())
	require.Equal(t, "5", l.ID().String())
	require.Same(t, conn, l.Connection())
	require.Equal(t, 0, l.ScopeCount())

	utxoA := scope.UtxosChangedScope{Addresses: []address.Address{address.MustParse("kaspa:qq")}}
	utxoAll := scope.UtxosChangedScope{}

	require.True(t, l.AddScope(scope.BlockAddedScope{}))
	require.False(t, l.AddScope(scope.BlockAddedScope{}))
	require.True(t, l.HasScope(scope.BlockAddedScope{}))
	require.False(t, l.HasScope(scope.NewBlockTemplateScope{}))
	require.True(t, l.AddScope(utxoA))
	require.True(t, l.AddScope(utxoAll))
	require.Equal(t, 3, l.ScopeCount())
	require.ElementsMatch(t, []scope.Scope{utxoA, utxoAll}, l.Scopes(events.UtxosChanged))
	require.Equal(t, []events.Type{events.BlockAdded, events.UtxosChanged}, l.EventTypes())

	require.True(t, l.RemoveScope(utxoA))
	require.False(t, l.RemoveScope(utxoA))
	require.True(t, l.HasEvent(events.UtxosChanged))
	require.True(t, l.RemoveScope(utxoAll))
	require.False(t, l.HasEvent(events.UtxosChanged))
	require.Nil(t, l.Scopes(events.UtxosChanged))
	require.False(t, l.RemoveScope(scope.NewBlockTemplateScope{}))

	require.True(t, l.RemoveScope(scope.BlockAddedScope{}))
	require.Equal(t, 0, l.ScopeCount())
	require.Empty(t, l.EventTypes())
}
