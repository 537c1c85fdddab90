package notification

import (
	"testing"

	"github.com/nspcc-dev/dagnotify/pkg/notify/address"
	"github.com/nspcc-dev/dagnotify/pkg/notify/scope"
	"github.com/nspcc-dev/dagnotify/pkg/util"
	"github.com/stretchr/testify/require"
)

var (
	addrA = address.MustParse("kaspa:qqa")
	addrB = address.MustParse("kaspa:qqz")
	addrC = address.MustParse("kaspa:qqc")
)

func utxoEntry(a address.Address, idx uint32) UtxosByAddressesEntry {
	return UtxosByAddressesEntry{
		Address:  a,
		Outpoint: Outpoint{TransactionID: util.Hash{byte(idx)}, Index: idx},
		UtxoEntry: UtxoEntry{
			Amount: uint64(idx) * 100,
		},
	}
}

func TestMatches(t *testing.T) {
	blockNtf := &BlockAdded{Block: &Block{Hash: util.Hash{1, 2, 3}}}
	utxoNtf := &UtxosChanged{
		Added:   []UtxosByAddressesEntry{utxoEntry(addrA, 1)},
		Removed: []UtxosByAddressesEntry{utxoEntry(addrB, 2)},
	}
	var testCases = []struct {
		name     string
		scope    scope.Scope
		ntf      Notification
		expected bool
	}{
		{
			name:     "type mismatch",
			scope:    scope.VirtualDaaScoreChangedScope{},
			ntf:      blockNtf,
			expected: false,
		},
		{
			name:     "missed event",
			scope:    scope.BlockAddedScope{},
			ntf:      &Missed{},
			expected: false,
		},
		{
			name:     "nil scope",
			scope:    nil,
			ntf:      blockNtf,
			expected: false,
		},
		{
			name:     "block, no filter",
			scope:    scope.BlockAddedScope{},
			ntf:      blockNtf,
			expected: true,
		},
		{
			name:     "utxos, all addresses",
			scope:    scope.UtxosChangedScope{},
			ntf:      utxoNtf,
			expected: true,
		},
		{
			name:     "utxos, added address",
			scope:    scope.UtxosChangedScope{Addresses: []address.Address{addrA}},
			ntf:      utxoNtf,
			expected: true,
		},
		{
			name:     "utxos, removed address",
			scope:    scope.UtxosChangedScope{Addresses: []address.Address{addrC, addrB}},
			ntf:      utxoNtf,
			expected: true,
		},
		{
			name:     "utxos, address mismatch",
			scope:    scope.UtxosChangedScope{Addresses: []address.Address{addrC}},
			ntf:      utxoNtf,
			expected: false,
		},
		{
			name:     "virtual chain without ids",
			scope:    scope.VirtualChainChangedScope{},
			ntf:      &VirtualChainChanged{},
			expected: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, Matches(tc.scope, tc.ntf))
		})
	}
}

func TestApplyUtxos(t *testing.T) {
	ntf := &UtxosChanged{
		Added:   []UtxosByAddressesEntry{utxoEntry(addrA, 1), utxoEntry(addrB, 2)},
		Removed: []UtxosByAddressesEntry{utxoEntry(addrC, 3)},
	}

	t.Run("unfiltered scope wins", func(t *testing.T) {
		res := Apply([]scope.Scope{
			scope.UtxosChangedScope{Addresses: []address.Address{addrA}},
			scope.UtxosChangedScope{},
		}, ntf)
		require.Same(t, ntf, res)
	})
	t.Run("narrowed", func(t *testing.T) {
		res := Apply([]scope.Scope{scope.UtxosChangedScope{Addresses: []address.Address{addrA}}}, ntf)
		require.Equal(t, &UtxosChanged{Added: []UtxosByAddressesEntry{utxoEntry(addrA, 1)}}, res)
		// Source is not modified.
		require.Len(t, ntf.Added, 2)
	})
	t.Run("union of scopes", func(t *testing.T) {
		res := Apply([]scope.Scope{
			scope.UtxosChangedScope{Addresses: []address.Address{addrA}},
			scope.UtxosChangedScope{Addresses: []address.Address{addrC}},
		}, ntf)
		require.Equal(t, &UtxosChanged{
			Added:   []UtxosByAddressesEntry{utxoEntry(addrA, 1)},
			Removed: []UtxosByAddressesEntry{utxoEntry(addrC, 3)},
		}, res)
	})
	t.Run("everything watched", func(t *testing.T) {
		res := Apply([]scope.Scope{scope.UtxosChangedScope{Addresses: []address.Address{addrA, addrB, addrC}}}, ntf)
		require.Same(t, ntf, res)
	})
	t.Run("nothing left", func(t *testing.T) {
		other := address.MustParse("kaspa:qqq")
		require.Nil(t, Apply([]scope.Scope{scope.UtxosChangedScope{Addresses: []address.Address{other}}}, ntf))
	})
	t.Run("no scopes", func(t *testing.T) {
		require.Nil(t, Apply(nil, ntf))
	})
}

func TestApplyVirtualChain(t *testing.T) {
	ntf := &VirtualChainChanged{
		AddedChainBlockHashes: []util.Hash{{1}},
		AcceptedTransactionIDs: []AcceptedTransactionIDs{{
			AcceptingBlockHash:     util.Hash{1},
			AcceptedTransactionIDs: []util.Hash{{2}, {3}},
		}},
	}
	stripped := Apply([]scope.Scope{scope.VirtualChainChangedScope{}}, ntf)
	require.Equal(t, &VirtualChainChanged{AddedChainBlockHashes: []util.Hash{{1}}}, stripped)

	full := Apply([]scope.Scope{
		scope.VirtualChainChangedScope{},
		scope.VirtualChainChangedScope{IncludeAcceptedTransactionIDs: true},
	}, ntf)
	require.Same(t, ntf, full)

	empty := &VirtualChainChanged{}
	require.Same(t, empty, Apply([]scope.Scope{scope.VirtualChainChangedScope{}}, empty))
}

func TestApplyPassThrough(t *testing.T) {
	ntf := &SinkBlueScoreChanged{SinkBlueScore: 42}
	require.Same(t, ntf, Apply([]scope.Scope{scope.SinkBlueScoreChangedScope{}}, ntf))
}
