package notification

import (
	"github.com/nspcc-dev/dagnotify/pkg/notify/address"
	"github.com/nspcc-dev/dagnotify/pkg/notify/scope"
)

// Matches checks the given Notification against the scope filter.
func Matches(s scope.Scope, n Notification) bool {
	if s == nil || n == nil || s.EventType() != n.EventType() {
		return false
	}
	switch flt := s.(type) {
	case scope.UtxosChangedScope:
		ntf, ok := n.(*UtxosChanged)
		if !ok {
			return false
		}
		addrs := flt.AddressSet()
		if addrs == nil {
			return true
		}
		return containsAny(ntf.Added, addrs) || containsAny(ntf.Removed, addrs)
	default:
		return true
	}
}

func containsAny(entries []UtxosByAddressesEntry, addrs address.Set) bool {
	for i := range entries {
		if addrs.Contains(entries[i].Address) {
			return true
		}
	}
	return false
}

// Apply returns the version of the notification a listener with the given
// (already matched) scopes is to receive. The original notification is
// returned when no narrowing is needed, otherwise a shallow copy with
// filtered contents is made so that the source can be shared between
// listeners. nil is returned when nothing remains after filtering.
func Apply(scopes []scope.Scope, n Notification) Notification {
	if len(scopes) == 0 {
		return nil
	}
	switch ntf := n.(type) {
	case *UtxosChanged:
		var watched = make(address.Set)
		for _, s := range scopes {
			us, ok := s.(scope.UtxosChangedScope)
			if !ok {
				continue
			}
			addrs := us.AddressSet()
			if addrs == nil {
				return n
			}
			for a := range addrs {
				watched[a] = struct{}{}
			}
		}
		res := &UtxosChanged{
			Added:   filterEntries(ntf.Added, watched),
			Removed: filterEntries(ntf.Removed, watched),
		}
		if len(res.Added) == 0 && len(res.Removed) == 0 {
			return nil
		}
		if len(res.Added) == len(ntf.Added) && len(res.Removed) == len(ntf.Removed) {
			return n
		}
		return res
	case *VirtualChainChanged:
		for _, s := range scopes {
			if vs, ok := s.(scope.VirtualChainChangedScope); ok && vs.IncludeAcceptedTransactionIDs {
				return n
			}
		}
		if len(ntf.AcceptedTransactionIDs) == 0 {
			return n
		}
		return &VirtualChainChanged{
			RemovedChainBlockHashes: ntf.RemovedChainBlockHashes,
			AddedChainBlockHashes:   ntf.AddedChainBlockHashes,
		}
	default:
		return n
	}
}

func filterEntries(entries []UtxosByAddressesEntry, addrs address.Set) []UtxosByAddressesEntry {
	var res []UtxosByAddressesEntry
	for i := range entries {
		if addrs.Contains(entries[i].Address) {
			res = append(res, entries[i])
		}
	}
	return res
}
