/*
Package scope contains subscription scopes: an event type plus optional
filter parameters narrowing the set of delivered events of that type. There
is one concrete scope type per catalogue event type, so a scope for an event
outside of the catalogue can't be built.
*/
package scope

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nspcc-dev/dagnotify/pkg/notify/address"
	"github.com/nspcc-dev/dagnotify/pkg/notify/events"
)

// MaxUtxosChangedAddresses is a reasonable limit for UtxosChanged scope
// addresses that doesn't allow a single subscriber to blow up matching
// costs, but is big enough for real wallets.
const MaxUtxosChangedAddresses = 1024

var (
	// ErrInvalidScope is returned when scope filter parameters are invalid.
	ErrInvalidScope = errors.New("invalid scope")
	// ErrUnknownEvent is returned when a scope is requested for an event
	// type outside of the catalogue.
	ErrUnknownEvent = errors.New("no scope for event type")
)

// Scope is a subscription request for some event type.
type Scope interface {
	// EventType returns the type of events this scope is about.
	EventType() events.Type
	// Key returns scope identity, two scopes with the same key are the
	// same subscription.
	Key() string
	// IsValid checks filter parameters and returns an error wrapping
	// ErrInvalidScope if they're wrong.
	IsValid() error
}

type (
	// BlockAddedScope subscribes to all added blocks.
	BlockAddedScope struct{}
	// VirtualChainChangedScope subscribes to virtual selected parent chain
	// changes, accepted transaction ids are only delivered when requested.
	VirtualChainChangedScope struct {
		IncludeAcceptedTransactionIDs bool `json:"includeAcceptedTransactionIds"`
	}
	// FinalityConflictScope subscribes to finality conflicts.
	FinalityConflictScope struct{}
	// FinalityConflictResolvedScope subscribes to finality conflict
	// resolutions.
	FinalityConflictResolvedScope struct{}
	// UtxosChangedScope subscribes to UTXO set changes of the given
	// addresses. Empty address list means all addresses.
	UtxosChangedScope struct {
		Addresses []address.Address `json:"addresses,omitempty"`
	}
	// SinkBlueScoreChangedScope subscribes to sink blue score changes.
	SinkBlueScoreChangedScope struct{}
	// VirtualDaaScoreChangedScope subscribes to virtual DAA score changes.
	VirtualDaaScoreChangedScope struct{}
	// PruningPointUtxoSetOverrideScope subscribes to pruning point UTXO set
	// overrides.
	PruningPointUtxoSetOverrideScope struct{}
	// NewBlockTemplateScope subscribes to new block template availability.
	NewBlockTemplateScope struct{}
)

// New returns an unfiltered scope for the given event type.
func New(t events.Type) (Scope, error) {
	switch t {
	case events.BlockAdded:
		return BlockAddedScope{}, nil
	case events.VirtualChainChanged:
		return VirtualChainChangedScope{}, nil
	case events.FinalityConflict:
		return FinalityConflictScope{}, nil
	case events.FinalityConflictResolved:
		return FinalityConflictResolvedScope{}, nil
	case events.UtxosChanged:
		return UtxosChangedScope{}, nil
	case events.SinkBlueScoreChanged:
		return SinkBlueScoreChangedScope{}, nil
	case events.VirtualDaaScoreChanged:
		return VirtualDaaScoreChangedScope{}, nil
	case events.PruningPointUtxoSetOverride:
		return PruningPointUtxoSetOverrideScope{}, nil
	case events.NewBlockTemplate:
		return NewBlockTemplateScope{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, t)
	}
}

// Decode creates a scope for the given event type from its JSON filter
// representation. Empty or null data results in an unfiltered scope. Unknown
// filter fields are an error, as well as filters for events that don't
// have any.
func Decode(t events.Type, data []byte) (Scope, error) {
	s, err := New(t)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return s, nil
	}
	jd := json.NewDecoder(bytes.NewReader(data))
	jd.DisallowUnknownFields()
	switch t {
	case events.VirtualChainChanged:
		flt := new(VirtualChainChangedScope)
		err = jd.Decode(flt)
		s = *flt
	case events.UtxosChanged:
		flt := new(UtxosChangedScope)
		err = jd.Decode(flt)
		s = *flt
	default:
		var empty struct{}
		err = jd.Decode(&empty)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidScope, err)
	}
	if err = s.IsValid(); err != nil {
		return nil, err
	}
	return s, nil
}

func simpleKey(t events.Type) string {
	return strconv.Itoa(int(t))
}

// EventType implements the Scope interface.
func (BlockAddedScope) EventType() events.Type { return events.BlockAdded }

// Key implements the Scope interface.
func (BlockAddedScope) Key() string { return simpleKey(events.BlockAdded) }

// IsValid implements the Scope interface.
func (BlockAddedScope) IsValid() error { return nil }

// EventType implements the Scope interface.
func (VirtualChainChangedScope) EventType() events.Type { return events.VirtualChainChanged }

// Key implements the Scope interface.
func (s VirtualChainChangedScope) Key() string {
	return simpleKey(events.VirtualChainChanged) + ":" + strconv.FormatBool(s.IncludeAcceptedTransactionIDs)
}

// IsValid implements the Scope interface.
func (VirtualChainChangedScope) IsValid() error { return nil }

// EventType implements the Scope interface.
func (FinalityConflictScope) EventType() events.Type { return events.FinalityConflict }

// Key implements the Scope interface.
func (FinalityConflictScope) Key() string { return simpleKey(events.FinalityConflict) }

// IsValid implements the Scope interface.
func (FinalityConflictScope) IsValid() error { return nil }

// EventType implements the Scope interface.
func (FinalityConflictResolvedScope) EventType() events.Type {
	return events.FinalityConflictResolved
}

// Key implements the Scope interface.
func (FinalityConflictResolvedScope) Key() string {
	return simpleKey(events.FinalityConflictResolved)
}

// IsValid implements the Scope interface.
func (FinalityConflictResolvedScope) IsValid() error { return nil }

// EventType implements the Scope interface.
func (UtxosChangedScope) EventType() events.Type { return events.UtxosChanged }

// Key implements the Scope interface. Address order and duplicates don't
// matter.
func (s UtxosChangedScope) Key() string {
	var sb strings.Builder
	sb.WriteString(simpleKey(events.UtxosChanged))
	for _, a := range address.NewSet(s.Addresses...).Sorted() {
		sb.WriteByte(':')
		sb.WriteString(a.String())
	}
	return sb.String()
}

// IsValid implements the Scope interface.
func (s UtxosChangedScope) IsValid() error {
	if len(s.Addresses) > MaxUtxosChangedAddresses {
		return fmt.Errorf("%w: too many addresses: %d > %d", ErrInvalidScope, len(s.Addresses), MaxUtxosChangedAddresses)
	}
	for i, a := range s.Addresses {
		if a.IsZero() {
			return fmt.Errorf("%w: empty address at %d", ErrInvalidScope, i)
		}
	}
	return nil
}

// AddressSet returns the set of watched addresses or nil if the scope is
// not filtered by address.
func (s UtxosChangedScope) AddressSet() address.Set {
	if len(s.Addresses) == 0 {
		return nil
	}
	return address.NewSet(s.Addresses...)
}

// EventType implements the Scope interface.
func (SinkBlueScoreChangedScope) EventType() events.Type { return events.SinkBlueScoreChanged }

// Key implements the Scope interface.
func (SinkBlueScoreChangedScope) Key() string { return simpleKey(events.SinkBlueScoreChanged) }

// IsValid implements the Scope interface.
func (SinkBlueScoreChangedScope) IsValid() error { return nil }

// EventType implements the Scope interface.
func (VirtualDaaScoreChangedScope) EventType() events.Type { return events.VirtualDaaScoreChanged }

// Key implements the Scope interface.
func (VirtualDaaScoreChangedScope) Key() string { return simpleKey(events.VirtualDaaScoreChanged) }

// IsValid implements the Scope interface.
func (VirtualDaaScoreChangedScope) IsValid() error { return nil }

// EventType implements the Scope interface.
func (PruningPointUtxoSetOverrideScope) EventType() events.Type {
	return events.PruningPointUtxoSetOverride
}

// Key implements the Scope interface.
func (PruningPointUtxoSetOverrideScope) Key() string {
	return simpleKey(events.PruningPointUtxoSetOverride)
}

// IsValid implements the Scope interface.
func (PruningPointUtxoSetOverrideScope) IsValid() error { return nil }

// EventType implements the Scope interface.
func (NewBlockTemplateScope) EventType() events.Type { return events.NewBlockTemplate }

// Key implements the Scope interface.
func (NewBlockTemplateScope) Key() string { return simpleKey(events.NewBlockTemplate) }

// IsValid implements the Scope interface.
func (NewBlockTemplateScope) IsValid() error { return nil }
