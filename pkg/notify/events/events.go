/*
Package events defines the closed catalogue of event categories the node
can ever emit to its notification subscribers.
*/
package events

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Type represents an event category happening in the DAG.
type Type byte

const (
	// Invalid is an invalid event type that is the default value of Type.
	// It's only used as an initial value similar to nil.
	Invalid Type = iota
	// BlockAdded is a `block_added` event.
	BlockAdded
	// VirtualChainChanged is a `virtual_chain_changed` event.
	VirtualChainChanged
	// FinalityConflict is a `finality_conflict` event.
	FinalityConflict
	// FinalityConflictResolved is a `finality_conflict_resolved` event.
	FinalityConflictResolved
	// UtxosChanged is a `utxos_changed` event.
	UtxosChanged
	// SinkBlueScoreChanged is a `sink_blue_score_changed` event.
	SinkBlueScoreChanged
	// VirtualDaaScoreChanged is a `virtual_daa_score_changed` event.
	VirtualDaaScoreChanged
	// PruningPointUtxoSetOverride is a `pruning_point_utxo_set_override` event.
	PruningPointUtxoSetOverride
	// NewBlockTemplate is a `new_block_template` event.
	NewBlockTemplate

	// count is the number of valid catalogue entries plus one.
	count

	// Missed notifies user of missed events. It's not a part of the
	// catalogue and can't be subscribed to, it's generated by the transport
	// when a subscriber can't keep up.
	Missed Type = 255
)

// ErrUnknown is returned for event names and values outside of the catalogue.
var ErrUnknown = errors.New("unknown event type")

// All contains every event type of the catalogue in its natural order.
var All = [...]Type{
	BlockAdded,
	VirtualChainChanged,
	FinalityConflict,
	FinalityConflictResolved,
	UtxosChanged,
	SinkBlueScoreChanged,
	VirtualDaaScoreChanged,
	PruningPointUtxoSetOverride,
	NewBlockTemplate,
}

// String is a good old Stringer implementation.
func (t Type) String() string {
	switch t {
	case BlockAdded:
		return "block_added"
	case VirtualChainChanged:
		return "virtual_chain_changed"
	case FinalityConflict:
		return "finality_conflict"
	case FinalityConflictResolved:
		return "finality_conflict_resolved"
	case UtxosChanged:
		return "utxos_changed"
	case SinkBlueScoreChanged:
		return "sink_blue_score_changed"
	case VirtualDaaScoreChanged:
		return "virtual_daa_score_changed"
	case PruningPointUtxoSetOverride:
		return "pruning_point_utxo_set_override"
	case NewBlockTemplate:
		return "new_block_template"
	case Missed:
		return "event_missed"
	default:
		return "unknown"
	}
}

// IsValid returns true if t belongs to the catalogue.
func (t Type) IsValid() bool {
	return t > Invalid && t < count
}

// FromString converts input string into a Type if it's possible.
func FromString(s string) (Type, error) {
	switch s {
	case "block_added":
		return BlockAdded, nil
	case "virtual_chain_changed":
		return VirtualChainChanged, nil
	case "finality_conflict":
		return FinalityConflict, nil
	case "finality_conflict_resolved":
		return FinalityConflictResolved, nil
	case "utxos_changed":
		return UtxosChanged, nil
	case "sink_blue_score_changed":
		return SinkBlueScoreChanged, nil
	case "virtual_daa_score_changed":
		return VirtualDaaScoreChanged, nil
	case "pruning_point_utxo_set_override":
		return PruningPointUtxoSetOverride, nil
	case "new_block_template":
		return NewBlockTemplate, nil
	case "event_missed":
		return Missed, nil
	default:
		return Invalid, fmt.Errorf("%w: %q", ErrUnknown, s)
	}
}

// MarshalJSON implements the json.Marshaler interface.
func (t Type) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (t *Type) UnmarshalJSON(b []byte) error {
	var s string

	err := json.Unmarshal(b, &s)
	if err != nil {
		return err
	}
	id, err := FromString(s)
	if err != nil {
		return err
	}
	*t = id
	return nil
}

// Set is a set of catalogue event types, it's used to enable or disable
// events for a notifier.
type Set uint16

// NewSet creates a Set containing the given types. Types outside of the
// catalogue are ignored.
func NewSet(types ...Type) Set {
	var s Set
	for _, t := range types {
		s = s.With(t)
	}
	return s
}

// FullSet returns a Set with every catalogue event type enabled.
func FullSet() Set {
	return NewSet(All[:]...)
}

// ParseSet converts a list of event names into a Set. An empty list
// results in a full set.
func ParseSet(names []string) (Set, error) {
	if len(names) == 0 {
		return FullSet(), nil
	}
	var s Set
	for _, name := range names {
		t, err := FromString(name)
		if err != nil {
			return 0, err
		}
		if !t.IsValid() {
			return 0, fmt.Errorf("%w: %q can't be enabled", ErrUnknown, name)
		}
		s = s.With(t)
	}
	return s, nil
}

// With returns a copy of s with t added.
func (s Set) With(t Type) Set {
	if !t.IsValid() {
		return s
	}
	return s | 1<<t
}

// Has checks whether t is in the set.
func (s Set) Has(t Type) bool {
	return t.IsValid() && s&(1<<t) != 0
}

// Types returns the list of set members in catalogue order.
func (s Set) Types() []Type {
	var res []Type
	for _, t := range All {
		if s.Has(t) {
			res = append(res, t)
		}
	}
	return res
}
