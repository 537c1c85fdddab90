/*
Package notification contains event payloads delivered to subscribers and
the logic matching them against subscription scopes.
*/
package notification

import (
	"github.com/nspcc-dev/dagnotify/pkg/notify/address"
	"github.com/nspcc-dev/dagnotify/pkg/notify/events"
	"github.com/nspcc-dev/dagnotify/pkg/util"
)

// Notification is an event that can be dispatched to listeners.
type Notification interface {
	EventType() events.Type
}

type (
	// BlockHeader is a subset of block header fields useful for subscribers.
	BlockHeader struct {
		Version              uint16      `json:"version"`
		Parents              []util.Hash `json:"parents"`
		HashMerkleRoot       util.Hash   `json:"hashMerkleRoot"`
		AcceptedIDMerkleRoot util.Hash   `json:"acceptedIdMerkleRoot"`
		UtxoCommitment       util.Hash   `json:"utxoCommitment"`
		Timestamp            int64       `json:"timestamp"`
		Bits                 uint32      `json:"bits"`
		Nonce                uint64      `json:"nonce"`
		DaaScore             uint64      `json:"daaScore"`
		BlueScore            uint64      `json:"blueScore"`
		PruningPoint         util.Hash   `json:"pruningPoint"`
	}

	// Block is an added block.
	Block struct {
		Hash           util.Hash   `json:"hash"`
		Header         BlockHeader `json:"header"`
		TransactionIDs []util.Hash `json:"transactionIds"`
	}

	// Outpoint references a transaction output.
	Outpoint struct {
		TransactionID util.Hash `json:"transactionId"`
		Index         uint32    `json:"index"`
	}

	// UtxoEntry describes an unspent transaction output.
	UtxoEntry struct {
		Amount          uint64 `json:"amount"`
		ScriptPublicKey []byte `json:"scriptPublicKey"`
		BlockDaaScore   uint64 `json:"blockDaaScore"`
		IsCoinbase      bool   `json:"isCoinbase"`
	}

	// UtxosByAddressesEntry is a UTXO set change bound to some address.
	UtxosByAddressesEntry struct {
		Address   address.Address `json:"address"`
		Outpoint  Outpoint        `json:"outpoint"`
		UtxoEntry UtxoEntry       `json:"utxoEntry"`
	}

	// AcceptedTransactionIDs lists transactions accepted by a chain block.
	AcceptedTransactionIDs struct {
		AcceptingBlockHash     util.Hash   `json:"acceptingBlockHash"`
		AcceptedTransactionIDs []util.Hash `json:"acceptedTransactionIds"`
	}
)

type (
	// BlockAdded is emitted for every block added to the DAG.
	BlockAdded struct {
		Block *Block `json:"block"`
	}

	// VirtualChainChanged is emitted when the virtual selected parent chain
	// changes.
	VirtualChainChanged struct {
		RemovedChainBlockHashes []util.Hash              `json:"removedChainBlockHashes"`
		AddedChainBlockHashes   []util.Hash              `json:"addedChainBlockHashes"`
		AcceptedTransactionIDs  []AcceptedTransactionIDs `json:"acceptedTransactionIds,omitempty"`
	}

	// FinalityConflict is emitted when a block violating finality is found.
	FinalityConflict struct {
		ViolatingBlockHash util.Hash `json:"violatingBlockHash"`
	}

	// FinalityConflictResolved is emitted when a finality conflict is
	// resolved.
	FinalityConflictResolved struct {
		FinalityBlockHash util.Hash `json:"finalityBlockHash"`
	}

	// UtxosChanged is emitted on UTXO set changes.
	UtxosChanged struct {
		Added   []UtxosByAddressesEntry `json:"added"`
		Removed []UtxosByAddressesEntry `json:"removed"`
	}

	// SinkBlueScoreChanged is emitted when the sink blue score changes.
	SinkBlueScoreChanged struct {
		SinkBlueScore uint64 `json:"sinkBlueScore"`
	}

	// VirtualDaaScoreChanged is emitted when the virtual DAA score changes.
	VirtualDaaScoreChanged struct {
		VirtualDaaScore uint64 `json:"virtualDaaScore"`
	}

	// PruningPointUtxoSetOverride is emitted when the UTXO set is replaced
	// by the pruning point one.
	PruningPointUtxoSetOverride struct{}

	// NewBlockTemplate is emitted when a new block template is available.
	NewBlockTemplate struct{}

	// Missed tells the subscriber it has lost some events.
	Missed struct{}
)

// EventType implements the Notification interface.
func (*BlockAdded) EventType() events.Type { return events.BlockAdded }

// EventType implements the Notification interface.
func (*VirtualChainChanged) EventType() events.Type { return events.VirtualChainChanged }

// EventType implements the Notification interface.
func (*FinalityConflict) EventType() events.Type { return events.FinalityConflict }

// EventType implements the Notification interface.
func (*FinalityConflictResolved) EventType() events.Type { return events.FinalityConflictResolved }

// EventType implements the Notification interface.
func (*UtxosChanged) EventType() events.Type { return events.UtxosChanged }

// EventType implements the Notification interface.
func (*SinkBlueScoreChanged) EventType() events.Type { return events.SinkBlueScoreChanged }

// EventType implements the Notification interface.
func (*VirtualDaaScoreChanged) EventType() events.Type { return events.VirtualDaaScoreChanged }

// EventType implements the Notification interface.
func (*PruningPointUtxoSetOverride) EventType() events.Type {
	return events.PruningPointUtxoSetOverride
}

// EventType implements the Notification interface.
func (*NewBlockTemplate) EventType() events.Type { return events.NewBlockTemplate }

// EventType implements the Notification interface.
func (*Missed) EventType() events.Type { return events.Missed }
