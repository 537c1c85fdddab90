package rpccore

import (
	"github.com/nspcc-dev/dagnotify/pkg/notify/address"
	"github.com/nspcc-dev/dagnotify/pkg/notify/notification"
	"github.com/nspcc-dev/dagnotify/pkg/util"
)

// Requests and responses of the request/response catalogue. Most of them
// only carry what's needed to route the call, node-specific contents are
// opaque to the notification core.
type (
	// GetInfoResponse describes the node.
	GetInfoResponse struct {
		P2PID            string `json:"p2pId"`
		MempoolSize      uint64 `json:"mempoolSize"`
		ServerVersion    string `json:"serverVersion"`
		IsUtxoIndexed    bool   `json:"isUtxoIndexed"`
		IsSynced         bool   `json:"isSynced"`
		HasNotifyCommand bool   `json:"hasNotifyCommand"`
		HasMessageID     bool   `json:"hasMessageId"`
	}

	// ProcessMetrics contains node process resource usage.
	ProcessMetrics struct {
		ResidentSetSize uint64  `json:"residentSetSize"`
		VirtualMemSize  uint64  `json:"virtualMemorySize"`
		CoreNum         uint32  `json:"coreNum"`
		CPUUsage        float32 `json:"cpuUsage"`
		FDNum           uint32  `json:"fdNum"`
		DiskIOReadBytes uint64  `json:"diskIoReadBytes"`
	}

	// SubmitBlockRequest carries a block to be added to the DAG.
	SubmitBlockRequest struct {
		Block             notification.Block `json:"block"`
		AllowNonDAABlocks bool               `json:"allowNonDaaBlocks"`
	}

	// SubmitBlockResponse is the outcome of SubmitBlock.
	SubmitBlockResponse struct {
		Report string `json:"report"`
	}

	// GetBlockTemplateRequest asks for a template paying to the address.
	GetBlockTemplateRequest struct {
		PayAddress address.Address `json:"payAddress"`
		ExtraData  []byte          `json:"extraData"`
	}

	// GetBlockTemplateResponse contains a block template.
	GetBlockTemplateResponse struct {
		Block    notification.Block `json:"block"`
		IsSynced bool               `json:"isSynced"`
	}

	// PeerAddresses lists known and banned peer addresses.
	PeerAddresses struct {
		KnownAddresses  []string `json:"knownAddresses"`
		BannedAddresses []string `json:"bannedAddresses"`
	}

	// MempoolEntry is a transaction in the mempool.
	MempoolEntry struct {
		Fee           uint64    `json:"fee"`
		TransactionID util.Hash `json:"transactionId"`
		IsOrphan      bool      `json:"isOrphan"`
	}

	// MempoolEntriesRequest controls mempool listing.
	MempoolEntriesRequest struct {
		IncludeOrphanPool bool `json:"includeOrphanPool"`
		FilterTxInPool    bool `json:"filterTransactionPool"`
	}

	// MempoolEntriesByAddress groups mempool entries by address.
	MempoolEntriesByAddress struct {
		Address   address.Address `json:"address"`
		Sending   []MempoolEntry  `json:"sending"`
		Receiving []MempoolEntry  `json:"receiving"`
	}

	// PeerInfo describes a connected peer.
	PeerInfo struct {
		ID              string `json:"id"`
		Address         string `json:"address"`
		IsOutbound      bool   `json:"isOutbound"`
		ProtocolVersion uint32 `json:"protocolVersion"`
		UserAgent       string `json:"userAgent"`
	}

	// SubmitTransactionRequest carries a serialized transaction.
	SubmitTransactionRequest struct {
		Transaction []byte `json:"transaction"`
		AllowOrphan bool   `json:"allowOrphan"`
	}

	// GetBlockRequest asks for a block by its hash.
	GetBlockRequest struct {
		Hash                util.Hash `json:"hash"`
		IncludeTransactions bool      `json:"includeTransactions"`
	}

	// GetSubnetworkResponse describes a subnetwork.
	GetSubnetworkResponse struct {
		GasLimit uint64 `json:"gasLimit"`
	}

	// GetVirtualChainFromBlockRequest asks for chain changes since the block.
	GetVirtualChainFromBlockRequest struct {
		StartHash                     util.Hash `json:"startHash"`
		IncludeAcceptedTransactionIDs bool      `json:"includeAcceptedTransactionIds"`
	}

	// GetBlocksRequest asks for blocks starting from the low hash.
	GetBlocksRequest struct {
		LowHash             util.Hash `json:"lowHash"`
		IncludeBlocks       bool      `json:"includeBlocks"`
		IncludeTransactions bool      `json:"includeTransactions"`
	}

	// GetBlocksResponse lists blocks.
	GetBlocksResponse struct {
		BlockHashes []util.Hash          `json:"blockHashes"`
		Blocks      []notification.Block `json:"blocks"`
	}

	// BlockCount contains block and header counts.
	BlockCount struct {
		HeaderCount uint64 `json:"headerCount"`
		BlockCount  uint64 `json:"blockCount"`
	}

	// BlockDAGInfo describes the DAG state.
	BlockDAGInfo struct {
		Network             string      `json:"network"`
		BlockCount          uint64      `json:"blockCount"`
		HeaderCount         uint64      `json:"headerCount"`
		TipHashes           []util.Hash `json:"tipHashes"`
		Difficulty          float64     `json:"difficulty"`
		PastMedianTime      int64       `json:"pastMedianTime"`
		VirtualParentHashes []util.Hash `json:"virtualParentHashes"`
		PruningPointHash    util.Hash   `json:"pruningPointHash"`
		VirtualDaaScore     uint64      `json:"virtualDaaScore"`
		SinkHash            util.Hash   `json:"sinkHash"`
	}

	// GetHeadersRequest asks for headers from the start hash.
	GetHeadersRequest struct {
		StartHash   util.Hash `json:"startHash"`
		Limit       uint64    `json:"limit"`
		IsAscending bool      `json:"isAscending"`
	}

	// Balance is a balance of an address.
	Balance struct {
		Address address.Address `json:"address"`
		Balance uint64          `json:"balance"`
	}

	// EstimateNetworkHashesPerSecondRequest controls the estimation window.
	EstimateNetworkHashesPerSecondRequest struct {
		WindowSize uint32     `json:"windowSize"`
		StartHash  *util.Hash `json:"startHash,omitempty"`
	}

	// CoinSupply contains circulating and maximum supply.
	CoinSupply struct {
		MaxSompi         uint64 `json:"maxSompi"`
		CirculatingSompi uint64 `json:"circulatingSompi"`
	}
)
