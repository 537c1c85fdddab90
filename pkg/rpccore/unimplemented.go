package rpccore

import (
	"context"

	"github.com/nspcc-dev/dagnotify/pkg/notify/address"
	"github.com/nspcc-dev/dagnotify/pkg/notify/notification"
	"github.com/nspcc-dev/dagnotify/pkg/util"
)

// Unimplemented returns ErrNotImplemented from every catalogue call. It's
// to be embedded into API implementations that only back a part of it.
type Unimplemented struct{}

// GetInfo implements the API interface.
func (Unimplemented) GetInfo(context.Context) (*GetInfoResponse, error) {
	return nil, ErrNotImplemented
}

// Ping implements the API interface.
func (Unimplemented) Ping(context.Context) error {
	return ErrNotImplemented
}

// GetProcessMetrics implements the API interface.
func (Unimplemented) GetProcessMetrics(context.Context) (*ProcessMetrics, error) {
	return nil, ErrNotImplemented
}

// GetCurrentNetwork implements the API interface.
func (Unimplemented) GetCurrentNetwork(context.Context) (string, error) {
	return "", ErrNotImplemented
}

// SubmitBlock implements the API interface.
func (Unimplemented) SubmitBlock(context.Context, *SubmitBlockRequest) (*SubmitBlockResponse, error) {
	return nil, ErrNotImplemented
}

// GetBlockTemplate implements the API interface.
func (Unimplemented) GetBlockTemplate(context.Context, *GetBlockTemplateRequest) (*GetBlockTemplateResponse, error) {
	return nil, ErrNotImplemented
}

// GetPeerAddresses implements the API interface.
func (Unimplemented) GetPeerAddresses(context.Context) (*PeerAddresses, error) {
	return nil, ErrNotImplemented
}

// GetSinkHash implements the API interface.
func (Unimplemented) GetSinkHash(context.Context) (util.Hash, error) {
	return util.Hash{}, ErrNotImplemented
}

// GetMempoolEntry implements the API interface.
func (Unimplemented) GetMempoolEntry(context.Context, util.Hash, bool) (*MempoolEntry, error) {
	return nil, ErrNotImplemented
}

// GetMempoolEntries implements the API interface.
func (Unimplemented) GetMempoolEntries(context.Context, *MempoolEntriesRequest) ([]MempoolEntry, error) {
	return nil, ErrNotImplemented
}

// GetConnectedPeerInfo implements the API interface.
func (Unimplemented) GetConnectedPeerInfo(context.Context) ([]PeerInfo, error) {
	return nil, ErrNotImplemented
}

// AddPeer implements the API interface.
func (Unimplemented) AddPeer(context.Context, string, bool) error {
	return ErrNotImplemented
}

// SubmitTransaction implements the API interface.
func (Unimplemented) SubmitTransaction(context.Context, *SubmitTransactionRequest) (util.Hash, error) {
	return util.Hash{}, ErrNotImplemented
}

// GetBlock implements the API interface.
func (Unimplemented) GetBlock(context.Context, *GetBlockRequest) (*notification.Block, error) {
	return nil, ErrNotImplemented
}

// GetSubnetwork implements the API interface.
func (Unimplemented) GetSubnetwork(context.Context, util.Hash) (*GetSubnetworkResponse, error) {
	return nil, ErrNotImplemented
}

// GetVirtualChainFromBlock implements the API interface.
func (Unimplemented) GetVirtualChainFromBlock(context.Context, *GetVirtualChainFromBlockRequest) (*notification.VirtualChainChanged, error) {
	return nil, ErrNotImplemented
}

// GetBlocks implements the API interface.
func (Unimplemented) GetBlocks(context.Context, *GetBlocksRequest) (*GetBlocksResponse, error) {
	return nil, ErrNotImplemented
}

// GetBlockCount implements the API interface.
func (Unimplemented) GetBlockCount(context.Context) (*BlockCount, error) {
	return nil, ErrNotImplemented
}

// GetBlockDAGInfo implements the API interface.
func (Unimplemented) GetBlockDAGInfo(context.Context) (*BlockDAGInfo, error) {
	return nil, ErrNotImplemented
}

// ResolveFinalityConflict implements the API interface.
func (Unimplemented) ResolveFinalityConflict(context.Context, util.Hash) error {
	return ErrNotImplemented
}

// Shutdown implements the API interface.
func (Unimplemented) Shutdown(context.Context) error {
	return ErrNotImplemented
}

// GetHeaders implements the API interface.
func (Unimplemented) GetHeaders(context.Context, *GetHeadersRequest) ([]notification.BlockHeader, error) {
	return nil, ErrNotImplemented
}

// GetBalanceByAddress implements the API interface.
func (Unimplemented) GetBalanceByAddress(context.Context, address.Address) (uint64, error) {
	return 0, ErrNotImplemented
}

// GetBalancesByAddresses implements the API interface.
func (Unimplemented) GetBalancesByAddresses(context.Context, []address.Address) ([]Balance, error) {
	return nil, ErrNotImplemented
}

// GetUtxosByAddresses implements the API interface.
func (Unimplemented) GetUtxosByAddresses(context.Context, []address.Address) ([]notification.UtxosByAddressesEntry, error) {
	return nil, ErrNotImplemented
}

// GetSinkBlueScore implements the API interface.
func (Unimplemented) GetSinkBlueScore(context.Context) (uint64, error) {
	return 0, ErrNotImplemented
}

// Ban implements the API interface.
func (Unimplemented) Ban(context.Context, string) error {
	return ErrNotImplemented
}

// Unban implements the API interface.
func (Unimplemented) Unban(context.Context, string) error {
	return ErrNotImplemented
}

// EstimateNetworkHashesPerSecond implements the API interface.
func (Unimplemented) EstimateNetworkHashesPerSecond(context.Context, *EstimateNetworkHashesPerSecondRequest) (uint64, error) {
	return 0, ErrNotImplemented
}

// GetMempoolEntriesByAddresses implements the API interface.
func (Unimplemented) GetMempoolEntriesByAddresses(context.Context, []address.Address, *MempoolEntriesRequest) ([]MempoolEntriesByAddress, error) {
	return nil, ErrNotImplemented
}

// GetCoinSupply implements the API interface.
func (Unimplemented) GetCoinSupply(context.Context) (*CoinSupply, error) {
	return nil, ErrNotImplemented
}
