/*
Package rpccore defines the node API served over RPC: the request/response
catalogue and the subscription operations backed by the notification core.
*/
package rpccore

import (
	"context"
	"errors"

	"github.com/nspcc-dev/dagnotify/pkg/notify/address"
	"github.com/nspcc-dev/dagnotify/pkg/notify/connection"
	"github.com/nspcc-dev/dagnotify/pkg/notify/listener"
	"github.com/nspcc-dev/dagnotify/pkg/notify/notification"
	"github.com/nspcc-dev/dagnotify/pkg/notify/scope"
	"github.com/nspcc-dev/dagnotify/pkg/util"
)

// ErrNotImplemented is returned by the calls the node has no backing logic
// for. It's terminal for the call, retrying won't help.
var ErrNotImplemented = errors.New("not implemented")

// API is the node capability set exposed to RPC clients.
type API interface {
	GetInfo(ctx context.Context) (*GetInfoResponse, error)
	Ping(ctx context.Context) error
	GetProcessMetrics(ctx context.Context) (*ProcessMetrics, error)
	GetCurrentNetwork(ctx context.Context) (string, error)
	SubmitBlock(ctx context.Context, req *SubmitBlockRequest) (*SubmitBlockResponse, error)
	GetBlockTemplate(ctx context.Context, req *GetBlockTemplateRequest) (*GetBlockTemplateResponse, error)
	GetPeerAddresses(ctx context.Context) (*PeerAddresses, error)
	GetSinkHash(ctx context.Context) (util.Hash, error)
	GetMempoolEntry(ctx context.Context, txID util.Hash, includeOrphanPool bool) (*MempoolEntry, error)
	GetMempoolEntries(ctx context.Context, req *MempoolEntriesRequest) ([]MempoolEntry, error)
	GetConnectedPeerInfo(ctx context.Context) ([]PeerInfo, error)
	AddPeer(ctx context.Context, addr string, isPermanent bool) error
	SubmitTransaction(ctx context.Context, req *SubmitTransactionRequest) (util.Hash, error)
	GetBlock(ctx context.Context, req *GetBlockRequest) (*notification.Block, error)
	GetSubnetwork(ctx context.Context, id util.Hash) (*GetSubnetworkResponse, error)
	GetVirtualChainFromBlock(ctx context.Context, req *GetVirtualChainFromBlockRequest) (*notification.VirtualChainChanged, error)
	GetBlocks(ctx context.Context, req *GetBlocksRequest) (*GetBlocksResponse, error)
	GetBlockCount(ctx context.Context) (*BlockCount, error)
	GetBlockDAGInfo(ctx context.Context) (*BlockDAGInfo, error)
	ResolveFinalityConflict(ctx context.Context, finalityBlockHash util.Hash) error
	Shutdown(ctx context.Context) error
	GetHeaders(ctx context.Context, req *GetHeadersRequest) ([]notification.BlockHeader, error)
	GetBalanceByAddress(ctx context.Context, addr address.Address) (uint64, error)
	GetBalancesByAddresses(ctx context.Context, addrs []address.Address) ([]Balance, error)
	GetUtxosByAddresses(ctx context.Context, addrs []address.Address) ([]notification.UtxosByAddressesEntry, error)
	GetSinkBlueScore(ctx context.Context) (uint64, error)
	Ban(ctx context.Context, ip string) error
	Unban(ctx context.Context, ip string) error
	EstimateNetworkHashesPerSecond(ctx context.Context, req *EstimateNetworkHashesPerSecondRequest) (uint64, error)
	GetMempoolEntriesByAddresses(ctx context.Context, addrs []address.Address, req *MempoolEntriesRequest) ([]MempoolEntriesByAddress, error)
	GetCoinSupply(ctx context.Context) (*CoinSupply, error)

	RegisterNewListener(conn connection.Connection) listener.ID
	UnregisterListener(id listener.ID) error
	StartNotify(id listener.ID, s scope.Scope) error
	StopNotify(id listener.ID, s scope.Scope) error
}
