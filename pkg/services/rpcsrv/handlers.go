package rpcsrv

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/nspcc-dev/dagnotify/pkg/dagrpc"
	"github.com/nspcc-dev/dagnotify/pkg/notify/address"
	"github.com/nspcc-dev/dagnotify/pkg/rpccore"
	"github.com/nspcc-dev/dagnotify/pkg/services/rpcsrv/params"
	"github.com/nspcc-dev/dagnotify/pkg/util"
)

var rpcHandlers = map[string]func(*Server, params.Params) (any, *dagrpc.Error){
	"addpeer":                        (*Server).addPeer,
	"ban":                            (*Server).ban,
	"estimatenetworkhashespersecond": (*Server).estimateNetworkHashesPerSecond,
	"getbalancebyaddress":            (*Server).getBalanceByAddress,
	"getbalancesbyaddresses":         (*Server).getBalancesByAddresses,
	"getblock":                       (*Server).getBlock,
	"getblockcount":                  (*Server).getBlockCount,
	"getblockdaginfo":                (*Server).getBlockDAGInfo,
	"getblocks":                      (*Server).getBlocks,
	"getblocktemplate":               (*Server).getBlockTemplate,
	"getcoinsupply":                  (*Server).getCoinSupply,
	"getconnectedpeerinfo":           (*Server).getConnectedPeerInfo,
	"getcurrentnetwork":              (*Server).getCurrentNetwork,
	"getheaders":                     (*Server).getHeaders,
	"getinfo":                        (*Server).getInfo,
	"getmempoolentries":              (*Server).getMempoolEntries,
	"getmempoolentriesbyaddresses":   (*Server).getMempoolEntriesByAddresses,
	"getmempoolentry":                (*Server).getMempoolEntry,
	"getpeeraddresses":               (*Server).getPeerAddresses,
	"getprocessmetrics":              (*Server).getProcessMetrics,
	"getsinkbluescore":               (*Server).getSinkBlueScore,
	"getsinkhash":                    (*Server).getSinkHash,
	"getsubnetwork":                  (*Server).getSubnetwork,
	"getutxosbyaddresses":            (*Server).getUtxosByAddresses,
	"getvirtualchainfromblock":       (*Server).getVirtualChainFromBlock,
	"ping":                           (*Server).ping,
	"resolvefinalityconflict":        (*Server).resolveFinalityConflict,
	"shutdown":                       (*Server).shutdownNode,
	"submitblock":                    (*Server).submitBlock,
	"submittransaction":              (*Server).submitTransaction,
	"unban":                          (*Server).unban,
}

// objectParam decodes an optional JSON object parameter into v, unknown
// fields are not allowed.
func objectParam(ps params.Params, index int, v any) *dagrpc.Error {
	p := ps.Value(index)
	if p == nil || p.IsNull() {
		return nil
	}
	jd := json.NewDecoder(bytes.NewReader(p.RawMessage))
	jd.DisallowUnknownFields()
	if err := jd.Decode(v); err != nil {
		return dagrpc.WrapErrorWithData(dagrpc.ErrInvalidParams, err.Error())
	}
	return nil
}

// boolParam returns an optional boolean parameter, missing means false.
func boolParam(ps params.Params, index int) (bool, *dagrpc.Error) {
	p := ps.Value(index)
	if p == nil {
		return false, nil
	}
	b, err := p.GetBooleanStrict()
	if err != nil {
		return false, dagrpc.WrapErrorWithData(dagrpc.ErrInvalidParams, err.Error())
	}
	return b, nil
}

func hashParam(ps params.Params, index int) (util.Hash, *dagrpc.Error) {
	h, err := ps.Value(index).GetHash()
	if err != nil {
		return util.Hash{}, dagrpc.WrapErrorWithData(dagrpc.ErrInvalidParams, err.Error())
	}
	return h, nil
}

func stringParam(ps params.Params, index int) (string, *dagrpc.Error) {
	s, err := ps.Value(index).GetStringStrict()
	if err != nil {
		return "", dagrpc.WrapErrorWithData(dagrpc.ErrInvalidParams, err.Error())
	}
	return s, nil
}

func addressesParam(ps params.Params, index int) ([]address.Address, *dagrpc.Error) {
	addrs, err := ps.Value(index).GetAddresses()
	if err != nil {
		return nil, dagrpc.WrapErrorWithData(dagrpc.ErrInvalidParams, err.Error())
	}
	return addrs, nil
}

func (s *Server) getInfo(_ params.Params) (any, *dagrpc.Error) {
	res, err := s.api.GetInfo(s.ctx)
	return res, apiError(err)
}

func (s *Server) ping(_ params.Params) (any, *dagrpc.Error) {
	if err := s.api.Ping(s.ctx); err != nil {
		return nil, apiError(err)
	}
	return true, nil
}

func (s *Server) getProcessMetrics(_ params.Params) (any, *dagrpc.Error) {
	res, err := s.api.GetProcessMetrics(s.ctx)
	return res, apiError(err)
}

func (s *Server) getCurrentNetwork(_ params.Params) (any, *dagrpc.Error) {
	res, err := s.api.GetCurrentNetwork(s.ctx)
	return res, apiError(err)
}

func (s *Server) submitBlock(ps params.Params) (any, *dagrpc.Error) {
	req := new(rpccore.SubmitBlockRequest)
	if respErr := objectParam(ps, 0, req); respErr != nil {
		return nil, respErr
	}
	res, err := s.api.SubmitBlock(s.ctx, req)
	return res, apiError(err)
}

func (s *Server) getBlockTemplate(ps params.Params) (any, *dagrpc.Error) {
	req := new(rpccore.GetBlockTemplateRequest)
	if respErr := objectParam(ps, 0, req); respErr != nil {
		return nil, respErr
	}
	res, err := s.api.GetBlockTemplate(s.ctx, req)
	return res, apiError(err)
}

func (s *Server) getPeerAddresses(_ params.Params) (any, *dagrpc.Error) {
	res, err := s.api.GetPeerAddresses(s.ctx)
	return res, apiError(err)
}

func (s *Server) getSinkHash(_ params.Params) (any, *dagrpc.Error) {
	res, err := s.api.GetSinkHash(s.ctx)
	return res, apiError(err)
}

func (s *Server) getMempoolEntry(ps params.Params) (any, *dagrpc.Error) {
	txID, respErr := hashParam(ps, 0)
	if respErr != nil {
		return nil, respErr
	}
	includeOrphans, respErr := boolParam(ps, 1)
	if respErr != nil {
		return nil, respErr
	}
	res, err := s.api.GetMempoolEntry(s.ctx, txID, includeOrphans)
	return res, apiError(err)
}

func (s *Server) getMempoolEntries(ps params.Params) (any, *dagrpc.Error) {
	req := new(rpccore.MempoolEntriesRequest)
	if respErr := objectParam(ps, 0, req); respErr != nil {
		return nil, respErr
	}
	res, err := s.api.GetMempoolEntries(s.ctx, req)
	return res, apiError(err)
}

func (s *Server) getConnectedPeerInfo(_ params.Params) (any, *dagrpc.Error) {
	res, err := s.api.GetConnectedPeerInfo(s.ctx)
	return res, apiError(err)
}

func (s *Server) addPeer(ps params.Params) (any, *dagrpc.Error) {
	addr, respErr := stringParam(ps, 0)
	if respErr != nil {
		return nil, respErr
	}
	permanent, respErr := boolParam(ps, 1)
	if respErr != nil {
		return nil, respErr
	}
	if err := s.api.AddPeer(s.ctx, addr, permanent); err != nil {
		return nil, apiError(err)
	}
	return true, nil
}

func (s *Server) submitTransaction(ps params.Params) (any, *dagrpc.Error) {
	req := new(rpccore.SubmitTransactionRequest)
	if respErr := objectParam(ps, 0, req); respErr != nil {
		return nil, respErr
	}
	res, err := s.api.SubmitTransaction(s.ctx, req)
	return res, apiError(err)
}

func (s *Server) getBlock(ps params.Params) (any, *dagrpc.Error) {
	h, respErr := hashParam(ps, 0)
	if respErr != nil {
		return nil, respErr
	}
	includeTxs, respErr := boolParam(ps, 1)
	if respErr != nil {
		return nil, respErr
	}
	res, err := s.api.GetBlock(s.ctx, &rpccore.GetBlockRequest{Hash: h, IncludeTransactions: includeTxs})
	return res, apiError(err)
}

func (s *Server) getSubnetwork(ps params.Params) (any, *dagrpc.Error) {
	id, respErr := hashParam(ps, 0)
	if respErr != nil {
		return nil, respErr
	}
	res, err := s.api.GetSubnetwork(s.ctx, id)
	return res, apiError(err)
}

func (s *Server) getVirtualChainFromBlock(ps params.Params) (any, *dagrpc.Error) {
	h, respErr := hashParam(ps, 0)
	if respErr != nil {
		return nil, respErr
	}
	includeIDs, respErr := boolParam(ps, 1)
	if respErr != nil {
		return nil, respErr
	}
	res, err := s.api.GetVirtualChainFromBlock(s.ctx, &rpccore.GetVirtualChainFromBlockRequest{
		StartHash:                     h,
		IncludeAcceptedTransactionIDs: includeIDs,
	})
	return res, apiError(err)
}

func (s *Server) getBlocks(ps params.Params) (any, *dagrpc.Error) {
	req := new(rpccore.GetBlocksRequest)
	if respErr := objectParam(ps, 0, req); respErr != nil {
		return nil, respErr
	}
	res, err := s.api.GetBlocks(s.ctx, req)
	return res, apiError(err)
}

func (s *Server) getBlockCount(_ params.Params) (any, *dagrpc.Error) {
	res, err := s.api.GetBlockCount(s.ctx)
	return res, apiError(err)
}

func (s *Server) getBlockDAGInfo(_ params.Params) (any, *dagrpc.Error) {
	res, err := s.api.GetBlockDAGInfo(s.ctx)
	return res, apiError(err)
}

func (s *Server) resolveFinalityConflict(ps params.Params) (any, *dagrpc.Error) {
	h, respErr := hashParam(ps, 0)
	if respErr != nil {
		return nil, respErr
	}
	if err := s.api.ResolveFinalityConflict(s.ctx, h); err != nil {
		return nil, apiError(err)
	}
	return true, nil
}

func (s *Server) shutdownNode(_ params.Params) (any, *dagrpc.Error) {
	if err := s.api.Shutdown(s.ctx); err != nil {
		return nil, apiError(err)
	}
	return true, nil
}

// getHeaders takes the start hash, an optional limit and an optional
// direction flag.
func (s *Server) getHeaders(ps params.Params) (any, *dagrpc.Error) {
	h, respErr := hashParam(ps, 0)
	if respErr != nil {
		return nil, respErr
	}
	req := &rpccore.GetHeadersRequest{StartHash: h}
	if p := ps.Value(1); p != nil {
		limit, err := p.GetInt()
		if err != nil || limit < 0 {
			return nil, dagrpc.WrapErrorWithData(dagrpc.ErrInvalidParams, "invalid limit")
		}
		req.Limit = uint64(limit)
	}
	if p := ps.Value(2); p != nil {
		asc, err := p.GetBoolean()
		if err != nil {
			return nil, dagrpc.WrapErrorWithData(dagrpc.ErrInvalidParams, err.Error())
		}
		req.IsAscending = asc
	}
	res, err := s.api.GetHeaders(s.ctx, req)
	return res, apiError(err)
}

func (s *Server) getBalanceByAddress(ps params.Params) (any, *dagrpc.Error) {
	addr, err := ps.Value(0).GetAddress()
	if err != nil {
		return nil, dagrpc.WrapErrorWithData(dagrpc.ErrInvalidParams, err.Error())
	}
	res, err := s.api.GetBalanceByAddress(s.ctx, addr)
	return res, apiError(err)
}

func (s *Server) getBalancesByAddresses(ps params.Params) (any, *dagrpc.Error) {
	addrs, respErr := addressesParam(ps, 0)
	if respErr != nil {
		return nil, respErr
	}
	res, err := s.api.GetBalancesByAddresses(s.ctx, addrs)
	return res, apiError(err)
}

func (s *Server) getUtxosByAddresses(ps params.Params) (any, *dagrpc.Error) {
	addrs, respErr := addressesParam(ps, 0)
	if respErr != nil {
		return nil, respErr
	}
	res, err := s.api.GetUtxosByAddresses(s.ctx, addrs)
	return res, apiError(err)
}

func (s *Server) getSinkBlueScore(_ params.Params) (any, *dagrpc.Error) {
	res, err := s.api.GetSinkBlueScore(s.ctx)
	return res, apiError(err)
}

func (s *Server) ban(ps params.Params) (any, *dagrpc.Error) {
	ip, respErr := stringParam(ps, 0)
	if respErr != nil {
		return nil, respErr
	}
	if err := s.api.Ban(s.ctx, ip); err != nil {
		return nil, apiError(err)
	}
	return true, nil
}

func (s *Server) unban(ps params.Params) (any, *dagrpc.Error) {
	ip, respErr := stringParam(ps, 0)
	if respErr != nil {
		return nil, respErr
	}
	if err := s.api.Unban(s.ctx, ip); err != nil {
		return nil, apiError(err)
	}
	return true, nil
}

// estimateNetworkHashesPerSecond takes the window size and an optional
// start hash.
func (s *Server) estimateNetworkHashesPerSecond(ps params.Params) (any, *dagrpc.Error) {
	window, err := ps.Value(0).GetIntStrict()
	if err != nil || window < 0 || int64(window) > math.MaxUint32 {
		return nil, dagrpc.WrapErrorWithData(dagrpc.ErrInvalidParams, "invalid window size")
	}
	req := &rpccore.EstimateNetworkHashesPerSecondRequest{WindowSize: uint32(window)}
	if p := ps.Value(1); p != nil && !p.IsNull() {
		h, respErr := hashParam(ps, 1)
		if respErr != nil {
			return nil, respErr
		}
		req.StartHash = &h
	}
	res, err := s.api.EstimateNetworkHashesPerSecond(s.ctx, req)
	return res, apiError(err)
}

func (s *Server) getMempoolEntriesByAddresses(ps params.Params) (any, *dagrpc.Error) {
	addrs, respErr := addressesParam(ps, 0)
	if respErr != nil {
		return nil, respErr
	}
	req := new(rpccore.MempoolEntriesRequest)
	if respErr := objectParam(ps, 1, req); respErr != nil {
		return nil, respErr
	}
	res, err := s.api.GetMempoolEntriesByAddresses(s.ctx, addrs, req)
	return res, apiError(err)
}

func (s *Server) getCoinSupply(_ params.Params) (any, *dagrpc.Error) {
	res, err := s.api.GetCoinSupply(s.ctx)
	return res, apiError(err)
}
