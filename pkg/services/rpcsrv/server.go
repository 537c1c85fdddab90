package rpcsrv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nspcc-dev/dagnotify/pkg/config"
	"github.com/nspcc-dev/dagnotify/pkg/dagrpc"
	"github.com/nspcc-dev/dagnotify/pkg/notify/events"
	"github.com/nspcc-dev/dagnotify/pkg/notify/listener"
	"github.com/nspcc-dev/dagnotify/pkg/notify/notifier"
	"github.com/nspcc-dev/dagnotify/pkg/notify/scope"
	"github.com/nspcc-dev/dagnotify/pkg/rpccore"
	"github.com/nspcc-dev/dagnotify/pkg/services/rpcsrv/params"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

type (
	// Server represents the JSON-RPC 2.0 server.
	Server struct {
		http   []*http.Server
		api    rpccore.API
		config config.RPC
		// wsReadLimit represents web-socket message limit for a receiving side.
		wsReadLimit int64
		upgrader    websocket.Upgrader
		log         *zap.Logger
		// ctx is passed to API calls, it's canceled on shutdown.
		ctx         context.Context
		cancel      context.CancelFunc
		shutdown    chan struct{}
		started     *atomic.Bool
		errChan     chan error
		overflowMsg *websocket.PreparedMessage

		subsLock    sync.RWMutex
		subscribers map[*subscriber]bool
	}
)

const (
	// Disconnection timeout.
	wsPongLimit = 60 * time.Second

	// Ping period for connection liveness check.
	wsPingPeriod = wsPongLimit / 2

	// Write deadline.
	wsWriteLimit = wsPingPeriod / 2

	// Default maximum request body size.
	defaultMaxRequestBodyBytes = 5 * 1024 * 1024
)

var rpcWsHandlers = map[string]func(*Server, params.Params, *subscriber) (any, *dagrpc.Error){
	"subscribe":   (*Server).subscribe,
	"unsubscribe": (*Server).unsubscribe,
}

// New creates a new Server struct. Errors of the running server are reported
// via errChan.
func New(api rpccore.API, conf config.RPC, log *zap.Logger, errChan chan error) Server {
	addrs := conf.GetAddresses()
	httpServers := make([]*http.Server, len(addrs))
	for i, addr := range addrs {
		httpServers[i] = &http.Server{
			Addr: addr,
		}
	}

	if conf.MaxWebSocketClients == 0 {
		conf.MaxWebSocketClients = config.DefaultMaxWebSocketClients
		log.Info("MaxWebSocketClients is not set or wrong, setting default value", zap.Int("MaxWebSocketClients", config.DefaultMaxWebSocketClients))
	}
	if conf.MaxRequestBodyBytes <= 0 {
		conf.MaxRequestBodyBytes = defaultMaxRequestBodyBytes
		log.Info("MaxRequestBodyBytes is not set or wrong, setting default value", zap.Int("MaxRequestBodyBytes", defaultMaxRequestBodyBytes))
	}
	if conf.SubscriptionBufferSize <= 0 {
		conf.SubscriptionBufferSize = config.DefaultListenerBufferSize
		log.Info("SubscriptionBufferSize is not set or wrong, setting default value", zap.Int("SubscriptionBufferSize", config.DefaultListenerBufferSize))
	}
	var wsOriginChecker func(*http.Request) bool
	if conf.EnableCORSWorkaround {
		wsOriginChecker = func(_ *http.Request) bool { return true }
	}
	overflowMsg, err := newOverflowMessage()
	if err != nil {
		// Can only happen if Notification marshaling is broken.
		panic(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return Server{
		http:        httpServers,
		api:         api,
		config:      conf,
		wsReadLimit: int64(conf.MaxRequestBodyBytes),
		upgrader:    websocket.Upgrader{CheckOrigin: wsOriginChecker},
		log:         log,
		ctx:         ctx,
		cancel:      cancel,
		shutdown:    make(chan struct{}),
		started:     atomic.NewBool(false),
		errChan:     errChan,
		overflowMsg: overflowMsg,

		subscribers: make(map[*subscriber]bool),
	}
}

// Name returns service name.
func (s *Server) Name() string {
	return "rpc"
}

// Addresses returns the list of addresses the server listens on, the actual
// ones are only known after Start.
func (s *Server) Addresses() []string {
	res := make([]string, len(s.http))
	for i, srv := range s.http {
		res[i] = srv.Addr
	}
	return res
}

// Start creates a new JSON-RPC server listening on the configured ports. It
// returns errors of the listeners via errChan passed to New(). The Server
// only starts once, subsequent calls to Start are no-op.
func (s *Server) Start() {
	if !s.config.Enabled {
		s.log.Info("RPC server is not enabled")
		return
	}
	if !s.started.CAS(false, true) {
		s.log.Info("RPC server already started")
		return
	}
	for _, srv := range s.http {
		srv.Handler = http.HandlerFunc(s.handleHTTPRequest)
		s.log.Info("starting rpc-server", zap.String("endpoint", srv.Addr))

		ln, err := net.Listen("tcp", srv.Addr)
		if err != nil {
			s.errChan <- fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
			return
		}
		srv.Addr = ln.Addr().String() // set Addr to the actual address
		go func(server *http.Server) {
			err := server.Serve(ln)
			if !errors.Is(err, http.ErrServerClosed) {
				s.log.Error("failed to start RPC server", zap.Error(err))
				s.errChan <- err
			}
		}(srv)
	}
}

// Shutdown stops the RPC server if it's running. It can only be called once,
// subsequent calls to Shutdown on the same instance are no-op. The instance
// that was stopped can not be started again by calling Start (use a new
// instance if needed). The notifier is not stopped, it's owned by the caller.
func (s *Server) Shutdown() {
	if !s.started.CAS(true, false) {
		return
	}
	// Signal to websocket writer routines.
	close(s.shutdown)
	s.cancel()

	for _, srv := range s.http {
		s.log.Info("shutting down RPC server", zap.String("endpoint", srv.Addr))
		err := srv.Shutdown(context.Background())
		if err != nil {
			s.log.Warn("error during RPC (http) server shutdown", zap.Error(err))
		}
	}
}

func (s *Server) handleHTTPRequest(w http.ResponseWriter, httpRequest *http.Request) {
	req := params.NewRequest()

	if httpRequest.URL.Path == "/ws" && httpRequest.Method == "GET" {
		// Technically there is a race between this check and
		// s.subscribers modification below, but it's tiny
		// and not really critical to bother with it. Some additional
		// clients may sneak in, no big deal.
		s.subsLock.RLock()
		numOfSubs := len(s.subscribers)
		s.subsLock.RUnlock()
		if numOfSubs >= s.config.MaxWebSocketClients {
			s.writeHTTPErrorResponse(
				params.NewIn(),
				w,
				dagrpc.NewInternalServerError("websocket users limit reached"),
			)
			return
		}
		ws, err := s.upgrader.Upgrade(w, httpRequest, nil)
		if err != nil {
			s.log.Info("websocket connection upgrade failed", zap.Error(err))
			return
		}
		resChan := make(chan abstractResult) // response.abstract or response.abstractBatch
		subChan := make(chan *websocket.PreparedMessage, s.config.SubscriptionBufferSize)
		subscr := newSubscriber(subChan, s.overflowMsg)
		subscr.id = s.api.RegisterNewListener(subscr)
		log := s.log.With(zap.Stringer("session", subscr.session), zap.Stringer("listener", subscr.id))
		if subscr.id == listener.InvalidID {
			log.Info("websocket client rejected, node is shutting down")
			ws.Close()
			return
		}
		s.subsLock.Lock()
		s.subscribers[subscr] = true
		s.subsLock.Unlock()
		log.Debug("websocket client connected", zap.String("remote", ws.RemoteAddr().String()))
		go s.handleWsWrites(ws, resChan, subscr)
		s.handleWsReads(ws, resChan, subscr, log)
		return
	}

	if httpRequest.Method == "OPTIONS" && s.config.EnableCORSWorkaround { // Preflight CORS.
		setCORSOriginHeaders(w.Header())
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST") // GET for websockets.
		w.Header().Set("Access-Control-Max-Age", "21600")           // 6 hours.
		return
	}

	if httpRequest.Method != "POST" {
		s.writeHTTPErrorResponse(
			params.NewIn(),
			w,
			dagrpc.NewInvalidParamsError(fmt.Sprintf("invalid method '%s', please retry with 'POST'", httpRequest.Method)),
		)
		return
	}

	httpRequest.Body = http.MaxBytesReader(w, httpRequest.Body, int64(s.config.MaxRequestBodyBytes))
	err := req.DecodeData(httpRequest.Body)
	if err != nil {
		s.writeHTTPErrorResponse(params.NewIn(), w, dagrpc.NewParseError(err.Error()))
		return
	}

	resp := s.handleRequest(req, nil)
	s.writeHTTPServerResponse(req, w, resp)
}

func (s *Server) handleRequest(req *params.Request, sub *subscriber) abstractResult {
	if req.In != nil {
		req.In.Method = escapeForLog(req.In.Method) // No valid method name will be changed by it.
		return s.handleIn(req.In, sub)
	}
	resp := make(abstractBatch, len(req.Batch))
	for i, in := range req.Batch {
		in.Method = escapeForLog(in.Method) // No valid method name will be changed by it.
		resp[i] = s.handleIn(&in, sub)
	}
	return resp
}

func (s *Server) handleIn(req *params.In, sub *subscriber) abstract {
	var res any
	var resErr *dagrpc.Error
	if req.JSONRPC != dagrpc.JSONRPCVersion {
		return s.packResponse(req, nil, dagrpc.NewInvalidParamsError(fmt.Sprintf("problem parsing JSON: invalid version, expected 2.0 got '%s'", req.JSONRPC)))
	}

	reqParams := params.Params(req.RawParams)

	s.log.Debug("processing rpc request",
		zap.String("method", req.Method),
		zap.Stringer("params", reqParams))

	start := time.Now()
	defer func() { addReqTimeMetric(req.Method, time.Since(start)) }()

	resErr = dagrpc.NewMethodNotFoundError(fmt.Sprintf("method %q not supported", req.Method))
	handler, ok := rpcHandlers[req.Method]
	if ok {
		res, resErr = handler(s, reqParams)
	} else if sub != nil {
		handler, ok := rpcWsHandlers[req.Method]
		if ok {
			res, resErr = handler(s, reqParams, sub)
		}
	}
	return s.packResponse(req, res, resErr)
}

func (s *Server) handleWsWrites(ws *websocket.Conn, resChan <-chan abstractResult, sub *subscriber) {
	pingTicker := time.NewTicker(wsPingPeriod)
eventloop:
	for {
		select {
		case <-s.shutdown:
			break eventloop
		case event, ok := <-sub.events:
			if !ok {
				break eventloop
			}
			if err := ws.SetWriteDeadline(time.Now().Add(wsWriteLimit)); err != nil {
				break eventloop
			}
			if err := ws.WritePreparedMessage(event); err != nil {
				break eventloop
			}
		case res, ok := <-resChan:
			if !ok {
				break eventloop
			}
			if err := ws.SetWriteDeadline(time.Now().Add(wsWriteLimit)); err != nil {
				break eventloop
			}
			if err := ws.WriteJSON(res); err != nil {
				break eventloop
			}
		case <-pingTicker.C:
			if err := ws.SetWriteDeadline(time.Now().Add(wsWriteLimit)); err != nil {
				break eventloop
			}
			if err := ws.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
				break eventloop
			}
		}
	}
	// Notifications are rejected from now on, the overflow routine (if
	// any) quits.
	sub.close()
	ws.Close()
	pingTicker.Stop()
	// Drain notification channel as there might be some goroutines blocked
	// on it.
drainloop:
	for {
		select {
		case _, ok := <-sub.events:
			if !ok {
				break drainloop
			}
		default:
			break drainloop
		}
	}
}

func (s *Server) handleWsReads(ws *websocket.Conn, resChan chan<- abstractResult, subscr *subscriber, log *zap.Logger) {
	ws.SetReadLimit(s.wsReadLimit)
	err := ws.SetReadDeadline(time.Now().Add(wsPongLimit))
	ws.SetPongHandler(func(string) error { return ws.SetReadDeadline(time.Now().Add(wsPongLimit)) })
requestloop:
	for err == nil {
		req := params.NewRequest()
		err := ws.ReadJSON(req)
		if err != nil {
			break
		}
		res := s.handleRequest(req, subscr)
		res.RunForErrors(func(jsonErr *dagrpc.Error) {
			s.logRequestError(req, jsonErr)
		})
		select {
		case <-s.shutdown:
			break requestloop
		case resChan <- res:
		}
	}

	subscr.close()
	s.subsLock.Lock()
	delete(s.subscribers, subscr)
	s.subsLock.Unlock()
	if err := s.api.UnregisterListener(subscr.id); err != nil {
		log.Debug("failed to unregister listener", zap.Error(err))
	}
	log.Debug("websocket client disconnected")
	close(resChan)
	ws.Close()
}

// subscribe handles subscription requests from websocket clients. The
// parameters are an event name and an optional event-specific filter.
func (s *Server) subscribe(reqParams params.Params, sub *subscriber) (any, *dagrpc.Error) {
	event, sc, respErr := scopeFromParams(reqParams)
	if respErr != nil {
		return nil, respErr
	}
	select {
	case <-s.shutdown:
		return nil, dagrpc.NewInternalServerError("server is shutting down")
	default:
	}
	if err := s.api.StartNotify(sub.id, sc); err != nil {
		return nil, apiError(err)
	}
	return dagrpc.SubscribeResult{
		ListenerID: uint64(sub.id),
		Event:      event,
	}, nil
}

// unsubscribe handles unsubscription requests from websocket clients, the
// parameters are the same as the ones used for subscription.
func (s *Server) unsubscribe(reqParams params.Params, sub *subscriber) (any, *dagrpc.Error) {
	_, sc, respErr := scopeFromParams(reqParams)
	if respErr != nil {
		return nil, respErr
	}
	if err := s.api.StopNotify(sub.id, sc); err != nil {
		return nil, apiError(err)
	}
	return true, nil
}

func scopeFromParams(reqParams params.Params) (events.Type, scope.Scope, *dagrpc.Error) {
	event, err := reqParams.Value(0).GetEvent()
	if err != nil || event == events.Missed {
		return events.Invalid, nil, dagrpc.ErrInvalidParams
	}
	var filter []byte
	if p := reqParams.Value(1); p != nil {
		filter = p.RawMessage
	}
	sc, err := scope.Decode(event, filter)
	if err != nil {
		return events.Invalid, nil, dagrpc.WrapErrorWithData(dagrpc.ErrInvalidParams, err.Error())
	}
	return event, sc, nil
}

// apiError converts API errors into JSON-RPC ones.
func apiError(err error) *dagrpc.Error {
	if err == nil {
		return nil
	}
	var rpcErr *dagrpc.Error
	switch {
	case errors.As(err, &rpcErr):
		return rpcErr
	case errors.Is(err, rpccore.ErrNotImplemented):
		return dagrpc.ErrNotImplemented
	case errors.Is(err, notifier.ErrListenerNotFound):
		return dagrpc.WrapErrorWithData(dagrpc.ErrListenerNotFound, err.Error())
	case errors.Is(err, notifier.ErrEventNotEnabled):
		return dagrpc.WrapErrorWithData(dagrpc.ErrEventNotEnabled, err.Error())
	case errors.Is(err, notifier.ErrTooManyScopes):
		return dagrpc.WrapErrorWithData(dagrpc.ErrTooManySubscriptions, err.Error())
	case errors.Is(err, scope.ErrInvalidScope), errors.Is(err, scope.ErrUnknownEvent):
		return dagrpc.WrapErrorWithData(dagrpc.ErrInvalidParams, err.Error())
	default:
		return dagrpc.NewInternalServerError(err.Error())
	}
}

func (s *Server) packResponse(r *params.In, result any, respErr *dagrpc.Error) abstract {
	resp := abstract{
		Header: dagrpc.Header{
			JSONRPC: r.JSONRPC,
			ID:      r.RawID,
		},
	}
	if respErr != nil {
		resp.Error = respErr
	} else {
		resp.Result = result
	}
	return resp
}

// logRequestError is a request error logger.
func (s *Server) logRequestError(r *params.Request, jsonErr *dagrpc.Error) {
	logFields := []zap.Field{
		zap.Int64("code", jsonErr.Code),
	}
	if len(jsonErr.Data) != 0 {
		logFields = append(logFields, zap.String("cause", jsonErr.Data))
	}

	if r.In != nil {
		logFields = append(logFields, zap.String("method", r.In.Method))
		params := params.Params(r.In.RawParams)
		logFields = append(logFields, zap.Any("params", params))
	}

	logText := "Error encountered with rpc request"
	switch jsonErr.Code {
	case dagrpc.InternalServerErrorCode:
		s.log.Error(logText, logFields...)
	default:
		s.log.Info(logText, logFields...)
	}
}

// writeHTTPErrorResponse writes an error response to the ResponseWriter.
func (s *Server) writeHTTPErrorResponse(r *params.In, w http.ResponseWriter, jsonErr *dagrpc.Error) {
	resp := s.packResponse(r, nil, jsonErr)
	s.writeHTTPServerResponse(&params.Request{In: r}, w, resp)
}

func setCORSOriginHeaders(h http.Header) {
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Headers", "Content-Type, Access-Control-Allow-Headers, Authorization, X-Requested-With")
}

func (s *Server) writeHTTPServerResponse(r *params.Request, w http.ResponseWriter, resp abstractResult) {
	// Errors can happen in many places and we can only catch ALL of them here.
	resp.RunForErrors(func(jsonErr *dagrpc.Error) {
		s.logRequestError(r, jsonErr)
	})
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if s.config.EnableCORSWorkaround {
		setCORSOriginHeaders(w.Header())
	}
	if r.In != nil {
		resp := resp.(abstract)
		if resp.Error != nil {
			w.WriteHeader(getHTTPCodeForError(resp.Error))
		}
	}

	encoder := json.NewEncoder(w)
	err := encoder.Encode(resp)

	if err != nil {
		switch {
		case r.In != nil:
			s.log.Error("Error encountered while encoding response",
				zap.String("err", err.Error()),
				zap.String("method", r.In.Method))
		case r.Batch != nil:
			s.log.Error("Error encountered while encoding batch response",
				zap.String("err", err.Error()))
		}
	}
}

func escapeForLog(in string) string {
	return strings.Map(func(c rune) rune {
		if !strconv.IsGraphic(c) {
			return -1
		}
		return c
	}, in)
}
