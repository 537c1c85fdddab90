/*
Package dagrpc contains a set of types used for JSON-RPC communication with
the node. It defines basic request/response types, the wire format of event
notifications and a set of errors.
*/
package dagrpc

import (
	"encoding/json"

	"github.com/nspcc-dev/dagnotify/pkg/notify/events"
)

const (
	// JSONRPCVersion is the only JSON-RPC protocol version supported.
	JSONRPCVersion = "2.0"
)

type (
	// Request represents JSON-RPC request as it's sent by clients.
	Request struct {
		// JSONRPC is the protocol version, only valid when it contains JSONRPCVersion.
		JSONRPC string `json:"jsonrpc"`
		// Method is the method being called.
		Method string `json:"method"`
		// Params is a set of method-specific parameters passed to the call,
		// all node calls expect params to be an array.
		Params []any `json:"params"`
		// ID is an identifier associated with this request.
		ID uint64 `json:"id"`
	}

	// Header is a generic JSON-RPC 2.0 response header (ID and JSON-RPC version).
	Header struct {
		ID      json.RawMessage `json:"id"`
		JSONRPC string          `json:"jsonrpc"`
	}

	// HeaderAndError adds an Error (that can be empty) to the Header, it's used
	// to construct type-specific responses.
	HeaderAndError struct {
		Header
		Error *Error `json:"error,omitempty"`
	}

	// Response represents a standard raw JSON-RPC 2.0
	// response: http://www.jsonrpc.org/specification#response_object.
	Response struct {
		HeaderAndError
		Result json.RawMessage `json:"result,omitempty"`
	}

	// Notification is a type used to represent wire format of events, they're
	// special in that they look like requests but they don't have IDs and their
	// "method" is actually an event name.
	Notification struct {
		JSONRPC string      `json:"jsonrpc"`
		Event   events.Type `json:"method"`
		Payload []any       `json:"params"`
	}

	// SubscribeResult is returned by the subscribe method. The same
	// parameters the subscription was made with are to be used to
	// unsubscribe.
	SubscribeResult struct {
		ListenerID uint64      `json:"listenerId"`
		Event      events.Type `json:"event"`
	}
)
