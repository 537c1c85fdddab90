package rpcsrv

import (
	"net/http"

	"github.com/nspcc-dev/dagnotify/pkg/dagrpc"
)

// abstractResult is an interface which represents either single JSON-RPC 2.0 response
// or batch JSON-RPC 2.0 response.
type abstractResult interface {
	RunForErrors(f func(jsonErr *dagrpc.Error))
}

// abstract represents abstract JSON-RPC 2.0 response. It is used as a server-side response
// representation.
type abstract struct {
	dagrpc.Header
	Error  *dagrpc.Error `json:"error,omitempty"`
	Result any           `json:"result,omitempty"`
}

// RunForErrors implements abstractResult interface.
func (a abstract) RunForErrors(f func(jsonErr *dagrpc.Error)) {
	if a.Error != nil {
		f(a.Error)
	}
}

// abstractBatch represents abstract JSON-RPC 2.0 batch-response.
type abstractBatch []abstract

// RunForErrors implements abstractResult interface.
func (ab abstractBatch) RunForErrors(f func(jsonErr *dagrpc.Error)) {
	for _, a := range ab {
		a.RunForErrors(f)
	}
}

func getHTTPCodeForError(respErr *dagrpc.Error) int {
	if respErr.HTTPCode != 0 {
		return respErr.HTTPCode
	}
	var httpCode int
	switch respErr.Code {
	case dagrpc.BadRequestCode:
		httpCode = http.StatusBadRequest
	case dagrpc.InvalidRequestCode, dagrpc.RPCErrorCode, dagrpc.InvalidParamsCode:
		httpCode = http.StatusUnprocessableEntity
	case dagrpc.MethodNotFoundCode:
		httpCode = http.StatusMethodNotAllowed
	case dagrpc.InternalServerErrorCode:
		httpCode = http.StatusInternalServerError
	default:
		httpCode = http.StatusUnprocessableEntity
	}
	return httpCode
}
