package metrics

import (
	"net/http"
	"net/http/pprof"

	"github.com/nspcc-dev/dagnotify/pkg/config"
	"go.uber.org/zap"
)

// NewPprofService creates a new service exposing runtime profiles of the
// node (https://golang.org/pkg/net/http/pprof/).
func NewPprofService(cfg config.BasicService, log *zap.Logger) *Service {
	if log == nil {
		return nil
	}

	handler := http.NewServeMux()
	handler.HandleFunc("/debug/pprof/", pprof.Index)
	handler.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	handler.HandleFunc("/debug/pprof/profile", pprof.Profile)
	handler.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	handler.HandleFunc("/debug/pprof/trace", pprof.Trace)

	return NewService("Pprof", newServers(cfg, handler), cfg, log)
}

func newServers(cfg config.BasicService, handler http.Handler) []*http.Server {
	addrs := cfg.GetAddresses()
	srvs := make([]*http.Server, len(addrs))
	for i, addr := range addrs {
		srvs[i] = &http.Server{
			Addr:    addr,
			Handler: handler,
		}
	}
	return srvs
}
