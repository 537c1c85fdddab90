package rpccore

import (
	"context"

	"github.com/google/uuid"
	"github.com/nspcc-dev/dagnotify/pkg/notify/connection"
	"github.com/nspcc-dev/dagnotify/pkg/notify/listener"
	"github.com/nspcc-dev/dagnotify/pkg/notify/notifier"
	"github.com/nspcc-dev/dagnotify/pkg/notify/scope"
	"go.uber.org/zap"
)

// Service is the API implementation backed by the notification core. The
// catalogue beyond GetInfo and Ping has no node behind it and returns
// ErrNotImplemented.
type Service struct {
	Unimplemented

	notifier *notifier.Notifier
	log      *zap.Logger
	p2pID    string
	version  string
}

var _ API = (*Service)(nil)

// NewService creates a Service serving subscriptions via the given Notifier.
func NewService(n *notifier.Notifier, version string, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		notifier: n,
		log:      log,
		p2pID:    uuid.NewString(),
		version:  version,
	}
	log.Info("rpc core service created",
		zap.String("p2pID", s.p2pID),
		zap.String("notifier", n.Name()))
	return s
}

// Notifier returns the notifier the Service delivers events through.
func (s *Service) Notifier() *notifier.Notifier {
	return s.notifier
}

// GetInfo implements the API interface.
func (s *Service) GetInfo(context.Context) (*GetInfoResponse, error) {
	return &GetInfoResponse{
		P2PID:            s.p2pID,
		ServerVersion:    s.version,
		HasNotifyCommand: true,
		HasMessageID:     true,
	}, nil
}

// Ping implements the API interface.
func (s *Service) Ping(context.Context) error {
	return nil
}

// RegisterNewListener implements the API interface.
func (s *Service) RegisterNewListener(conn connection.Connection) listener.ID {
	return s.notifier.RegisterNewListener(conn)
}

// UnregisterListener implements the API interface.
func (s *Service) UnregisterListener(id listener.ID) error {
	return s.notifier.UnregisterListener(id)
}

// StartNotify implements the API interface.
func (s *Service) StartNotify(id listener.ID, sc scope.Scope) error {
	return s.notifier.StartNotify(id, sc)
}

// StopNotify implements the API interface.
func (s *Service) StopNotify(id listener.ID, sc scope.Scope) error {
	return s.notifier.StopNotify(id, sc)
}
