package config

import "errors"

// DefaultMaxWebSocketClients is the default maximum number of websocket
// clients per RPC server.
const DefaultMaxWebSocketClients = 64

// RPC is an RPC service configuration information.
type RPC struct {
	BasicService         `yaml:",inline"`
	EnableCORSWorkaround bool `yaml:"EnableCORSWorkaround"`
	MaxRequestBodyBytes  int  `yaml:"MaxRequestBodyBytes"`
	MaxWebSocketClients  int  `yaml:"MaxWebSocketClients"`
	// SubscriptionBufferSize is the per-websocket notification queue depth,
	// zero means the notifier's ListenerBufferSize.
	SubscriptionBufferSize int `yaml:"SubscriptionBufferSize"`
}

// Validate checks RPC for internal consistency. It returns an error if the
// configuration is invalid.
func (cfg *RPC) Validate() error {
	if cfg.MaxWebSocketClients < 0 {
		return errors.New("MaxWebSocketClients can't be negative")
	}
	if cfg.MaxRequestBodyBytes < 0 {
		return errors.New("MaxRequestBodyBytes can't be negative")
	}
	if cfg.SubscriptionBufferSize < 0 {
		return errors.New("SubscriptionBufferSize can't be negative")
	}
	return nil
}

// Equals checks if RPC is equal to another one.
func (cfg RPC) Equals(o RPC) bool {
	return cfg.BasicService.Equals(o.BasicService) &&
		cfg.EnableCORSWorkaround == o.EnableCORSWorkaround &&
		cfg.MaxRequestBodyBytes == o.MaxRequestBodyBytes &&
		cfg.MaxWebSocketClients == o.MaxWebSocketClients &&
		cfg.SubscriptionBufferSize == o.SubscriptionBufferSize
}
