package config

import "fmt"

// ApplicationConfiguration is node-specific configuration.
type ApplicationConfiguration struct {
	LogLevel string `yaml:"LogLevel"`
	LogPath  string `yaml:"LogPath"`

	Notifier   Notifier     `yaml:"Notifier"`
	Pprof      BasicService `yaml:"Pprof"`
	Prometheus BasicService `yaml:"Prometheus"`
	RPC        RPC          `yaml:"RPC"`
}

// Validate checks ApplicationConfiguration for internal consistency and
// returns an error if any invalid settings are found.
func (a *ApplicationConfiguration) Validate() error {
	if err := a.Notifier.Validate(); err != nil {
		return fmt.Errorf("invalid Notifier config: %w", err)
	}
	if err := a.RPC.Validate(); err != nil {
		return fmt.Errorf("invalid RPC config: %w", err)
	}
	return nil
}

// RPCConfig returns the RPC configuration with SubscriptionBufferSize
// inherited from Notifier.ListenerBufferSize when it's not set.
func (a *ApplicationConfiguration) RPCConfig() RPC {
	rpc := a.RPC
	if rpc.SubscriptionBufferSize == 0 {
		rpc.SubscriptionBufferSize = a.Notifier.ListenerBufferSize
	}
	return rpc
}
