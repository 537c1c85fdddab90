package config

import "slices"

// BasicService is used as a simple base for node services like RPC or
// Prometheus monitoring.
type BasicService struct {
	Enabled bool `yaml:"Enabled"`
	// Addresses holds the list of bind addresses in the form of "address:port".
	Addresses []string `yaml:"Addresses"`
}

// GetAddresses returns the set of unique (in terms of raw strings) pairs
// host:port for the given basic service.
func (s BasicService) GetAddresses() []string {
	var (
		addrs = make([]string, 0, len(s.Addresses))
		seen  = make(map[string]bool, len(s.Addresses))
	)
	for _, a := range s.Addresses {
		if seen[a] {
			continue
		}
		seen[a] = true
		addrs = append(addrs, a)
	}
	return addrs
}

// Equals checks if BasicService is equal to another one.
func (s BasicService) Equals(o BasicService) bool {
	return s.Enabled == o.Enabled && slices.Equal(s.Addresses, o.Addresses)
}
