package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the default path to the config file.
const DefaultConfigPath = "./config/dagnode.yml"

// Version is the version of the node, set at build time.
var Version string

// Config is the top level struct representing the config for the node.
type Config struct {
	ApplicationConfiguration ApplicationConfiguration `yaml:"ApplicationConfiguration"`
}

// Load attempts to load the config from the given path, an empty path
// means DefaultConfigPath.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Config{}, fmt.Errorf("config '%s' doesn't exist", path)
	}
	configData, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config: %w", err)
	}
	return LoadBytes(configData)
}

// LoadBytes parses the config from its YAML representation applying
// defaults for unspecified values and validates the result.
func LoadBytes(configData []byte) (Config, error) {
	config := Config{
		ApplicationConfiguration: ApplicationConfiguration{
			Notifier: Notifier{
				Broadcasters:       DefaultBroadcasters,
				QueueSize:          DefaultQueueSize,
				ListenerBufferSize: DefaultListenerBufferSize,
			},
			RPC: RPC{
				MaxWebSocketClients: DefaultMaxWebSocketClients,
			},
		},
	}
	decoder := yaml.NewDecoder(bytes.NewReader(configData))
	decoder.KnownFields(true)
	err := decoder.Decode(&config)
	if err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}
	err = config.ApplicationConfiguration.Validate()
	if err != nil {
		return Config{}, err
	}
	return config, nil
}
