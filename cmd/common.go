package cmd

import (
	"fmt"
	"time"

	"github.com/janhq/autoqa-reporter/internal/attrs"
	"github.com/janhq/autoqa-reporter/internal/reportportal"
	"github.com/janhq/autoqa-reporter/internal/upload"
)

// Environment prefixes for attribute and mirror configuration sources.
const (
	attrEnvPrefix   = "AUTOQA_ATTR"
	mirrorEnvPrefix = "AUTOQA_MIRROR_CONFIG"
)

// buildRPClient validates the connection flags and constructs the client.
func buildRPClient(config *RPConfig, verbose bool) (*reportportal.Client, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("required flag 'rp-endpoint' (or RP_ENDPOINT env var) not set")
	}
	if config.Token == "" {
		return nil, fmt.Errorf("required flag 'rp-token' (or RP_TOKEN env var) not set")
	}

	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid rp-timeout duration: %w", err)
	}

	retryDelay, err := time.ParseDuration(config.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("invalid rp-retry-delay duration: %w", err)
	}

	clientConfig := &reportportal.Config{
		Endpoint: config.Endpoint,
		Project:  config.Project,
		Token:    config.Token,
		Timeout:  timeout,
	}

	retryConfig := &reportportal.RetryConfig{
		MaxRetries:   config.Retries,
		InitialDelay: retryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Jitter:       0.1,
	}

	return reportportal.NewClient(clientConfig, retryConfig, verbose), nil
}

// buildAttributes merges attribute sources (env < file < JSON < key=value).
func buildAttributes(config *AttributeConfig) ([]reportportal.Attribute, error) {
	attributes, err := attrs.BuildAttributes(attrEnvPrefix, config.JSON, config.KV, config.File)
	if err != nil {
		return nil, fmt.Errorf("failed to build attributes: %w", err)
	}
	return attributes, nil
}

// buildMirrorProvider constructs and configures the recording mirror, or
// returns nil when no provider was requested.
func buildMirrorProvider(config *MirrorConfig) (upload.Provider, error) {
	if config.Provider == "" {
		return nil, nil
	}

	mirrorConf, err := attrs.BuildMap(mirrorEnvPrefix, config.Config, config.ConfigKV, config.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to build mirror config: %w", err)
	}
	if mirrorConf == nil {
		mirrorConf = make(map[string]any)
	}

	provider, err := upload.NewProvider(config.Provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create mirror provider: %w", err)
	}

	if err := provider.Configure(mirrorConf); err != nil {
		return nil, fmt.Errorf("failed to configure mirror provider: %w", err)
	}
	return provider, nil
}
