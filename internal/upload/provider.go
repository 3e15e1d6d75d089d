package upload

import (
	"context"
	"fmt"
	"io"
)

// Provider defines the interface for artifact mirror providers. Mirrors give
// bulky run artifacts (screen recordings, oversized logs) a durable home next
// to the reporting backend, which caps attachment sizes.
type Provider interface {
	// Upload stores size bytes from reader at the remote path. A negative
	// size means the length is unknown and the provider should stream.
	Upload(ctx context.Context, reader io.Reader, size int64, remotePath string, contentType string) error

	// Configure sets up the provider with the given configuration
	Configure(config map[string]any) error

	// Name returns the provider name
	Name() string
}

// ProviderFactory is a function that creates a new provider instance
type ProviderFactory func() Provider

var registry = map[string]ProviderFactory{
	"minio": func() Provider { return NewMinioProvider() },
}

// RegisterProvider registers an upload provider under a name.
func RegisterProvider(name string, factory ProviderFactory) {
	registry[name] = factory
}

// NewProvider creates a new provider instance by name
func NewProvider(name string) (Provider, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown mirror provider: %s", name)
	}
	return factory(), nil
}
