package publisher

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// ErrUnsupportedPlatform signals that no adapter is registered for a
// platform identifier.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// Registry maps platform identifiers to their publishing adapters.
type Registry struct {
	publishers map[string]Publisher
	logger     *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		publishers: make(map[string]Publisher),
		logger:     logger,
	}
}

func (r *Registry) Register(p Publisher) error {
	name := p.Name()
	if _, exists := r.publishers[name]; exists {
		return fmt.Errorf("publisher for platform %s already registered", name)
	}

	r.publishers[name] = p
	r.logger.Info("Publisher registered", zap.String("platform", name))
	return nil
}

func (r *Registry) Resolve(platform string) (Publisher, error) {
	p, exists := r.publishers[platform]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPlatform, platform)
	}
	return p, nil
}

// Platforms returns the registered platform identifiers in stable order.
func (r *Registry) Platforms() []string {
	names := make([]string, 0, len(r.publishers))
	for name := range r.publishers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
