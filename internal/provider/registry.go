package provider

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/DanielPopoola/billing-reconciler/internal/application"
	"github.com/hashicorp/go-multierror"
)

// Registry maps provider keys to implementations. Registering a key twice
// replaces the earlier provider; the replacement is logged.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	logger    *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		logger:    logger,
	}
}

func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := p.Key()
	if _, exists := r.providers[key]; exists {
		r.logger.Warn("payment provider re-registered, last registration wins", "provider", key)
	}
	r.providers[key] = p
}

func (r *Registry) Get(key string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[key]
	return p, ok
}

// Lookup is Get with a caller-facing error for unknown keys.
func (r *Registry) Lookup(key string) (Provider, error) {
	p, ok := r.Get(key)
	if !ok {
		return nil, application.NewUnknownProviderError(key)
	}
	return p, nil
}

// Keys returns the registered keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.providers))
	for k := range r.providers {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// InitAll runs every OnInit hook once. All hooks run even if some fail; the
// failures are returned together.
func (r *Registry) InitAll(ctx context.Context, deps Dependencies) error {
	var result *multierror.Error

	for _, key := range r.Keys() {
		p, _ := r.Get(key)
		initializer, ok := p.(Initializer)
		if !ok {
			continue
		}

		providerDeps := deps
		providerDeps.Logger = deps.Logger.With("provider", key)

		if err := initializer.OnInit(ctx, providerDeps); err != nil {
			r.logger.Error("payment provider failed to initialize", "provider", key, "error", err)
			result = multierror.Append(result, fmt.Errorf("init %s: %w", key, err))
			continue
		}
		r.logger.Info("payment provider initialized", "provider", key)
	}

	return result.ErrorOrNil()
}

// ConfigureAll gives every RouteRegistrar a chance to mount routes.
func (r *Registry) ConfigureAll(rc *RegistrationContext) {
	for _, key := range r.Keys() {
		p, _ := r.Get(key)
		if registrar, ok := p.(RouteRegistrar); ok {
			registrar.OnConfig(rc)
		}
	}
}
