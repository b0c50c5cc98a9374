// Package registry holds the set of known rooms and their gating policies.
// Populated once at session start from a RoomLoader, read-only afterwards.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"gatechat/contract"
	"gatechat/domain"
	"gatechat/errors"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var validate = validator.New()

type Registry struct {
	mu       sync.RWMutex
	log      *slog.Logger
	order    []domain.RoomID
	policies map[domain.RoomID]domain.RoomPolicy
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		log:      log,
		policies: make(map[domain.RoomID]domain.RoomPolicy),
	}
}

// Populate loads all room policies through the external loader, preserving
// load order. Policies failing validation or reusing a room id reject the
// whole population: a half-loaded registry is worse than a failed start.
func (r *Registry) Populate(ctx context.Context, loader contract.RoomLoader) error {
	policies, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("room loading failed: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, policy := range policies {
		if err := validate.Struct(policy); err != nil {
			return fmt.Errorf("%w: room %q: %v", errors.ErrInvalidPolicy, policy.ID, err)
		}
		if policy.IsTokenGated && policy.RequiredToken == nil {
			return fmt.Errorf("%w: gated room %q has no token reference", errors.ErrInvalidPolicy, policy.ID)
		}
		if _, ok := r.policies[policy.ID]; ok {
			return fmt.Errorf("%w: %q", errors.ErrDuplicateRoom, policy.ID)
		}
		if !policy.IsTokenGated {
			// Ungated rooms must not carry gating leftovers.
			policy.RequiredToken = nil
			policy.MinTokenAmount = ""
		}
		r.order = append(r.order, policy.ID)
		r.policies[policy.ID] = policy
	}

	r.log.Info(fmt.Sprintf("%d rooms registered", len(r.order)))
	return nil
}

// List returns all policies in registration order.
func (r *Registry) List() []domain.RoomPolicy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Map(r.order, func(id domain.RoomID, _ int) domain.RoomPolicy {
		return r.policies[id]
	})
}

func (r *Registry) Get(id domain.RoomID) (domain.RoomPolicy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	policy, ok := r.policies[id]
	return policy, ok
}
