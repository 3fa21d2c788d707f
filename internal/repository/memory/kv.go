package memory

import (
	"context"
	"sync"

	"github.com/dtroode/townforge-client/internal/model"
)

// Ensure KVRepository implements the model.KVStore interface.
var _ model.KVStore = (*KVRepository)(nil)

// KVRepository keeps markers in process memory. It backs ephemeral shells and tests.
type KVRepository struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewKVRepository() *KVRepository {
	return &KVRepository{values: make(map[string]string)}
}

func (r *KVRepository) GetMany(ctx context.Context, keys ...string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := r.values[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (r *KVRepository) SetMany(ctx context.Context, values map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, v := range values {
		r.values[k] = v
	}
	return nil
}

func (r *KVRepository) DeleteMany(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, k := range keys {
		delete(r.values, k)
	}
	return nil
}
