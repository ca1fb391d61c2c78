package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/stockroom-backend/pkg/redis"
)

// Manager claims client-supplied submission keys using Redis SETNX with a TTL.
// Keys follow the `stockroom:idempotency:<op>:<requisition_id>:<key>` pattern.
type Manager struct {
	store redis.IdempotencyStore
	ttl   time.Duration
}

// NewManager builds a guard that holds claimed keys for the given TTL.
func NewManager(store redis.IdempotencyStore, ttl time.Duration) (*Manager, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	return &Manager{
		store: store,
		ttl:   ttl,
	}, nil
}

// Claim marks the key as used and reports whether this call won the claim.
// A false result means the same submission was already accepted.
func (m *Manager) Claim(ctx context.Context, op string, requisitionID int64, key string) (bool, error) {
	redisKey, err := m.submissionKey(op, requisitionID, key)
	if err != nil {
		return false, err
	}
	return m.store.SetNX(ctx, redisKey, "1", m.ttl)
}

// Release drops a claim so a failed submission can be retried with the same key.
func (m *Manager) Release(ctx context.Context, op string, requisitionID int64, key string) error {
	redisKey, err := m.submissionKey(op, requisitionID, key)
	if err != nil {
		return err
	}
	return m.store.Del(ctx, redisKey)
}

func (m *Manager) submissionKey(op string, requisitionID int64, key string) (string, error) {
	if op == "" {
		return "", errors.New("operation name is required")
	}
	if requisitionID <= 0 {
		return "", errors.New("requisition id is required")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("idempotency key is required")
	}
	return m.store.IdempotencyKey(fmt.Sprintf("%s:%d", op, requisitionID), key), nil
}
