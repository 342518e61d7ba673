package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/shoplive-catalog/internal/variant"
	"github.com/ikkim/shoplive-catalog/pkg/logger"
	"github.com/redis/go-redis/v9"
)

var (
	ErrSelectionNotFound = errors.New("selection session not found")
	ErrSelectionConflict = errors.New("selection session modified concurrently")
)

const (
	selectionKeyPrefix   = "variant:session:"
	selectionMaxAttempts = 5
)

// SelectionState is the persisted part of a variant session. The index is
// rebuilt from the product on every request.
type SelectionState struct {
	ProductID uint              `json:"product_id"`
	ValueIDs  []variant.ValueID `json:"value_ids"`
	Media     []string          `json:"media"`
}

type SelectionStore interface {
	Create(ctx context.Context, state *SelectionState) (string, error)
	Get(ctx context.Context, id string) (*SelectionState, error)
	// Update applies fn to the stored state atomically. fn may be retried.
	Update(ctx context.Context, id string, fn func(*SelectionState) error) (*SelectionState, error)
	Delete(ctx context.Context, id string) error
}

type redisSelectionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSelectionStore(client *redis.Client, ttl time.Duration) SelectionStore {
	return &redisSelectionStore{client: client, ttl: ttl}
}

func selectionKey(id string) string {
	return selectionKeyPrefix + id
}

func (s *redisSelectionStore) Create(ctx context.Context, state *SelectionState) (string, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	ok, err := s.client.SetNX(ctx, selectionKey(id), data, s.ttl).Result()
	if err != nil {
		logger.Error("Failed to store selection session", err, logger.Fields{
			"product_id": state.ProductID,
		})
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("selection session %s already exists", id)
	}
	return id, nil
}

// Get returns the session and extends its TTL.
func (s *redisSelectionStore) Get(ctx context.Context, id string) (*SelectionState, error) {
	data, err := s.client.GetEx(ctx, selectionKey(id), s.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSelectionNotFound
	}
	if err != nil {
		logger.Error("Failed to load selection session", err, logger.Fields{
			"session_id": id,
		})
		return nil, err
	}
	return decodeSelection(data)
}

func (s *redisSelectionStore) Update(ctx context.Context, id string, fn func(*SelectionState) error) (*SelectionState, error) {
	key := selectionKey(id)
	var updated *SelectionState

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrSelectionNotFound
		}
		if err != nil {
			return err
		}
		state, err := decodeSelection(data)
		if err != nil {
			return err
		}
		if err := fn(state); err != nil {
			return err
		}
		next, err := json.Marshal(state)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, s.ttl)
			return nil
		})
		if err == nil {
			updated = state
		}
		return err
	}

	for attempt := 1; attempt <= selectionMaxAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return nil, err
		}
		logger.Debug("Selection session changed during update, retrying", logger.Fields{
			"session_id": id,
			"attempt":    attempt,
		})
	}
	return nil, ErrSelectionConflict
}

func (s *redisSelectionStore) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, selectionKey(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSelectionNotFound
	}
	return nil
}

func decodeSelection(data []byte) (*SelectionState, error) {
	var state SelectionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode selection session: %w", err)
	}
	return &state, nil
}
