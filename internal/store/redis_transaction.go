package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"membership_backend/internal/models"

	"github.com/redis/go-redis/v9"
)

const txKeyPrefix = "payment:tx:"

// RedisTransactionStore persists transactions in redis so records survive
// process restarts. Update runs under WATCH, giving the same PAID-is-
// terminal guarantee as the in-memory backend via optimistic locking.
type RedisTransactionStore struct {
	client *redis.Client
}

func NewRedisTransactionStore(client *redis.Client) *RedisTransactionStore {
	return &RedisTransactionStore{client: client}
}

func txKey(transactionID string) string {
	return txKeyPrefix + transactionID
}

func (s *RedisTransactionStore) Create(ctx context.Context, tx *models.PaymentTransaction) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, txKey(tx.TransactionID), data, 0).Err()
}

func (s *RedisTransactionStore) Get(ctx context.Context, transactionID string) (*models.PaymentTransaction, error) {
	data, err := s.client.Get(ctx, txKey(transactionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var tx models.PaymentTransaction
	if err := json.Unmarshal(data, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

func (s *RedisTransactionStore) Update(ctx context.Context, transactionID string, upd models.TransactionUpdate) (*models.PaymentTransaction, error) {
	key := txKey(transactionID)
	var merged *models.PaymentTransaction

	// Retry a few times on WATCH conflicts; concurrent webhook and poll
	// updates for the same transaction are rare but possible.
	for attempt := 0; attempt < 3; attempt++ {
		merged = nil
		err := s.client.Watch(ctx, func(wtx *redis.Tx) error {
			data, err := wtx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				return nil
			}
			if err != nil {
				return err
			}

			var tx models.PaymentTransaction
			if err := json.Unmarshal(data, &tx); err != nil {
				return err
			}

			applyTransactionUpdate(&tx, upd)

			out, err := json.Marshal(&tx)
			if err != nil {
				return err
			}

			_, err = wtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, out, 0)
				return nil
			})
			if err != nil {
				return err
			}

			merged = &tx
			return nil
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return merged, nil
	}
	return nil, redis.TxFailedErr
}

func (s *RedisTransactionStore) GetAll(ctx context.Context) ([]models.PaymentTransaction, error) {
	return s.scan(ctx, func(*models.PaymentTransaction) bool { return true })
}

func (s *RedisTransactionStore) GetByStatus(ctx context.Context, status models.TransactionStatus) ([]models.PaymentTransaction, error) {
	return s.scan(ctx, func(tx *models.PaymentTransaction) bool { return tx.Status == status })
}

func (s *RedisTransactionStore) GetByPlan(ctx context.Context, planID string) ([]models.PaymentTransaction, error) {
	return s.scan(ctx, func(tx *models.PaymentTransaction) bool { return tx.PlanID == planID })
}

func (s *RedisTransactionStore) CleanupExpired(ctx context.Context) (int, error) {
	pending, err := s.GetByStatus(ctx, models.TransactionStatusPending)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	expired := models.TransactionStatusExpired
	cleaned := 0
	for i := range pending {
		if pending[i].ExpiresAt.Before(now) {
			if _, err := s.Update(ctx, pending[i].TransactionID, models.TransactionUpdate{Status: &expired}); err != nil {
				return cleaned, err
			}
			cleaned++
		}
	}
	return cleaned, nil
}

func (s *RedisTransactionStore) scan(ctx context.Context, keep func(*models.PaymentTransaction) bool) ([]models.PaymentTransaction, error) {
	var out []models.PaymentTransaction

	iter := s.client.Scan(ctx, 0, txKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, err
		}

		var tx models.PaymentTransaction
		if err := json.Unmarshal(data, &tx); err != nil {
			return nil, err
		}
		if keep(&tx) {
			out = append(out, tx)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
