package workers

import (
	"context"
	"time"

	"membership_backend/internal/logger"
	"membership_backend/internal/store"
)

// ExpiryWorker sweeps the stores on a fixed interval: PENDING
// transactions past their deadline flip to EXPIRED, sessions past their
// expiry are deleted. It never re-polls providers; a webhook lost before
// the transaction existed locally stays PENDING until the sweep expires
// it.
type ExpiryWorker struct {
	transactions store.TransactionStore
	sessions     store.SessionStore
	interval     time.Duration
}

func NewExpiryWorker(transactions store.TransactionStore, sessions store.SessionStore, interval time.Duration) *ExpiryWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &ExpiryWorker{
		transactions: transactions,
		sessions:     sessions,
		interval:     interval,
	}
}

// Start launches the sweep loop in the background.
func (w *ExpiryWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *ExpiryWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("expiry worker stopped")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep runs one cleanup round over both stores.
func (w *ExpiryWorker) Sweep(ctx context.Context) {
	expiredTx, err := w.transactions.CleanupExpired(ctx)
	logger.WorkerLog("expiry", "transaction sweep", err)
	if err == nil && expiredTx > 0 {
		logger.Info("expired pending transactions", "count", expiredTx)
	}

	removedSessions, err := w.sessions.CleanupExpired(ctx)
	logger.WorkerLog("expiry", "session sweep", err)
	if err == nil && removedSessions > 0 {
		logger.Info("removed expired sessions", "count", removedSessions)
	}
}
