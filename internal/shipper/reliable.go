package shipper

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

type ReliabilityConfig struct {
	Name          string
	RateLimit     float64 // flush в секунду, <= 0 — без ограничения
	Burst         int
	RetryAttempts uint
	RetryDelay    time.Duration // 0 — экспоненциальный бэкофф
	MaxFailures   uint32        // подряд, после которых предохранитель размыкается
	Timeout       time.Duration // сколько предохранитель остается разомкнутым
}

// ReliableStorage оборачивает Storage: rate limiter -> circuit breaker -> retries.
type ReliableStorage struct {
	next    Storage
	cb      *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	cfg     ReliabilityConfig
}

func NewReliableStorage(next Storage, cfg ReliabilityConfig) *ReliableStorage {
	if cfg.Name == "" {
		cfg.Name = "httplog-shipper"
	}
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	maxFailures := cfg.MaxFailures
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	})

	return &ReliableStorage{
		next:    next,
		cb:      cb,
		limiter: rate.NewLimiter(limit, cfg.Burst),
		cfg:     cfg,
	}
}

func (w *ReliableStorage) WriteBatch(ctx context.Context, records []Record) error {
	if err := w.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit exceeded: %w", err)
	}

	_, err := w.cb.Execute(func() (interface{}, error) {
		r := retry.New(
			retry.Context(ctx),
			retry.Attempts(w.cfg.RetryAttempts),
			retry.DelayType(func(n uint, err error, config retry.DelayContext) time.Duration {
				if w.cfg.RetryDelay > 0 {
					return w.cfg.RetryDelay
				}
				return retry.BackOffDelay(n, err, config)
			}),
		)

		return nil, r.Do(func() error {
			return w.next.WriteBatch(ctx, records)
		})
	})
	return err
}

// State отдает текущее состояние предохранителя (для логов и тестов).
func (w *ReliableStorage) State() gobreaker.State {
	return w.cb.State()
}
