package shipper

/*
Shipper — буферизованный Sink для advice-слоя.

- Non-blocking: Log только кладет запись в канал, горячий путь обернутого вызова
  не ждет записи в БД.
- Batching: воркер копит записи и пишет пачкой по размеру или по таймеру.
- Drain: Stop закрывает вход и ждет, пока воркер вычитает остаток и сделает финальный flush.
- Load Shedding: при переполнении запись сбрасывается, Log возвращает ошибку
  (advice ее проглатывает и считает в метриках).
*/

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xela07ax/httplog-starter/internal/advice"
	"go.uber.org/zap"
)

var (
	ErrStopped    = errors.New("shipper: stopped")
	ErrBufferFull = errors.New("shipper: buffer full")
)

// Storage определяет, куда физически сохраняются записи.
type Storage interface {
	// WriteBatch сохраняет пачку записей за один раз
	WriteBatch(ctx context.Context, records []Record) error
}

type Shipper struct {
	ch      chan Record
	repo    Storage
	logger  *zap.Logger
	metrics *advice.Metrics

	batchSize     int
	flushInterval time.Duration
	flushTimeout  time.Duration

	mu     sync.RWMutex // защищает закрытие канала от конкурентных Log
	closed bool
	wg     sync.WaitGroup
	once   sync.Once
}

type Option func(*Shipper)

func WithBufferSize(n int) Option {
	return func(s *Shipper) {
		if n > 0 {
			s.ch = make(chan Record, n)
		}
	}
}

func WithBatchSize(n int) Option {
	return func(s *Shipper) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

func WithFlushInterval(d time.Duration) Option {
	return func(s *Shipper) {
		if d > 0 {
			s.flushInterval = d
		}
	}
}

func WithMetrics(m *advice.Metrics) Option {
	return func(s *Shipper) { s.metrics = m }
}

func New(repo Storage, logger *zap.Logger, opts ...Option) *Shipper {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Shipper{
		ch:            make(chan Record, 10000),
		repo:          repo,
		logger:        logger.With(zap.String("mod", "shipper")),
		batchSize:     100,
		flushInterval: 500 * time.Millisecond,
		flushTimeout:  10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Shipper) Start() {
	s.wg.Add(1)
	go s.worker()
}

// Stop «запирает» вход в канал и ждет, пока воркер всё допишет. Повторный вызов безопасен.
func (s *Shipper) Stop() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.ch)
		s.mu.Unlock()

		s.logger.Info("stopping shipper: closing channel and flushing buffer...")
		s.wg.Wait()
		s.logger.Info("shipper stopped gracefully")
	})
}

// Log реализует advice.Sink.
func (s *Shipper) Log(level advice.Level, message string) error {
	rec := Record{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		Timestamp: time.Now(),
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		s.dropped()
		return ErrStopped
	}

	select {
	case s.ch <- rec:
		if s.metrics != nil {
			s.metrics.ShipperBufferFill.Set(float64(len(s.ch)))
		}
		return nil
	default:
		s.dropped()
		return ErrBufferFull
	}
}

func (s *Shipper) dropped() {
	if s.metrics != nil {
		s.metrics.ShipperDropped.Inc()
	}
}

func (s *Shipper) worker() {
	defer s.wg.Done()

	batch := make([]Record, 0, s.batchSize)
	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		// Background: основной контекст к моменту Stop уже может быть отменен
		ctx, cancel := context.WithTimeout(context.Background(), s.flushTimeout)
		defer cancel()

		if err := s.repo.WriteBatch(ctx, batch); err != nil {
			s.logger.Error("records flush failed", zap.Int("size", len(batch)), zap.Error(err))
		}
		batch = make([]Record, 0, s.batchSize)
		if s.metrics != nil {
			s.metrics.ShipperBufferFill.Set(float64(len(s.ch)))
		}
	}

	for {
		select {
		case rec, ok := <-s.ch:
			if !ok {
				// Канал закрыт в Stop: всё, что было в очереди, уже вычитано
				flush()
				s.logger.Info("shipper worker finished")
				return
			}
			batch = append(batch, rec)
			if len(batch) >= s.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
