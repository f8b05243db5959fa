package advice

import (
	"errors"

	"go.uber.org/zap"
)

// Sink принимает готовую пару (level, message). Форматирование и доставка — его забота,
// ядро считает вызов fire-and-forget и ошибку только учитывает.
type Sink interface {
	Log(level Level, message string) error
}

// SinkFunc позволяет использовать обычную функцию как Sink.
type SinkFunc func(level Level, message string) error

func (f SinkFunc) Log(level Level, message string) error {
	return f(level, message)
}

// ZapSink пишет записи в zap.Logger.
type ZapSink struct {
	logger *zap.Logger
}

func NewZapSink(logger *zap.Logger) *ZapSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapSink{logger: logger}
}

func (s *ZapSink) Log(level Level, message string) error {
	switch level {
	case LevelDebug:
		s.logger.Debug(message)
	case LevelWarn:
		s.logger.Warn(message)
	case LevelError:
		s.logger.Error(message)
	default:
		s.logger.Info(message)
	}
	return nil
}

// MultiSink рассылает запись во все sink'и. Отказ одного не мешает остальным.
type MultiSink []Sink

func (m MultiSink) Log(level Level, message string) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Log(level, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
