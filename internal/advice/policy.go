package advice

// Policy — единственный источник правды о том, включено ли логирование и с каким уровнем.
// Собирается один раз при старте и дальше только читается, поэтому безопасна
// для конкурентного использования без синхронизации.
type Policy struct {
	enabled bool
	level   Level
	metrics *Metrics
}

// NewPolicy строит политику из уже разрешенных значений конфигурации.
// Некорректный уровень деградирует до INFO, ошибки не бывает.
func NewPolicy(enabled bool, level string) Policy {
	return Policy{enabled: enabled, level: ParseLevel(level)}
}

// DisabledPolicy выключает все advice.
func DisabledPolicy() Policy {
	return Policy{level: LevelInfo}
}

// WithMetrics возвращает копию политики, которая считает записи и отказы Sink'а.
func (p Policy) WithMetrics(m *Metrics) Policy {
	p.metrics = m
	return p
}

func (p Policy) Enabled() bool {
	return p.enabled
}

func (p Policy) Level() Level {
	if p.level == "" {
		return LevelInfo
	}
	return p.level
}

// Emit отправляет сообщение в sink с уровнем политики. При выключенной политике — no-op.
func (p Policy) Emit(sink Sink, message string) {
	p.emitAt(sink, p.Level(), message)
}

// EmitFailure пишет запись об ошибке: escalate=true поднимает ее до ERROR,
// иначе используется уровень политики.
func (p Policy) EmitFailure(sink Sink, message string, escalate bool) {
	level := p.Level()
	if escalate {
		level = LevelError
	}
	p.emitAt(sink, level, message)
}

func (p Policy) emitAt(sink Sink, level Level, message string) {
	if !p.enabled || sink == nil {
		return
	}

	// Отказ логирования никогда не должен подменять исход обернутого вызова
	defer func() {
		if r := recover(); r != nil {
			p.sinkFailed()
		}
	}()

	if err := sink.Log(level, message); err != nil {
		p.sinkFailed()
		return
	}
	if p.metrics != nil {
		p.metrics.Records.WithLabelValues(level.String()).Inc()
	}
}

func (p Policy) sinkFailed() {
	if p.metrics != nil {
		p.metrics.SinkFailures.Inc()
	}
}
