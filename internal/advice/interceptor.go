package advice

import "time"

// Interceptor исполняет advice из RuleSet вокруг вызова, не меняя его результат.
//
// Порядок записей при комбинированной регистрации детерминирован:
// before -> старт таймера around -> thunk -> afterSuccess|afterFailure -> запись around.
// Всё состояние вызова живет на стеке, сам Interceptor после New только читается.
type Interceptor struct {
	policy Policy
	sink   Sink
	rules  RuleSet
	now    func() time.Time
}

type Option func(*Interceptor)

// WithRules подменяет таблицу перехвата.
func WithRules(rs RuleSet) Option {
	return func(i *Interceptor) {
		if rs != nil {
			i.rules = rs
		}
	}
}

// WithClock подменяет источник времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(i *Interceptor) {
		if now != nil {
			i.now = now
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(i *Interceptor) {
		i.policy = i.policy.WithMetrics(m)
	}
}

func New(policy Policy, sink Sink, opts ...Option) *Interceptor {
	i := &Interceptor{
		policy: policy,
		sink:   sink,
		rules:  DefaultRules(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Interceptor) Policy() Policy {
	return i.policy
}

// Before пишет запись о начале вызова. Должен вызываться строго до thunk.
func (i *Interceptor) Before(d CallDescriptor) {
	if i == nil || !i.policy.Enabled() {
		return
	}
	i.emit(i.rules.For(d.Class).Templates.Before, fields{desc: d}, false, false)
}

// AfterSuccess пишет запись об успешном завершении и запускает хук метода, если он есть.
func (i *Interceptor) AfterSuccess(d CallDescriptor, s Success) {
	if i == nil || !i.policy.Enabled() {
		return
	}
	rule := i.rules.For(d.Class)
	i.emit(rule.Templates.AfterSuccess, fields{desc: d, result: s.Result, elapsed: s.ElapsedMillis()}, false, false)

	if hook := rule.Hooks[d.Qualified()]; hook != nil {
		i.emitHook(hook, d, s.Result)
	}
}

// AfterFailure пишет запись об ошибке. Ошибку вызывающему возвращает диспетчер, не advice.
func (i *Interceptor) AfterFailure(d CallDescriptor, f Failure) {
	if i == nil || !i.policy.Enabled() {
		return
	}
	rule := i.rules.For(d.Class)
	i.emit(rule.Templates.AfterFailure, fields{desc: d, err: f.Err, panic: f.Panicked, elapsed: f.ElapsedMillis()}, true, rule.EscalateFailures)
}

// Around оборачивает вызов замером времени. При выключенной политике thunk
// вызывается напрямую, без чтения часов.
func (i *Interceptor) Around(d CallDescriptor, thunk Thunk) (any, error) {
	if i == nil || !i.policy.Enabled() {
		return thunk()
	}
	return i.run(d, i.rules.For(d.Class), thunk, plan{around: true})
}

// Invoke выполняет все advice, зарегистрированные в правиле для класса вызова.
func (i *Interceptor) Invoke(d CallDescriptor, thunk Thunk) (any, error) {
	if i == nil || !i.policy.Enabled() {
		return thunk()
	}
	rule := i.rules.For(d.Class)
	p := plan{
		before:       rule.Has(KindBefore),
		afterSuccess: rule.Has(KindAfterSuccess),
		afterFailure: rule.Has(KindAfterFailure),
		around:       rule.Has(KindAround),
	}
	return i.run(d, rule, thunk, p)
}

type plan struct {
	before       bool
	afterSuccess bool
	afterFailure bool
	around       bool
}

func (i *Interceptor) run(d CallDescriptor, rule Rule, thunk Thunk, p plan) (any, error) {
	if p.before {
		i.Before(d)
	}

	start := i.now()
	completed := false

	// Паника в thunk — тоже сбой. recover не вызываем: паника идет дальше с исходным стеком.
	defer func() {
		if completed {
			return
		}
		i.failed(d, rule, p, Failure{Panicked: true, Elapsed: i.since(start)})
	}()

	result, err := thunk()
	completed = true
	elapsed := i.since(start)

	if err != nil {
		i.failed(d, rule, p, Failure{Err: err, Elapsed: elapsed})
		return result, err
	}

	s := Success{Result: result, Elapsed: elapsed}
	if p.afterSuccess {
		i.AfterSuccess(d, s)
	}
	if p.around {
		i.emit(rule.Templates.AroundSuccess, fields{desc: d, result: result, elapsed: s.ElapsedMillis()}, false, false)
	}
	return result, nil
}

func (i *Interceptor) failed(d CallDescriptor, rule Rule, p plan, f Failure) {
	if p.afterFailure {
		i.AfterFailure(d, f)
	}
	if p.around {
		i.emit(rule.Templates.AroundFailure, fields{desc: d, err: f.Err, panic: f.Panicked, elapsed: f.ElapsedMillis()}, true, rule.EscalateFailures)
	}
}

// since никогда не возвращает отрицательную длительность.
func (i *Interceptor) since(start time.Time) time.Duration {
	elapsed := i.now().Sub(start)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

func (i *Interceptor) emit(tmpl string, f fields, failure, escalate bool) {
	if tmpl == "" {
		return
	}
	// render может упасть на чужом String(), это тоже ошибка логирования
	defer func() {
		if r := recover(); r != nil {
			i.policy.sinkFailed()
		}
	}()

	msg := render(tmpl, f)
	if failure {
		i.policy.EmitFailure(i.sink, msg, escalate)
		return
	}
	i.policy.Emit(i.sink, msg)
}

func (i *Interceptor) emitHook(hook Hook, d CallDescriptor, result any) {
	defer func() {
		if r := recover(); r != nil {
			i.policy.sinkFailed()
		}
	}()
	if msg := hook(d, result); msg != "" {
		i.policy.Emit(i.sink, msg)
	}
}
