package advice

import "maps"

// Kind — вид advice, зарегистрированного для класса операций.
type Kind int

const (
	KindBefore Kind = iota
	KindAfterSuccess
	KindAfterFailure
	KindAround
)

func (k Kind) String() string {
	switch k {
	case KindBefore:
		return "before"
	case KindAfterSuccess:
		return "after_success"
	case KindAfterFailure:
		return "after_failure"
	case KindAround:
		return "around"
	default:
		return "unknown"
	}
}

// Templates — шаблоны сообщений. Плейсхолдеры: {receiver}, {method}, {args},
// {result}, {error}, {elapsed}. Пустой шаблон отключает соответствующую запись.
type Templates struct {
	Before        string
	AfterSuccess  string
	AfterFailure  string
	AroundSuccess string
	AroundFailure string
}

// Hook строит дополнительную запись об успешном вызове конкретного метода.
// Пустая строка — записи не будет.
type Hook func(d CallDescriptor, result any) string

// Rule — строка таблицы перехвата.
type Rule struct {
	Advices          []Kind
	Templates        Templates
	EscalateFailures bool            // true: записи об ошибках идут с уровнем ERROR
	Hooks            map[string]Hook // ключ — "Receiver.Method"
}

func (r Rule) Has(k Kind) bool {
	for _, a := range r.Advices {
		if a == k {
			return true
		}
	}
	return false
}

// RuleSet — статическая таблица OperationClass -> Rule. Собирается при старте.
type RuleSet map[OperationClass]Rule

const (
	tmplServiceFailure = "The method {receiver}.{method} was completed with error: {error}"
	tmplAroundSuccess  = "The method {receiver}.{method} was completed for {elapsed} ms"
	tmplAroundFailure  = "The method {receiver}.{method} was completed with error"
)

// DefaultRules воспроизводит оба набора сообщений: HTTP-обработчики и сервисный слой,
// плюс отдельный класс Tracked для замера времени.
func DefaultRules() RuleSet {
	return RuleSet{
		HttpHandler: {
			Advices: []Kind{KindBefore, KindAfterSuccess, KindAround},
			Templates: Templates{
				Before:        "Request received: method {method}",
				AfterSuccess:  "Response sent: method {method}, result: {result}",
				AfterFailure:  tmplServiceFailure,
				AroundSuccess: tmplAroundSuccess,
				AroundFailure: tmplAroundFailure,
			},
			EscalateFailures: true,
		},
		ServiceMethod: {
			Advices: []Kind{KindBefore, KindAfterSuccess, KindAfterFailure},
			Templates: Templates{
				Before:        "The method {receiver}.{method} was called with arguments: {args}",
				AfterSuccess:  "The method {receiver}.{method} was successfully completed",
				AfterFailure:  tmplServiceFailure,
				AroundSuccess: tmplAroundSuccess,
				AroundFailure: tmplAroundFailure,
			},
			EscalateFailures: true,
		},
		Tracked: {
			Advices: []Kind{KindAround},
			Templates: Templates{
				Before:        "The method {receiver}.{method} was called with arguments: {args}",
				AfterSuccess:  "The method {receiver}.{method} was successfully completed",
				AfterFailure:  tmplServiceFailure,
				AroundSuccess: tmplAroundSuccess,
				AroundFailure: "The method {receiver}.{method} was completed with error for {elapsed} ms",
			},
			EscalateFailures: true,
		},
	}
}

// For возвращает правило для класса. Если класс в таблице не описан, берется
// правило по умолчанию для этого класса, а для неизвестных классов — сервисное.
func (rs RuleSet) For(class OperationClass) Rule {
	if r, ok := rs[class]; ok {
		return r
	}
	defaults := DefaultRules()
	if r, ok := defaults[class]; ok {
		return r
	}
	return defaults[ServiceMethod]
}

// WithHooks возвращает копию таблицы, в которой к правилу класса добавлены хуки.
func (rs RuleSet) WithHooks(class OperationClass, hooks map[string]Hook) RuleSet {
	out := maps.Clone(rs)
	if out == nil {
		out = RuleSet{}
	}
	r := out.For(class)
	merged := make(map[string]Hook, len(r.Hooks)+len(hooks))
	maps.Copy(merged, r.Hooks)
	maps.Copy(merged, hooks)
	r.Hooks = merged
	out[class] = r
	return out
}
