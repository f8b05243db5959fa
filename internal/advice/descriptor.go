package advice

import "time"

// OperationClass определяет, какое правило из RuleSet применяется к вызову.
type OperationClass int

const (
	// HttpHandler — вызов HTTP-обработчика (GET/POST/PUT/DELETE).
	HttpHandler OperationClass = iota
	// ServiceMethod — вызов метода сервисного слоя.
	ServiceMethod
	// Tracked — метод, явно помеченный для замера времени.
	Tracked
)

func (c OperationClass) String() string {
	switch c {
	case HttpHandler:
		return "http_handler"
	case ServiceMethod:
		return "service_method"
	case Tracked:
		return "tracked"
	default:
		return "unknown"
	}
}

// CallDescriptor описывает один перехваченный вызов. Создается диспетчером на каждый
// вызов и после этого не меняется.
type CallDescriptor struct {
	Class     OperationClass
	Receiver  string // короткое имя типа-владельца
	Method    string
	Arguments []any
}

// Describe — короткий конструктор для сервисного слоя.
func Describe(class OperationClass, receiver, method string, args ...any) CallDescriptor {
	return CallDescriptor{Class: class, Receiver: receiver, Method: method, Arguments: args}
}

// Qualified возвращает "Receiver.Method" — ключ для хуков.
func (d CallDescriptor) Qualified() string {
	if d.Receiver == "" {
		return d.Method
	}
	return d.Receiver + "." + d.Method
}

// Thunk выполняет настоящую операцию. Ненулевая ошибка — это "исключение" вызова.
type Thunk func() (any, error)

// Success — исход вызова, вернувшегося без ошибки.
type Success struct {
	Result  any
	Elapsed time.Duration
}

// Failure — исход вызова, завершившегося ошибкой (или паникой, тогда Err == nil и Panicked == true).
type Failure struct {
	Err      error
	Panicked bool
	Elapsed  time.Duration
}

func (s Success) ElapsedMillis() int64 { return millis(s.Elapsed) }
func (f Failure) ElapsedMillis() int64 { return millis(f.Elapsed) }

func millis(d time.Duration) int64 {
	if d < 0 {
		return 0
	}
	return d.Milliseconds()
}
