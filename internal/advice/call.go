package advice

// Call — типизированная обертка над Invoke для сервисного слоя:
//
//	task, err := advice.Call(i, advice.Describe(advice.ServiceMethod, "TaskService", "GetTask", id),
//		func() (*Task, error) { return s.repo.Get(ctx, id) })
//
// Результат и ошибка возвращаются без изменений. nil Interceptor просто вызывает fn.
func Call[T any](i *Interceptor, d CallDescriptor, fn func() (T, error)) (T, error) {
	res, err := i.Invoke(d, func() (any, error) {
		v, err := fn()
		return v, err
	})
	v, _ := res.(T)
	return v, err
}

// Exec — вариант Call для методов, которые возвращают только ошибку.
func Exec(i *Interceptor, d CallDescriptor, fn func() error) error {
	_, err := i.Invoke(d, func() (any, error) {
		return nil, fn()
	})
	return err
}
