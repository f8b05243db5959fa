package middleware

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xela07ax/httplog-starter/internal/advice"
)

// StatusError — ответ 5xx. Для advice это сбой обработчика, хотя сам ответ клиенту уже ушел.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("handler responded with %d %s", e.Code, http.StatusText(e.Code))
}

// HandlerFunc явно регистрирует один HTTP-обработчик для перехвата.
// Перехватываются только GET/POST/PUT/DELETE, остальные методы проходят насквозь.
func HandlerFunc(i *advice.Interceptor, receiver, method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !intercepted(r.Method) {
			h(w, r)
			return
		}
		serve(i, describe(receiver, method, r), h, w, r)
	}
}

// Middleware — вариант для chi. Имя метода берется из шаблона маршрута,
// поэтому подключать его лучше через r.With(...), где маршрут уже сматчен;
// на глобальном уровне (r.Use) имя будет "METHOD /path".
func Middleware(i *advice.Interceptor, receiver string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !intercepted(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			serve(i, describe(receiver, routeName(r), r), next.ServeHTTP, w, r)
		})
	}
}

func serve(i *advice.Interceptor, d advice.CallDescriptor, h http.HandlerFunc, w http.ResponseWriter, r *http.Request) {
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

	// Ответ уже записан обработчиком, поэтому ошибку Invoke дальше не передаем.
	// Паника обработчика уходит выше (например, в middleware.Recoverer) как есть.
	_, _ = i.Invoke(d, func() (any, error) {
		h(rec, r)
		result := fmt.Sprintf("%d %s", rec.status, http.StatusText(rec.status))
		if rec.status >= http.StatusInternalServerError {
			return result, &StatusError{Code: rec.status}
		}
		return result, nil
	})
}

func describe(receiver, method string, r *http.Request) advice.CallDescriptor {
	return advice.Describe(advice.HttpHandler, receiver, method, r.Method, r.URL.RequestURI())
}

func intercepted(method string) bool {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

func routeName(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return r.Method + " " + pattern
		}
	}
	return r.Method + " " + r.URL.Path
}

// statusRecorder запоминает код ответа.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if !s.wroteHeader {
		s.status = code
		s.wroteHeader = true
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	s.wroteHeader = true
	return s.ResponseWriter.Write(b)
}

// Unwrap нужен http.ResponseController (Flush, deadlines).
func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}
