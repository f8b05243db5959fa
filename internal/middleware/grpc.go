package middleware

import (
	"context"
	"strings"

	"github.com/xela07ax/httplog-starter/internal/advice"
	"google.golang.org/grpc"
)

// UnaryServerInterceptor логирует gRPC-методы как вызовы сервисного слоя.
// Ответ и ошибка обработчика (включая status.Error) возвращаются без изменений.
func UnaryServerInterceptor(i *advice.Interceptor) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		receiver, method := splitFullMethod(info.FullMethod)
		d := advice.Describe(advice.ServiceMethod, receiver, method, req)

		return i.Invoke(d, func() (any, error) {
			return handler(ctx, req)
		})
	}
}

// splitFullMethod: "/pkg.v1.TaskService/CreateTask" -> ("TaskService", "CreateTask").
func splitFullMethod(fullMethod string) (string, string) {
	name := strings.TrimPrefix(fullMethod, "/")
	idx := strings.LastIndex(name, "/")
	if idx < 0 {
		return "", name
	}
	service, method := name[:idx], name[idx+1:]
	if dot := strings.LastIndex(service, "."); dot >= 0 {
		service = service[dot+1:]
	}
	return service, method
}
