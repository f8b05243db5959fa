package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xela07ax/httplog-starter/internal/advice"
)

const receiver = "TaskService"

// Repository описывает требования сервиса к хранилищу задач
type Repository interface {
	Create(ctx context.Context, t Task) error
	Get(ctx context.Context, id string) (Task, error)
	List(ctx context.Context) ([]Task, error)
	Update(ctx context.Context, t Task) error
	Delete(ctx context.Context, id string) error
}

// Service — сервисный слой. Каждый метод проходит через Interceptor как ServiceMethod,
// ListTasks дополнительно замеряется как Tracked.
type Service struct {
	repo Repository
	i    *advice.Interceptor
	now  func() time.Time
}

func NewService(repo Repository, i *advice.Interceptor) *Service {
	return &Service{repo: repo, i: i, now: time.Now}
}

func (s *Service) CreateTask(ctx context.Context, title, description string) (Task, error) {
	d := advice.Describe(advice.ServiceMethod, receiver, "CreateTask", title, description)
	return advice.Call(s.i, d, func() (Task, error) {
		if strings.TrimSpace(title) == "" {
			return Task{}, fmt.Errorf("%w: title is required", ErrInvalid)
		}
		now := s.now()
		t := Task{
			ID:          uuid.NewString(),
			Title:       title,
			Description: description,
			Status:      StatusNew,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.repo.Create(ctx, t); err != nil {
			return Task{}, err
		}
		return t, nil
	})
}

func (s *Service) GetTask(ctx context.Context, id string) (Task, error) {
	d := advice.Describe(advice.ServiceMethod, receiver, "GetTask", id)
	return advice.Call(s.i, d, func() (Task, error) {
		return s.repo.Get(ctx, id)
	})
}

func (s *Service) ListTasks(ctx context.Context) ([]Task, error) {
	d := advice.Describe(advice.ServiceMethod, receiver, "ListTasks")
	return advice.Call(s.i, d, func() ([]Task, error) {
		return advice.Call(s.i, advice.Describe(advice.Tracked, receiver, "ListTasks"), func() ([]Task, error) {
			return s.repo.List(ctx)
		})
	})
}

func (s *Service) UpdateTask(ctx context.Context, id string, u Update) (Task, error) {
	d := advice.Describe(advice.ServiceMethod, receiver, "UpdateTask", id, u)
	return advice.Call(s.i, d, func() (Task, error) {
		t, err := s.repo.Get(ctx, id)
		if err != nil {
			return Task{}, err
		}
		if u.Title != nil {
			if strings.TrimSpace(*u.Title) == "" {
				return Task{}, fmt.Errorf("%w: title must not be empty", ErrInvalid)
			}
			t.Title = *u.Title
		}
		if u.Description != nil {
			t.Description = *u.Description
		}
		if u.Status != nil {
			if !u.Status.Valid() {
				return Task{}, fmt.Errorf("%w: unknown status %q", ErrInvalid, *u.Status)
			}
			t.Status = *u.Status
		}
		t.UpdatedAt = s.now()

		if err := s.repo.Update(ctx, t); err != nil {
			return Task{}, err
		}
		return t, nil
	})
}

func (s *Service) DeleteTask(ctx context.Context, id string) error {
	d := advice.Describe(advice.ServiceMethod, receiver, "DeleteTask", id)
	return advice.Exec(s.i, d, func() error {
		return s.repo.Delete(ctx, id)
	})
}

// Hooks — доменные записи поверх общих шаблонов сервисного слоя.
func Hooks() map[string]advice.Hook {
	return map[string]advice.Hook{
		receiver + ".CreateTask": func(_ advice.CallDescriptor, result any) string {
			t, ok := result.(Task)
			if !ok {
				return ""
			}
			return "A new task was created with id: " + t.ID
		},
		receiver + ".UpdateTask": func(d advice.CallDescriptor, result any) string {
			t, ok := result.(Task)
			if !ok {
				return ""
			}
			return fmt.Sprintf("The task was updated with id: %s. Arguments with updates: %s", t.ID, advice.FormatArgs(d.Arguments))
		},
		receiver + ".DeleteTask": func(d advice.CallDescriptor, _ any) string {
			if len(d.Arguments) == 0 {
				return ""
			}
			return fmt.Sprintf("The task deleted with id: %v", d.Arguments[0])
		},
	}
}
