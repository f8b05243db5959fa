package tasks

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/httplog-starter/internal/advice"
)

type lines struct {
	mu  sync.Mutex
	all []string
	lvl []advice.Level
}

func (l *lines) Log(level advice.Level, message string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.all = append(l.all, message)
	l.lvl = append(l.lvl, level)
	return nil
}

func (l *lines) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.all...)
}

func (l *lines) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.all, l.lvl = nil, nil
}

func newTestService(t *testing.T) (*Service, *lines) {
	t.Helper()
	sink := &lines{}
	rules := advice.DefaultRules().WithHooks(advice.ServiceMethod, Hooks())
	i := advice.New(advice.NewPolicy(true, "INFO"), sink, advice.WithRules(rules))
	return NewService(NewMemoryRepository(), i), sink
}

func TestService_CreateTaskLogs(t *testing.T) {
	s, sink := newTestService(t)

	task, err := s.CreateTask(context.Background(), "buy milk", "2 liters")
	require.NoError(t, err)
	assert.Equal(t, StatusNew, task.Status)
	assert.NotEmpty(t, task.ID)

	assert.Equal(t, []string{
		"The method TaskService.CreateTask was called with arguments: [buy milk, 2 liters]",
		"The method TaskService.CreateTask was successfully completed",
		"A new task was created with id: " + task.ID,
	}, sink.messages())
}

func TestService_CreateTaskValidation(t *testing.T) {
	s, sink := newTestService(t)

	_, err := s.CreateTask(context.Background(), "  ", "")
	require.ErrorIs(t, err, ErrInvalid)

	msgs := sink.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "The method TaskService.CreateTask was completed with error: invalid task: title is required", msgs[1])
	assert.Equal(t, advice.LevelError, sink.lvl[1])
}

func TestService_UpdateAndDeleteHooks(t *testing.T) {
	s, sink := newTestService(t)
	ctx := context.Background()

	task, err := s.CreateTask(ctx, "draft", "")
	require.NoError(t, err)
	sink.reset()

	title, status := "final", StatusDone
	updated, err := s.UpdateTask(ctx, task.ID, Update{Title: &title, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Title)
	assert.Equal(t, StatusDone, updated.Status)

	require.NoError(t, s.DeleteTask(ctx, task.ID))

	msgs := sink.messages()
	require.Len(t, msgs, 6)
	assert.Equal(t, `The task was updated with id: `+task.ID+`. Arguments with updates: [`+task.ID+`, Update{title="final", status=DONE}]`, msgs[2])
	assert.Equal(t, "The task deleted with id: "+task.ID, msgs[5])

	_, err = s.GetTask(ctx, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_UpdateRejectsUnknownStatus(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	task, err := s.CreateTask(ctx, "x", "")
	require.NoError(t, err)

	bad := Status("ARCHIVED")
	_, err = s.UpdateTask(ctx, task.ID, Update{Status: &bad})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestService_ListTasksIsTracked(t *testing.T) {
	s, sink := newTestService(t)
	ctx := context.Background()

	_, err := s.CreateTask(ctx, "a", "")
	require.NoError(t, err)
	sink.reset()

	list, err := s.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	msgs := sink.messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "The method TaskService.ListTasks was called with arguments: []", msgs[0])
	assert.True(t, strings.HasPrefix(msgs[1], "The method TaskService.ListTasks was completed for "), msgs[1])
	assert.Equal(t, "The method TaskService.ListTasks was successfully completed", msgs[2])
}

func TestService_WithoutInterceptor(t *testing.T) {
	s := NewService(NewMemoryRepository(), nil)

	task, err := s.CreateTask(context.Background(), "quiet", "")
	require.NoError(t, err)

	got, err := s.GetTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, task, got)
}
