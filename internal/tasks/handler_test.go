package tasks

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/httplog-starter/internal/advice"
)

func newTestRouter(t *testing.T, enabled bool) (http.Handler, *lines) {
	t.Helper()
	sink := &lines{}
	rules := advice.DefaultRules().WithHooks(advice.ServiceMethod, Hooks())
	i := advice.New(advice.NewPolicy(enabled, "INFO"), sink, advice.WithRules(rules))

	r := chi.NewRouter()
	r.Mount("/tasks", NewHandler(NewService(NewMemoryRepository(), i), i).Routes())
	return r, sink
}

func TestHandler_CreateThenGet(t *testing.T) {
	router, sink := newTestRouter(t, true)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(`{"title":"write docs"}`)))
	require.Equal(t, http.StatusCreated, rr.Code)

	var created Task
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, "write docs", created.Title)

	msgs := sink.messages()
	require.Len(t, msgs, 6)
	assert.Equal(t, "Request received: method CreateTask", msgs[0])
	assert.Equal(t, "The method TaskService.CreateTask was called with arguments: [write docs, ]", msgs[1])
	assert.Equal(t, "A new task was created with id: "+created.ID, msgs[3])
	assert.Equal(t, "Response sent: method CreateTask, result: 201 Created", msgs[4])
	assert.True(t, strings.HasPrefix(msgs[5], "The method TaskHandler.CreateTask was completed for "), msgs[5])

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/tasks/"+created.ID, nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestHandler_NotFound(t *testing.T) {
	router, sink := newTestRouter(t, true)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/tasks/missing", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	msgs := sink.messages()
	require.Len(t, msgs, 5)
	assert.Equal(t, "The method TaskService.DeleteTask was completed with error: task not found", msgs[2])
	assert.Equal(t, "Response sent: method DeleteTask, result: 404 Not Found", msgs[3])
}

func TestHandler_BadBody(t *testing.T) {
	router, _ := newTestRouter(t, true)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/tasks/1", strings.NewReader("{")))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_DisabledPolicyStillServes(t *testing.T) {
	router, sink := newTestRouter(t, false)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/tasks", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
	assert.Empty(t, sink.messages())
}
