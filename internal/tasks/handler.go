package tasks

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xela07ax/httplog-starter/internal/advice"
	"github.com/xela07ax/httplog-starter/internal/middleware"
)

const handlerReceiver = "TaskHandler"

type Handler struct {
	service *Service
	i       *advice.Interceptor
}

func NewHandler(s *Service, i *advice.Interceptor) *Handler {
	return &Handler{service: s, i: i}
}

// Routes Маршруты для Chi. Каждый обработчик явно зарегистрирован для перехвата.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.wrap("ListTasks", h.List))
	r.Post("/", h.wrap("CreateTask", h.Create))
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.wrap("GetTask", h.Get))
		r.Put("/", h.wrap("UpdateTask", h.Update))
		r.Delete("/", h.wrap("DeleteTask", h.Delete))
	})
	return r
}

func (h *Handler) wrap(method string, fn http.HandlerFunc) http.HandlerFunc {
	return middleware.HandlerFunc(h.i, handlerReceiver, method, fn)
}

type createRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// List возвращает все задачи
// GET /tasks
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListTasks(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Create создает задачу
// POST /tasks
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	t, err := h.service.CreateTask(r.Context(), req.Title, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// Get GET /tasks/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.GetTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Update PUT /tasks/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var u Update
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	t, err := h.service.UpdateTask(r.Context(), chi.URLParam(r, "id"), u)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Delete DELETE /tasks/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteTask(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalid):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}
