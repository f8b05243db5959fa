package tasks

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound = errors.New("task not found")
	ErrInvalid  = errors.New("invalid task")
)

type Status string

const (
	StatusNew        Status = "NEW"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusDone:
		return true
	default:
		return false
	}
}

type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// String используется при выводе аргументов и результатов в логах.
func (t Task) String() string {
	return fmt.Sprintf("Task{id=%s, title=%q, status=%s}", t.ID, t.Title, t.Status)
}

// Update — изменяемые поля. nil означает "не трогать".
type Update struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *Status `json:"status,omitempty"`
}

func (u Update) String() string {
	out := "Update{"
	sep := ""
	if u.Title != nil {
		out += fmt.Sprintf("title=%q", *u.Title)
		sep = ", "
	}
	if u.Description != nil {
		out += fmt.Sprintf("%sdescription=%q", sep, *u.Description)
		sep = ", "
	}
	if u.Status != nil {
		out += fmt.Sprintf("%sstatus=%s", sep, *u.Status)
	}
	return out + "}"
}
