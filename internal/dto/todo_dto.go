package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateTodoRequest struct {
	Title string `json:"title"`
}

type UpdateTodoRequest struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

type TodoResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// QuotaInfo tells the client where it stands against its tier limit so the
// UI can disable the input and show the limit text without a second call.
type QuotaInfo struct {
	Tier      string `json:"tier"`
	Limit     int    `json:"limit"`
	Used      int    `json:"used"`
	Remaining int    `json:"remaining"`
	CanAdd    bool   `json:"can_add"`
	Message   string `json:"message"`
}

type TodoListResponse struct {
	Todos []TodoResponse `json:"todos"`
	Quota QuotaInfo      `json:"quota"`
}
