// Package dto はtasksフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import (
	"time"

	"task_backend/internal/feature/tasks/domain/entity"
	"task_backend/internal/feature/tasks/usecase"
)

// CreateTaskReq は POST /tasks のリクエストボディです。
type CreateTaskReq struct {
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// ToInput はリクエストをusecaseの入力に変換します。
func (r CreateTaskReq) ToInput() usecase.CreateInput {
	in := usecase.CreateInput{Completed: r.Completed}
	if r.Description != nil {
		in.Description = *r.Description
	}
	return in
}

// UpdateTaskReq は PATCH /tasks/:id のリクエストボディです。
// 省略されたフィールドは変更しません。
type UpdateTaskReq struct {
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// ToChanges はリクエストをusecaseの入力に変換します。
func (r UpdateTaskReq) ToChanges() usecase.TaskChanges {
	return usecase.TaskChanges{
		Description: r.Description,
		Completed:   r.Completed,
	}
}

// ListTasksQuery は GET /tasks のクエリパラメータです。
// 例: ?completed=true&limit=10&skip=20&sortBy=createdAt_desc
type ListTasksQuery struct {
	Completed *bool  `form:"completed"`
	Limit     int    `form:"limit"`
	Skip      int    `form:"skip"`
	SortBy    string `form:"sortBy"`
}

// ToQuery はクエリをusecaseの入力に変換します。
func (q ListTasksQuery) ToQuery() usecase.ListQuery {
	return usecase.ListQuery{
		Completed: q.Completed,
		Limit:     q.Limit,
		Skip:      q.Skip,
		SortBy:    q.SortBy,
	}
}

// TaskResponse はクライアントに返すタスク表現です。
type TaskResponse struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	Owner       string    `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewTaskResponse converts a domain task into its public form.
func NewTaskResponse(t *entity.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Description: t.Description,
		Completed:   t.Completed,
		Owner:       t.Owner,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// NewTaskListResponse converts tasks into their public form.
// An empty list is encoded as [] rather than null.
func NewTaskListResponse(tasks []*entity.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, NewTaskResponse(t))
	}
	return out
}
