package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"task_backend/internal/feature/tasks/domain/entity"
)

// AllowedTaskFields はタスクの作成・更新で受け付けるフィールドです。
var AllowedTaskFields = []string{"description", "completed"}

// sortFields はsortByで指定可能なフィールドです。
var sortFields = map[string]SortField{
	string(SortByCreatedAt):   SortByCreatedAt,
	string(SortByUpdatedAt):   SortByUpdatedAt,
	string(SortByDescription): SortByDescription,
	string(SortByCompleted):   SortByCompleted,
}

// CreateInput はタスク作成の入力です。
type CreateInput struct {
	Description string
	Completed   *bool
}

// ListQuery はクエリ文字列から読み取った一覧取得の条件です。
type ListQuery struct {
	Completed *bool
	Limit     int
	Skip      int
	SortBy    string // "<field>_<asc|desc>"
}

// TaskUsecase はタスクのビジネスロジックを実装します。
// すべての操作は呼び出したユーザーのタスクに限定されます。
type TaskUsecase struct {
	tasks TaskRepository
}

// NewTaskUsecase はTaskUsecaseの新しいインスタンスを生成します。
func NewTaskUsecase(tasks TaskRepository) *TaskUsecase {
	return &TaskUsecase{tasks: tasks}
}

// Create は所有者を認証済みユーザーに固定してタスクを作成します。
func (u *TaskUsecase) Create(ctx context.Context, ownerID string, in CreateInput) (*entity.Task, error) {
	description := strings.TrimSpace(in.Description)
	if err := validateDescription(description); err != nil {
		return nil, err
	}

	task := &entity.Task{
		ID:          uuid.NewString(),
		Description: description,
		Owner:       ownerID,
	}
	if in.Completed != nil {
		task.Completed = *in.Completed
	}
	if err := u.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// List は所有者のタスクを条件に従って返します。
func (u *TaskUsecase) List(ctx context.Context, ownerID string, q ListQuery) ([]*entity.Task, error) {
	opts, err := ParseListOptions(q)
	if err != nil {
		return nil, err
	}
	return u.tasks.List(ctx, ownerID, opts)
}

// ParseListOptions はListQueryを検証し、ストアに渡すListOptionsに変換します。
// 方向が "desc" 以外の場合は昇順です。
func ParseListOptions(q ListQuery) (ListOptions, error) {
	if q.Limit < 0 {
		return ListOptions{}, fmt.Errorf("%w: limit must not be negative", ErrInvalidQuery)
	}
	if q.Skip < 0 {
		return ListOptions{}, fmt.Errorf("%w: skip must not be negative", ErrInvalidQuery)
	}

	opts := ListOptions{
		Completed: q.Completed,
		Limit:     q.Limit,
		Skip:      q.Skip,
		SortBy:    SortByCreatedAt,
	}
	if q.SortBy == "" {
		return opts, nil
	}

	name, dir, _ := strings.Cut(q.SortBy, "_")
	field, ok := sortFields[name]
	if !ok {
		return ListOptions{}, fmt.Errorf("%w: cannot sort by %q", ErrInvalidQuery, name)
	}
	opts.SortBy = field
	opts.Desc = dir == "desc"
	return opts, nil
}

// Get は所有者のタスクを1件返します。
func (u *TaskUsecase) Get(ctx context.Context, ownerID, id string) (*entity.Task, error) {
	return u.tasks.FindByID(ctx, id, ownerID)
}

// Update は変更を検証してから1回の書き込みで適用します。
func (u *TaskUsecase) Update(ctx context.Context, ownerID, id string, changes TaskChanges) (*entity.Task, error) {
	if changes.Description != nil {
		d := strings.TrimSpace(*changes.Description)
		if err := validateDescription(d); err != nil {
			return nil, err
		}
		changes.Description = &d
	}

	if !changes.IsEmpty() {
		if err := u.tasks.Update(ctx, id, ownerID, changes); err != nil {
			return nil, err
		}
	}
	return u.tasks.FindByID(ctx, id, ownerID)
}

// Delete は所有者のタスクを削除し、削除したタスクを返します。
func (u *TaskUsecase) Delete(ctx context.Context, ownerID, id string) (*entity.Task, error) {
	task, err := u.tasks.FindByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if err := u.tasks.Delete(ctx, id, ownerID); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteByOwner はユーザー削除時にそのユーザーのタスクをすべて削除します。
func (u *TaskUsecase) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	return u.tasks.DeleteByOwner(ctx, ownerID)
}

func validateDescription(description string) error {
	if description == "" {
		return &ValidationError{Field: "description", Message: "is required"}
	}
	return nil
}
