// Package adapters はtasksフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"task_backend/internal/feature/tasks/domain/entity"
	"task_backend/internal/feature/tasks/usecase"
)

// TaskModel はtasksテーブルのGORMモデルです。
type TaskModel struct {
	ID          string `gorm:"primaryKey;size:36"`
	Description string `gorm:"not null"`
	Completed   bool   `gorm:"not null"`
	OwnerID     string `gorm:"size:36;not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM.
func (TaskModel) TableName() string {
	return "tasks"
}

// ToEntity converts the GORM model to a domain entity.
func (m *TaskModel) ToEntity() *entity.Task {
	return &entity.Task{
		ID:          m.ID,
		Description: m.Description,
		Completed:   m.Completed,
		Owner:       m.OwnerID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// TaskModelFromEntity converts a domain entity to a GORM model.
func TaskModelFromEntity(t *entity.Task) *TaskModel {
	return &TaskModel{
		ID:          t.ID,
		Description: t.Description,
		Completed:   t.Completed,
		OwnerID:     t.Owner,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// sortColumns maps sortable fields to column names.
var sortColumns = map[usecase.SortField]string{
	usecase.SortByCreatedAt:   "created_at",
	usecase.SortByUpdatedAt:   "updated_at",
	usecase.SortByDescription: "description",
	usecase.SortByCompleted:   "completed",
}

// taskGorm はTaskRepositoryのGORM実装です。
type taskGorm struct {
	db *gorm.DB
}

// taskGormがTaskRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.TaskRepository = (*taskGorm)(nil)

// NewTaskGorm は指定されたgorm.DB接続でtaskGormの新しいインスタンスを生成します。
func NewTaskGorm(db *gorm.DB) *taskGorm {
	return &taskGorm{db: db}
}

// Create はタスクを追加し、採番されたタイムスタンプをエンティティに反映します。
func (r *taskGorm) Create(ctx context.Context, t *entity.Task) error {
	model := TaskModelFromEntity(t)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	t.CreatedAt = model.CreatedAt
	t.UpdatedAt = model.UpdatedAt
	return nil
}

// List は所有者のタスクを絞り込み・並び替え・ページングして返します。
// 同じ値の行はidで順序を固定します。
func (r *taskGorm) List(ctx context.Context, ownerID string, opts usecase.ListOptions) ([]*entity.Task, error) {
	column, ok := sortColumns[opts.SortBy]
	if !ok {
		column = sortColumns[usecase.SortByCreatedAt]
	}

	q := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if opts.Completed != nil {
		q = q.Where("completed = ?", *opts.Completed)
	}
	q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: opts.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Skip > 0 {
		q = q.Offset(opts.Skip)
	}

	var models []TaskModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}

	tasks := make([]*entity.Task, 0, len(models))
	for i := range models {
		tasks = append(tasks, models[i].ToEntity())
	}
	return tasks, nil
}

// FindByID はIDと所有者の両方が一致するタスクを返します。
func (r *taskGorm) FindByID(ctx context.Context, id, ownerID string) (*entity.Task, error) {
	var m TaskModel
	err := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrTaskNotFound
		}
		return nil, err
	}
	return m.ToEntity(), nil
}

// Update は変更を1つのUPDATE文で適用します。
func (r *taskGorm) Update(ctx context.Context, id, ownerID string, changes usecase.TaskChanges) error {
	values := map[string]any{}
	if changes.Description != nil {
		values["description"] = *changes.Description
	}
	if changes.Completed != nil {
		values["completed"] = *changes.Completed
	}
	if len(values) == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).Model(&TaskModel{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrTaskNotFound
	}
	return nil
}

// Delete は所有者のタスクを削除します。
func (r *taskGorm) Delete(ctx context.Context, id, ownerID string) error {
	result := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&TaskModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrTaskNotFound
	}
	return nil
}

// DeleteByOwner は所有者のタスクをすべて削除します。
func (r *taskGorm) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Delete(&TaskModel{})
	return result.RowsAffected, result.Error
}
