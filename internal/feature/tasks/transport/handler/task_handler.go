// Package handler はtasksフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"task_backend/internal/feature/tasks/domain/entity"
	"task_backend/internal/feature/tasks/transport/http/dto"
	"task_backend/internal/feature/tasks/usecase"
	"task_backend/internal/platform/http/response"
	jwtmw "task_backend/internal/platform/jwt"
	"task_backend/internal/shared/patch"
)

// TaskUsecase はタスク操作のユースケースを定義します。
type TaskUsecase interface {
	Create(ctx context.Context, ownerID string, in usecase.CreateInput) (*entity.Task, error)
	List(ctx context.Context, ownerID string, q usecase.ListQuery) ([]*entity.Task, error)
	Get(ctx context.Context, ownerID, id string) (*entity.Task, error)
	Update(ctx context.Context, ownerID, id string, changes usecase.TaskChanges) (*entity.Task, error)
	Delete(ctx context.Context, ownerID, id string) (*entity.Task, error)
}

// TaskHandler はタスク関連のHTTPリクエストを処理します。
type TaskHandler struct {
	tasks TaskUsecase
}

// NewTaskHandler はTaskHandlerの新しいインスタンスを生成します。
func NewTaskHandler(tasks TaskUsecase) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// Create は POST /tasks を処理します。
func (h *TaskHandler) Create(c *gin.Context) (response.Result, error) {
	ownerID, err := ownerOf(c)
	if err != nil {
		return response.Result{}, err
	}

	body, err := c.GetRawData()
	if err != nil {
		return response.Result{}, response.BadRequest("invalid request", err)
	}
	var req dto.CreateTaskReq
	if err := patch.Decode(body, usecase.AllowedTaskFields, &req); err != nil {
		return response.Result{}, response.BadRequest("invalid request", err)
	}

	task, err := h.tasks.Create(c.Request.Context(), ownerID, req.ToInput())
	if err != nil {
		return response.Result{}, mapTaskError(err)
	}

	slog.Info("task created", "task_id", task.ID, "owner_id", ownerID)
	return response.Created(dto.NewTaskResponse(task)), nil
}

// List は GET /tasks を処理します。
// 例: GET /tasks?completed=false&limit=10&skip=0&sortBy=createdAt_desc
func (h *TaskHandler) List(c *gin.Context) (response.Result, error) {
	ownerID, err := ownerOf(c)
	if err != nil {
		return response.Result{}, err
	}

	var q dto.ListTasksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return response.Result{}, response.BadRequest("invalid query", err)
	}

	tasks, err := h.tasks.List(c.Request.Context(), ownerID, q.ToQuery())
	if err != nil {
		return response.Result{}, mapTaskError(err)
	}
	return response.OK(dto.NewTaskListResponse(tasks)), nil
}

// Get は GET /tasks/:id を処理します。
func (h *TaskHandler) Get(c *gin.Context) (response.Result, error) {
	ownerID, err := ownerOf(c)
	if err != nil {
		return response.Result{}, err
	}

	task, err := h.tasks.Get(c.Request.Context(), ownerID, c.Param("id"))
	if err != nil {
		return response.Result{}, mapTaskError(err)
	}
	return response.OK(dto.NewTaskResponse(task)), nil
}

// Update は PATCH /tasks/:id を処理します。許可リスト外のキーがあれば何も変更しません。
func (h *TaskHandler) Update(c *gin.Context) (response.Result, error) {
	ownerID, err := ownerOf(c)
	if err != nil {
		return response.Result{}, err
	}

	body, err := c.GetRawData()
	if err != nil {
		return response.Result{}, response.BadRequest("invalid update", err)
	}
	var req dto.UpdateTaskReq
	if err := patch.Decode(body, usecase.AllowedTaskFields, &req); err != nil {
		return response.Result{}, response.BadRequest("invalid update", err)
	}

	task, err := h.tasks.Update(c.Request.Context(), ownerID, c.Param("id"), req.ToChanges())
	if err != nil {
		return response.Result{}, mapTaskError(err)
	}
	return response.OK(dto.NewTaskResponse(task)), nil
}

// Delete は DELETE /tasks/:id を処理し、削除したタスクを返します。
func (h *TaskHandler) Delete(c *gin.Context) (response.Result, error) {
	ownerID, err := ownerOf(c)
	if err != nil {
		return response.Result{}, err
	}

	task, err := h.tasks.Delete(c.Request.Context(), ownerID, c.Param("id"))
	if err != nil {
		return response.Result{}, mapTaskError(err)
	}
	slog.Info("task deleted", "task_id", task.ID, "owner_id", ownerID)
	return response.OK(dto.NewTaskResponse(task)), nil
}

func ownerOf(c *gin.Context) (string, error) {
	id := jwtmw.CurrentUserID(c)
	if id == "" {
		return "", response.Unauthorized("please authenticate")
	}
	return id, nil
}

// mapTaskError はusecaseのエラーをHTTPエラーに変換します。
func mapTaskError(err error) error {
	var verr *usecase.ValidationError
	switch {
	case errors.As(err, &verr):
		return response.BadRequest(verr.Error(), err)
	case errors.Is(err, usecase.ErrInvalidQuery):
		return response.BadRequest("invalid query", err)
	case errors.Is(err, usecase.ErrTaskNotFound):
		return response.NotFound("task not found")
	default:
		return err
	}
}
