package apis

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/counseldesk/counseldesk/internal/common/httpx"
	"github.com/counseldesk/counseldesk/internal/counselsrv/db"
	"github.com/counseldesk/counseldesk/internal/counselsrv/db/models"
	"github.com/counseldesk/counseldesk/pkg/types"
)

type taskRequest struct {
	MatterID   string     `json:"matter_id" validate:"required,uuid"`
	Title      string     `json:"title" validate:"required"`
	AssigneeID string     `json:"assignee_id"`
	DueAt      *time.Time `json:"due_at"`
}

type taskResponse struct {
	TaskID     string     `json:"task_id"`
	MatterID   string     `json:"matter_id"`
	Title      string     `json:"title"`
	Status     string     `json:"status"`
	AssigneeID string     `json:"assignee_id"`
	DueAt      *time.Time `json:"due_at,omitempty"`
}

func taskRsp(task *models.Task) *taskResponse {
	rsp := &taskResponse{
		TaskID:     task.TaskID.String(),
		MatterID:   task.MatterID.String(),
		Title:      task.Title,
		Status:     string(task.Status),
		AssigneeID: string(task.AssigneeID),
	}
	if task.DueAt.Valid {
		rsp.DueAt = &task.DueAt.Time
	}
	return rsp
}

func createTask(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	req := &taskRequest{}
	if err := httpx.GetRequestData(r, req); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	matterID, parseErr := uuid.Parse(req.MatterID)
	if parseErr != nil {
		return nil, httpx.ErrInvalidRequest("invalid matter_id")
	}

	d, err := db.Scoped(ctx)
	if err != nil {
		return nil, err
	}
	task := &models.Task{
		MatterID:   matterID,
		Title:      req.Title,
		AssigneeID: types.UserId(req.AssigneeID),
	}
	if req.DueAt != nil {
		task.DueAt = sql.NullTime{Time: *req.DueAt, Valid: true}
	}
	if err := d.CreateTask(ctx, task); err != nil {
		return nil, err
	}

	return &httpx.Response{
		StatusCode: http.StatusCreated,
		Location:   "/tasks/" + task.TaskID.String(),
		Response:   taskRsp(task),
	}, nil
}

func getTask(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	taskID, err := uuidParam(r, chi.URLParam(r, "taskID"))
	if err != nil {
		return nil, err
	}
	d, dbErr := db.Scoped(ctx)
	if dbErr != nil {
		return nil, dbErr
	}
	task, dbErr := d.GetTask(ctx, taskID)
	if dbErr != nil {
		return nil, dbErr
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: taskRsp(task)}, nil
}

func listTasks(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	matterID, err := uuidParam(r, r.URL.Query().Get("matter_id"))
	if err != nil {
		return nil, httpx.ErrInvalidRequest("matter_id query parameter is required")
	}

	d, dbErr := db.Scoped(ctx)
	if dbErr != nil {
		return nil, dbErr
	}
	tasks, dbErr := d.ListTasks(ctx, matterID)
	if dbErr != nil {
		return nil, dbErr
	}
	rsp := make([]*taskResponse, 0, len(tasks))
	for _, task := range tasks {
		rsp = append(rsp, taskRsp(task))
	}
	return &httpx.Response{StatusCode: http.StatusOK, Response: rsp}, nil
}

type updateTaskStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=todo in_progress done"`
}

func updateTaskStatus(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	taskID, err := uuidParam(r, chi.URLParam(r, "taskID"))
	if err != nil {
		return nil, err
	}
	req := &updateTaskStatusRequest{}
	if err := httpx.GetRequestData(r, req); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	d, dbErr := db.Scoped(ctx)
	if dbErr != nil {
		return nil, dbErr
	}
	if err := d.UpdateTaskStatus(ctx, taskID, models.TaskStatus(req.Status)); err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusNoContent}, nil
}

func deleteTask(r *http.Request) (*httpx.Response, error) {
	ctx := r.Context()

	taskID, err := uuidParam(r, chi.URLParam(r, "taskID"))
	if err != nil {
		return nil, err
	}
	d, dbErr := db.Scoped(ctx)
	if dbErr != nil {
		return nil, dbErr
	}
	if err := d.DeleteTask(ctx, taskID); err != nil {
		return nil, err
	}
	return &httpx.Response{StatusCode: http.StatusNoContent}, nil
}
