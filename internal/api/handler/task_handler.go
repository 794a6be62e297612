package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/crewboard/crewboard-api/internal/core/domain"
	"github.com/crewboard/crewboard-api/internal/core/ports"
)

// maxAttachmentSize caps a single uploaded file at 10 MB.
const maxAttachmentSize = 10 << 20

// TaskHandler handles HTTP requests for tasks, task comments, and
// attachments.
type TaskHandler struct {
	service ports.TaskService
	files   ports.FileStore
}

func NewTaskHandler(service ports.TaskService, files ports.FileStore) *TaskHandler {
	return &TaskHandler{service: service, files: files}
}

type createTaskRequest struct {
	ProjectID  string     `json:"project_id"  validate:"required"`
	Title      string     `json:"title"       validate:"required,min=1,max=200"`
	Desc       string     `json:"desc"        validate:"max=5000"`
	AssigneeID string     `json:"assignee_id"`
	Status     string     `json:"status"      validate:"omitempty,oneof=todo in_progress done"`
	Priority   string     `json:"priority"    validate:"omitempty,oneof=low medium high"`
	DueDate    *time.Time `json:"due_date"`
}

type updateTaskRequest struct {
	Title      *string    `json:"title"       validate:"omitempty,min=1,max=200"`
	Desc       *string    `json:"desc"        validate:"omitempty,max=5000"`
	Status     *string    `json:"status"      validate:"omitempty,oneof=todo in_progress done"`
	Priority   *string    `json:"priority"    validate:"omitempty,oneof=low medium high"`
	AssigneeID *string    `json:"assignee_id"`
	DueDate    *time.Time `json:"due_date"`
}

// Create handles POST /v1/tasks.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTaskRequest  true  "Task details"
// @Success      201   {object}  domain.Task
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.service.Create(c.Request().Context(), actor, ports.CreateTaskInput{
		ProjectID:  req.ProjectID,
		Title:      req.Title,
		Desc:       req.Desc,
		AssigneeID: req.AssigneeID,
		Status:     domain.TaskStatus(req.Status),
		Priority:   domain.TaskPriority(req.Priority),
		DueDate:    req.DueDate,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, task)
}

// List handles GET /v1/tasks.
//
// @Summary      List tasks with filters
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        project_id  query     string  false  "Limit to one project"
// @Param        status      query     string  false  "todo | in_progress | done"
// @Param        priority    query     string  false  "low | medium | high"
// @Param        assignee    query     string  false  "User ID, or the literal 'unassigned'"
// @Param        due_from    query     string  false  "RFC3339 lower bound on due date"
// @Param        due_to      query     string  false  "RFC3339 upper bound on due date"
// @Param        search      query     string  false  "Case-insensitive match on title or description"
// @Param        sort_by     query     string  false  "Sort field (default created_at)"
// @Param        sort_order  query     string  false  "asc | desc (default desc)"
// @Success      200         {array}   domain.Task
// @Failure      401         {object}  errorResponse
// @Router       /v1/tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	in := ports.ListTasksInput{
		ProjectID: c.QueryParam("project_id"),
		Status:    c.QueryParam("status"),
		Priority:  c.QueryParam("priority"),
		Assignee:  c.QueryParam("assignee"),
		Search:    c.QueryParam("search"),
		SortBy:    c.QueryParam("sort_by"),
		SortOrder: c.QueryParam("sort_order"),
	}
	if raw := c.QueryParam("due_from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "due_from must be RFC3339")
		}
		in.DueFrom = t
	}
	if raw := c.QueryParam("due_to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "due_to must be RFC3339")
		}
		in.DueTo = t
	}

	tasks, err := h.service.List(c.Request().Context(), actor, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

// Get handles GET /v1/tasks/:id.
//
// @Summary      Get a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  domain.Task
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	task, err := h.service.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// Update handles PATCH /v1/tasks/:id.
//
// @Summary      Update a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Task ID"
// @Param        body  body      updateTaskRequest  true  "Fields to update"
// @Success      200   {object}  domain.Task
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/tasks/{id} [patch]
func (h *TaskHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req updateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	in := ports.UpdateTaskInput{
		Title:      req.Title,
		Desc:       req.Desc,
		AssigneeID: req.AssigneeID,
		DueDate:    req.DueDate,
	}
	if req.Status != nil {
		s := domain.TaskStatus(*req.Status)
		in.Status = &s
	}
	if req.Priority != nil {
		p := domain.TaskPriority(*req.Priority)
		in.Priority = &p
	}

	task, err := h.service.Update(c.Request().Context(), actor, c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// Delete handles DELETE /v1/tasks/:id.
//
// @Summary      Delete a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      204  "No Content"
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListComments handles GET /v1/tasks/:id/comments.
//
// @Summary      List task comments
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {array}   commentResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/tasks/{id}/comments [get]
func (h *TaskHandler) ListComments(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	views, err := h.service.ListComments(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCommentResponses(views))
}

// AddComment handles POST /v1/tasks/:id/comments.
//
// @Summary      Comment on a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Task ID"
// @Param        body  body      addCommentRequest  true  "Comment text"
// @Success      201   {object}  commentResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/tasks/{id}/comments [post]
func (h *TaskHandler) AddComment(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req addCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	view, err := h.service.AddComment(c.Request().Context(), actor, c.Param("id"), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toCommentResponse(view))
}

// AddAttachment handles POST /v1/tasks/:id/attachments.
//
// @Summary      Upload an attachment to a task
// @Tags         tasks
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true  "Task ID"
// @Param        file  formData  file    true  "File to attach"
// @Success      201   {object}  domain.Task
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/tasks/{id}/attachments [post]
func (h *TaskHandler) AddAttachment(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if fh.Size > maxAttachmentSize {
		return echo.NewHTTPError(http.StatusBadRequest, "file exceeds the 10MB limit")
	}

	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read uploaded file")
	}
	defer src.Close()

	task, err := h.service.AddAttachment(c.Request().Context(), actor, c.Param("id"), ports.AttachmentUpload{
		OriginalName: fh.Filename,
		MimeType:     fh.Header.Get("Content-Type"),
		Size:         fh.Size,
		Content:      src,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, task)
}

// RemoveAttachment handles DELETE /v1/tasks/:id/attachments/:attachmentId.
//
// @Summary      Remove an attachment from a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id            path      string  true  "Task ID"
// @Param        attachmentId  path      string  true  "Attachment ID"
// @Success      200           {object}  domain.Task
// @Failure      403           {object}  errorResponse
// @Failure      404           {object}  errorResponse
// @Router       /v1/tasks/{id}/attachments/{attachmentId} [delete]
func (h *TaskHandler) RemoveAttachment(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	task, err := h.service.RemoveAttachment(c.Request().Context(), actor, c.Param("id"), c.Param("attachmentId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// ServeUpload handles GET /v1/uploads/:filename, streaming stored attachment
// bytes. The stored name is random, so possession of the name is the
// capability.
//
// @Summary      Download an attachment by stored file name
// @Tags         tasks
// @Produce      octet-stream
// @Security     BearerAuth
// @Param        filename  path  string  true  "Stored file name"
// @Success      200       {file}    file
// @Failure      404       {object}  errorResponse
// @Router       /v1/uploads/{filename} [get]
func (h *TaskHandler) ServeUpload(c echo.Context) error {
	if _, err := ctxActor(c); err != nil {
		return err
	}

	f, err := h.files.Open(c.Param("filename"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "file not found")
	}
	defer f.Close()

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMEOctetStream)
	c.Response().WriteHeader(http.StatusOK)
	_, err = io.Copy(c.Response(), f)
	return err
}
