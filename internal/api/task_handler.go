package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/taskhub/taskhub-api/internal/api/shared"
	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/service"
	"github.com/taskhub/taskhub-api/internal/store"
)

// defaultUpcomingDays is the window applied when the upcoming filter is
// requested without an explicit day count.
const defaultUpcomingDays = 7

// TaskHandler handles task-related API requests.
type TaskHandler struct {
	taskService service.TaskService
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks handles GET /api/tasks. Filters compose through query
// parameters; applying several narrows the result to tasks matching all of
// them.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	query, err := buildTaskQuery(r.URL.Query())
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	tasks, err := h.taskService.ListTasks(r.Context(), userID, query)
	if err != nil {
		shared.RespondWithErrorAndLog(
			w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskListResponse(tasks))
}

// CreateTask handles POST /api/tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	input := service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		IsCompleted: req.IsCompleted,
		Priority:    req.Priority,
	}
	if req.DueDate != nil {
		due, err := parseDate(*req.DueDate)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid due_date format")
			return
		}
		input.DueDate = &due
	}

	task, err := h.taskService.CreateTask(r.Context(), userID, input)
	if err != nil {
		shared.RespondWithErrorAndLog(
			w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewTaskResponse(task))
}

// GetTask handles GET /api/tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.taskService.GetTask(r.Context(), userID, taskID)
	if err != nil {
		shared.RespondWithErrorAndLog(
			w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// UpdateTask handles PATCH /api/tasks/{id}. Absent fields are left
// unchanged.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	input := service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		IsCompleted: req.IsCompleted,
		Priority:    req.Priority,
	}
	if req.DueDate != nil {
		due, err := parseDate(*req.DueDate)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid due_date format")
			return
		}
		input.DueDate = &due
	}

	task, err := h.taskService.UpdateTask(r.Context(), userID, taskID, input)
	if err != nil {
		shared.RespondWithErrorAndLog(
			w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// DeleteTask handles DELETE /api/tasks/{id}. The task is moved to the trash
// rather than removed; deleting a trashed task again succeeds without effect.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), userID, taskID); err != nil {
		shared.RespondWithErrorAndLog(
			w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RestoreTask handles POST /api/tasks/{id}/restore.
func (h *TaskHandler) RestoreTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.taskService.RestoreTask(r.Context(), userID, taskID)
	if err != nil {
		shared.RespondWithErrorAndLog(
			w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// SearchTasks handles GET /api/tasks/search?q=. Results come from the search
// index and carry the indexed document shape, not the full task.
func (h *TaskHandler) SearchTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Query parameter q is required")
		return
	}

	docs, err := h.taskService.SearchTasks(r.Context(), userID, query)
	if err != nil {
		shared.RespondWithErrorAndLog(
			w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, docs)
}

// buildTaskQuery translates list query parameters into a task query.
// The owner scope is applied later by the service, never here.
func buildTaskQuery(params url.Values) (store.TaskQuery, error) {
	q := store.NewTaskQuery()

	if v := params.Get("completed"); v != "" {
		completed, err := strconv.ParseBool(v)
		if err != nil {
			return q, errInvalidParam("completed")
		}
		if completed {
			q = q.Completed()
		} else {
			q = q.NotCompleted()
		}
	}

	if v := params.Get("priority"); v != "" {
		// Invalid values poison the query; the error surfaces on execution.
		q = q.WithPriority(domain.Priority(v))
	}

	if v := params.Get("due_date"); v != "" {
		date, err := parseDate(v)
		if err != nil {
			return q, errInvalidParam("due_date")
		}
		q = q.DueOn(date)
	}

	if v := params.Get("overdue"); v != "" {
		overdue, err := strconv.ParseBool(v)
		if err != nil {
			return q, errInvalidParam("overdue")
		}
		if overdue {
			q = q.Overdue()
		}
	}

	if params.Has("upcoming") {
		days := defaultUpcomingDays
		if v := params.Get("upcoming"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil {
				return q, errInvalidParam("upcoming")
			}
			days = parsed
		}
		q = q.Upcoming(days)
	}

	if v := params.Get("include_trashed"); v != "" {
		trashed, err := strconv.ParseBool(v)
		if err != nil {
			return q, errInvalidParam("include_trashed")
		}
		if trashed {
			q = q.IncludeTrashed()
		}
	}

	return q, nil
}
