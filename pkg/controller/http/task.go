package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/hovertodo/pkg/domain/model"
	"github.com/secmon-lab/hovertodo/pkg/usecase"
	"github.com/secmon-lab/hovertodo/pkg/utils/errutil"
)

const (
	msgDescriptionRequired = "Description is required"
	msgInvalidTaskID       = "Invalid task id"
	msgTaskSaveFailed      = "Failed to save tasks"
)

type addTaskRequest struct {
	Description string `json:"description"`
}

type taskListResponse struct {
	Tasks []model.Task `json:"tasks"`
}

func listTasksHandler(uc TaskUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		errutil.WriteJSON(r.Context(), w, http.StatusOK, taskListResponse{Tasks: uc.List(r.Context())})
	}
}

func addTaskHandler(uc TaskUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req addTaskRequest
		if err := decodeBody(r, &req); err != nil {
			errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest, msgInvalidBody)
			return
		}

		task, err := uc.Add(ctx, req.Description)
		if err != nil {
			if errors.Is(err, usecase.ErrEmptyDescription) {
				errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest, msgDescriptionRequired)
				return
			}
			errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError, msgTaskSaveFailed)
			return
		}

		errutil.WriteJSON(ctx, w, http.StatusCreated, task)
	}
}

func toggleTaskHandler(uc TaskUseCase) http.HandlerFunc {
	return mutateTaskHandler(uc, uc.Toggle)
}

func removeTaskHandler(uc TaskUseCase) http.HandlerFunc {
	return mutateTaskHandler(uc, uc.Remove)
}

// mutateTaskHandler applies fn to the {id} path parameter and responds with
// the resulting list
func mutateTaskHandler(uc TaskUseCase, fn func(ctx context.Context, id int64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		raw := chi.URLParam(r, "id")
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid task id", goerr.V(usecase.TaskIDKey, raw)), http.StatusBadRequest, msgInvalidTaskID)
			return
		}

		if err := fn(ctx, id); err != nil {
			errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError, msgTaskSaveFailed)
			return
		}

		errutil.WriteJSON(ctx, w, http.StatusOK, taskListResponse{Tasks: uc.List(ctx)})
	}
}
