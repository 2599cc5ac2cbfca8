package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/hovertodo/pkg/usecase"
	"github.com/secmon-lab/hovertodo/pkg/utils/errutil"
	"github.com/secmon-lab/hovertodo/pkg/utils/logging"
)

// Public error messages
const (
	msgInvalidBody      = "Invalid request body"
	msgPromptRequired   = "Prompt is required"
	msgTaskRequired     = "Task is required"
	msgMemeFailed       = "Failed to generate meme"
	msgSuggestionFailed = "Failed to generate suggestion"
	msgClassifyFailed   = "Failed to classify task"
)

type suggestionRequest struct {
	Prompt string `json:"prompt"`
}

type suggestionResponse struct {
	Text string `json:"text"`
}

type taskRequest struct {
	Task string `json:"task"`
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return goerr.Wrap(err, "failed to decode request body")
	}
	return nil
}

func wantsEventStream(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/event-stream")
}

// suggestionHandler returns a starting suggestion, either as one JSON object
// or as server-sent events when the client asks for text/event-stream
func suggestionHandler(uc AssistantUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req suggestionRequest
		if err := decodeBody(r, &req); err != nil {
			errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest, msgInvalidBody)
			return
		}
		if strings.TrimSpace(req.Prompt) == "" {
			errutil.HandleHTTP(ctx, w, nil, http.StatusBadRequest, msgPromptRequired)
			return
		}

		if wantsEventStream(r) {
			streamSuggestion(w, r, uc, req.Prompt)
			return
		}

		text, err := uc.Suggest(ctx, req.Prompt)
		if err != nil {
			status, msg := http.StatusInternalServerError, msgSuggestionFailed
			if errors.Is(err, usecase.ErrEmptyTask) {
				status, msg = http.StatusBadRequest, msgPromptRequired
			}
			errutil.HandleHTTP(ctx, w, err, status, msg)
			return
		}

		errutil.WriteJSON(ctx, w, http.StatusOK, suggestionResponse{Text: text})
	}
}

func streamSuggestion(w http.ResponseWriter, r *http.Request, uc AssistantUseCase, prompt string) {
	ctx := r.Context()

	chunks, err := uc.SuggestStream(ctx, prompt)
	if err != nil {
		status, msg := http.StatusInternalServerError, msgSuggestionFailed
		if errors.Is(err, usecase.ErrEmptyTask) {
			status, msg = http.StatusBadRequest, msgPromptRequired
		}
		errutil.HandleHTTP(ctx, w, err, status, msg)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	logger := logging.From(ctx)

	for chunk := range chunks {
		data, err := json.Marshal(suggestionResponse{Text: chunk})
		if err != nil {
			logger.Error("failed to marshal suggestion chunk", "error", err)
			continue
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			logger.Debug("client went away during suggestion stream", "error", err)
			return
		}
		_ = rc.Flush()
	}

	if _, err := fmt.Fprint(w, "data: [DONE]\n\n"); err != nil {
		logger.Debug("failed to terminate suggestion stream", "error", err)
		return
	}
	_ = rc.Flush()
}

// classifyHandler returns the flat {isLarge, reason} judgment for a task
func classifyHandler(uc AssistantUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req taskRequest
		if err := decodeBody(r, &req); err != nil {
			errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest, msgInvalidBody)
			return
		}
		if strings.TrimSpace(req.Task) == "" {
			errutil.HandleHTTP(ctx, w, nil, http.StatusBadRequest, msgTaskRequired)
			return
		}

		result, err := uc.Classify(ctx, req.Task)
		if err != nil {
			status, msg := http.StatusInternalServerError, msgClassifyFailed
			if errors.Is(err, usecase.ErrEmptyTask) {
				status, msg = http.StatusBadRequest, msgTaskRequired
			}
			errutil.HandleHTTP(ctx, w, err, status, msg)
			return
		}

		errutil.WriteJSON(ctx, w, http.StatusOK, result)
	}
}

// memeHandler returns {imageUrl} for a task
func memeHandler(uc AssistantUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req taskRequest
		if err := decodeBody(r, &req); err != nil {
			errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest, msgInvalidBody)
			return
		}
		if strings.TrimSpace(req.Task) == "" {
			errutil.HandleHTTP(ctx, w, nil, http.StatusBadRequest, msgTaskRequired)
			return
		}

		meme, err := uc.Meme(ctx, req.Task)
		if err != nil {
			status, msg := http.StatusInternalServerError, msgMemeFailed
			if errors.Is(err, usecase.ErrEmptyTask) {
				status, msg = http.StatusBadRequest, msgTaskRequired
			}
			errutil.HandleHTTP(ctx, w, err, status, msg)
			return
		}

		errutil.WriteJSON(ctx, w, http.StatusOK, meme)
	}
}
