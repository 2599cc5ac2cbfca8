package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Input errors
	ErrEmptyTask        = errors.New("task is required")
	ErrEmptyDescription = errors.New("description is required")

	// Integration errors
	ErrLLMNotConfigured   = errors.New("LLM client is not configured")
	ErrImageNotConfigured = errors.New("image generation is not configured")
	ErrEmptyLLMResponse   = errors.New("LLM returned an empty response")
)

// Context keys for error values
const (
	TaskIDKey = "task_id"
	TaskKey   = "task"
)
