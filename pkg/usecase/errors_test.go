package usecase_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/hovertodo/pkg/usecase"
)

func TestErrors_SentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrEmptyTask", usecase.ErrEmptyTask},
		{"ErrEmptyDescription", usecase.ErrEmptyDescription},
		{"ErrLLMNotConfigured", usecase.ErrLLMNotConfigured},
		{"ErrImageNotConfigured", usecase.ErrImageNotConfigured},
		{"ErrEmptyLLMResponse", usecase.ErrEmptyLLMResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, tt.err).NotNil()
		})
	}
}

func TestErrors_ErrorsAreDistinct(t *testing.T) {
	gt.Bool(t, errors.Is(usecase.ErrEmptyTask, usecase.ErrEmptyDescription)).False()
	gt.Bool(t, errors.Is(usecase.ErrLLMNotConfigured, usecase.ErrImageNotConfigured)).False()
}
