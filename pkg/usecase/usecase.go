package usecase

import (
	"github.com/secmon-lab/hovertodo/pkg/domain/interfaces"
)

type UseCases struct {
	store         interfaces.KVStore
	assistantOpts []AssistantOption
	Task          *TaskUseCase
	Assistant     *AssistantUseCase
}

type Option func(*UseCases)

// WithAssistant passes options through to the AssistantUseCase
func WithAssistant(opts ...AssistantOption) Option {
	return func(uc *UseCases) {
		uc.assistantOpts = append(uc.assistantOpts, opts...)
	}
}

func New(store interfaces.KVStore, opts ...Option) *UseCases {
	uc := &UseCases{
		store: store,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Task = NewTaskUseCase(store)
	uc.Assistant = NewAssistantUseCase(uc.assistantOpts...)

	return uc
}
