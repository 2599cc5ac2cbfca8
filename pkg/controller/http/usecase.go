package http

import (
	"context"

	"github.com/secmon-lab/hovertodo/pkg/domain/model"
)

// AssistantUseCase is the generative gateway consumed by the API handlers
type AssistantUseCase interface {
	Suggest(ctx context.Context, task string) (string, error)
	SuggestStream(ctx context.Context, task string) (<-chan string, error)
	Classify(ctx context.Context, task string) (*model.Classification, error)
	Meme(ctx context.Context, task string) (*model.Meme, error)
}

// TaskUseCase is the task store consumed by the API handlers
type TaskUseCase interface {
	List(ctx context.Context) []model.Task
	Add(ctx context.Context, description string) (*model.Task, error)
	Toggle(ctx context.Context, id int64) error
	Remove(ctx context.Context, id int64) error
}
