package usecase

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"text/template"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/hovertodo/pkg/domain/interfaces"
	"github.com/secmon-lab/hovertodo/pkg/domain/model"
	"github.com/secmon-lab/hovertodo/pkg/utils/async"
	"github.com/secmon-lab/hovertodo/pkg/utils/logging"
)

const (
	suggestionSystemPrompt = "You are a helpful assistant that provides brief, practical suggestions on how to get started with tasks."
	classifySystemPrompt   = "You are a task classifier that determines if a task is very large or complex."
	memeSystemPrompt       = "You are a creative assistant that writes image generation prompts for humorous memes about large, complex tasks."
)

// Fallbacks returned instead of errors
const (
	FallbackSuggestion        = "Could not generate a suggestion at this time."
	ReasonClassificationError = "Error during classification"
	ReasonUndetermined        = "Could not determine"
)

var (
	//go:embed prompt/suggestion_user.md
	suggestionPromptTmpl string
	//go:embed prompt/classify_user.md
	classifyPromptTmpl string
	//go:embed prompt/meme_image_user.md
	memePromptTmpl string

	suggestionPrompt = template.Must(template.New("suggestion_user").Parse(suggestionPromptTmpl))
	classifyPrompt   = template.Must(template.New("classify_user").Parse(classifyPromptTmpl))
	memePrompt       = template.Must(template.New("meme_image_user").Parse(memePromptTmpl))
)

type promptData struct {
	Task string
}

// AssistantUseCase relays task descriptions to the generative backends. It
// holds no per-request state.
type AssistantUseCase struct {
	suggestLLM  gollem.LLMClient
	classifyLLM gollem.LLMClient
	memeLLM     gollem.LLMClient
	image       interfaces.ImageGenerator
}

// AssistantOption configures AssistantUseCase. Each operation has its own
// client so that its sampling budget can differ.
type AssistantOption func(*AssistantUseCase)

func WithSuggestLLM(client gollem.LLMClient) AssistantOption {
	return func(uc *AssistantUseCase) {
		uc.suggestLLM = client
	}
}

func WithClassifyLLM(client gollem.LLMClient) AssistantOption {
	return func(uc *AssistantUseCase) {
		uc.classifyLLM = client
	}
}

func WithMemeLLM(client gollem.LLMClient) AssistantOption {
	return func(uc *AssistantUseCase) {
		uc.memeLLM = client
	}
}

func WithImageGenerator(gen interfaces.ImageGenerator) AssistantOption {
	return func(uc *AssistantUseCase) {
		uc.image = gen
	}
}

// NewAssistantUseCase creates a new AssistantUseCase
func NewAssistantUseCase(opts ...AssistantOption) *AssistantUseCase {
	uc := &AssistantUseCase{}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Suggest returns a one or two sentence starting suggestion for task. Backend
// failures yield FallbackSuggestion; only a blank task is an error.
func (uc *AssistantUseCase) Suggest(ctx context.Context, task string) (string, error) {
	task, err := normalizeTask(task)
	if err != nil {
		return "", err
	}
	ctx, logger := withCall(ctx, "suggest")

	prompt, err := render(suggestionPrompt, task)
	if err != nil {
		return "", err
	}

	text, err := generateText(ctx, uc.suggestLLM, suggestionSystemPrompt, prompt)
	if err != nil {
		logger.Warn("suggestion failed, returning fallback", "error", err)
		return FallbackSuggestion, nil
	}

	return text, nil
}

// SuggestStream is the incremental variant of Suggest. The returned channel
// yields text chunks and is closed when the backend stream ends or ctx is
// done. A backend error ends the stream after the chunks already sent. If the
// stream cannot be started, or produces no text, a single FallbackSuggestion
// chunk is sent.
func (uc *AssistantUseCase) SuggestStream(ctx context.Context, task string) (<-chan string, error) {
	task, err := normalizeTask(task)
	if err != nil {
		return nil, err
	}
	ctx, logger := withCall(ctx, "suggest_stream")

	prompt, err := render(suggestionPrompt, task)
	if err != nil {
		return nil, err
	}

	out := make(chan string)

	stream, err := startStream(ctx, uc.suggestLLM, suggestionSystemPrompt, prompt)
	if err != nil {
		logger.Warn("suggestion stream failed to start, returning fallback", "error", err)
		async.Go(ctx, "suggest_stream", func(ctx context.Context) error {
			defer close(out)
			send(ctx, out, FallbackSuggestion)
			return nil
		})
		return out, nil
	}

	async.Go(ctx, "suggest_stream", func(ctx context.Context) error {
		defer close(out)

		sent := false
	recv:
		for resp := range stream {
			if resp == nil {
				continue
			}
			if resp.Error != nil {
				logger.Warn("suggestion stream failed", "error", resp.Error, "sent", sent)
				break recv
			}
			for _, chunk := range resp.Texts {
				if chunk == "" {
					continue
				}
				if !send(ctx, out, chunk) {
					logger.Debug("suggestion stream abandoned by caller")
					return nil
				}
				sent = true
			}
		}

		if !sent {
			logger.Warn("suggestion stream produced no text, returning fallback")
			send(ctx, out, FallbackSuggestion)
		}
		return nil
	})

	return out, nil
}

func send(ctx context.Context, out chan<- string, chunk string) bool {
	select {
	case out <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}

// classification is the structured output requested from the model
type classification struct {
	IsLarge *bool  `json:"isLarge"`
	Reason  string `json:"reason"`
}

// Classify judges whether task is large. It never fails on backend problems:
// errors yield {false, ReasonClassificationError} and unparsable output yields
// {false, ReasonUndetermined}.
func (uc *AssistantUseCase) Classify(ctx context.Context, task string) (*model.Classification, error) {
	task, err := normalizeTask(task)
	if err != nil {
		return nil, err
	}
	ctx, logger := withCall(ctx, "classify")

	prompt, err := render(classifyPrompt, task)
	if err != nil {
		return nil, err
	}

	text, err := generateText(ctx, uc.classifyLLM, classifySystemPrompt, prompt,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(classificationSchema()),
	)
	if errors.Is(err, ErrEmptyLLMResponse) {
		logger.Warn("classification output is empty, returning default")
		return &model.Classification{IsLarge: false, Reason: ReasonUndetermined}, nil
	}
	if err != nil {
		logger.Warn("classification failed, returning default", "error", err)
		return &model.Classification{IsLarge: false, Reason: ReasonClassificationError}, nil
	}

	result, err := parseClassification(text)
	if err != nil {
		logger.Warn("classification output is not parsable, returning default", "error", err)
		return &model.Classification{IsLarge: false, Reason: ReasonUndetermined}, nil
	}

	logger.Debug("task classified", "is_large", result.IsLarge, "reason", result.Reason)
	return result, nil
}

func parseClassification(text string) (*model.Classification, error) {
	var out classification
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &out); err != nil {
		return nil, goerr.Wrap(err, "failed to parse classification", goerr.V("response", text))
	}
	if out.IsLarge == nil {
		return nil, goerr.New("classification lacks isLarge", goerr.V("response", text))
	}

	reason := strings.TrimSpace(out.Reason)
	if reason == "" {
		reason = ReasonUndetermined
	}

	return &model.Classification{IsLarge: *out.IsLarge, Reason: reason}, nil
}

func classificationSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "TaskClassification",
		Description: "Whether a task is very large or complex",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"isLarge": {
				Type:        gollem.TypeBoolean,
				Description: "True if the task is very large or complex",
			},
			"reason": {
				Type:        gollem.TypeString,
				Description: "Short explanation of the judgment",
			},
		},
	}
}

// Meme produces an image for a large task in two steps: the text model writes
// an image prompt, then the image backend renders it. Failure of either step
// is returned as an error.
func (uc *AssistantUseCase) Meme(ctx context.Context, task string) (*model.Meme, error) {
	task, err := normalizeTask(task)
	if err != nil {
		return nil, err
	}
	if uc.image == nil {
		return nil, goerr.Wrap(ErrImageNotConfigured, "cannot generate meme")
	}
	ctx, logger := withCall(ctx, "meme")

	prompt, err := render(memePrompt, task)
	if err != nil {
		return nil, err
	}

	imagePrompt, err := generateText(ctx, uc.memeLLM, memeSystemPrompt, prompt)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate image prompt", goerr.V(TaskKey, task))
	}

	url, err := uc.image.Generate(ctx, imagePrompt)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate meme image", goerr.V("image_prompt", imagePrompt))
	}

	logger.Info("meme generated", "image_prompt", imagePrompt)
	return &model.Meme{ImageURL: url, Prompt: imagePrompt}, nil
}

// Cheer classifies task and, only when it is large, generates a meme for it.
// Classification never fails; a meme failure is reported in the result.
func (uc *AssistantUseCase) Cheer(ctx context.Context, task string) (*model.CheerResult, error) {
	c, err := uc.Classify(ctx, task)
	if err != nil {
		return nil, err
	}

	result := &model.CheerResult{Classification: *c}
	if !c.ShouldMeme() {
		return result, nil
	}

	meme, err := uc.Meme(ctx, task)
	if err != nil {
		result.MemeErr = err
		return result, nil
	}
	result.Meme = meme

	return result, nil
}

func normalizeTask(task string) (string, error) {
	task = strings.TrimSpace(task)
	if task == "" {
		return "", goerr.Wrap(ErrEmptyTask, "invalid task")
	}
	return task, nil
}

func withCall(ctx context.Context, op string) (context.Context, *slog.Logger) {
	logger := logging.From(ctx).With("op", op, "call_id", uuid.NewString())
	return logging.With(ctx, logger), logger
}

func render(tmpl *template.Template, task string) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, promptData{Task: task}); err != nil {
		return "", goerr.Wrap(err, "failed to render prompt", goerr.V("template", tmpl.Name()))
	}
	return strings.TrimSpace(buf.String()), nil
}

func generateText(ctx context.Context, client gollem.LLMClient, systemPrompt, prompt string, opts ...gollem.SessionOption) (string, error) {
	if client == nil {
		return "", goerr.Wrap(ErrLLMNotConfigured, "cannot generate text")
	}

	opts = append([]gollem.SessionOption{gollem.WithSessionSystemPrompt(systemPrompt)}, opts...)
	session, err := client.NewSession(ctx, opts...)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(prompt))
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate content from LLM")
	}

	text := ""
	if resp != nil {
		text = strings.TrimSpace(strings.Join(resp.Texts, ""))
	}
	if text == "" {
		return "", goerr.Wrap(ErrEmptyLLMResponse, "no text in LLM response")
	}

	return text, nil
}

func startStream(ctx context.Context, client gollem.LLMClient, systemPrompt, prompt string) (<-chan *gollem.Response, error) {
	if client == nil {
		return nil, goerr.Wrap(ErrLLMNotConfigured, "cannot stream text")
	}

	session, err := client.NewSession(ctx, gollem.WithSessionSystemPrompt(systemPrompt))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM session")
	}

	stream, err := session.GenerateStream(ctx, gollem.Text(prompt))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to start LLM stream")
	}
	if stream == nil {
		return nil, goerr.Wrap(ErrEmptyLLMResponse, "LLM returned no stream")
	}

	return stream, nil
}

// stripCodeFence removes a surrounding ```json fence some models add to JSON
// output
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if i := strings.Index(text, "\n"); i >= 0 {
		text = text[i+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
