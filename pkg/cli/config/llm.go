package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/claude"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/m-mizutani/gollem/llm/openai"
	"github.com/secmon-lab/hovertodo/pkg/usecase"
	"github.com/secmon-lab/hovertodo/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Supported LLM providers
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderClaude = "claude"
)

// DefaultOpenAIModel is used when a budget does not name a model
const DefaultOpenAIModel = "gpt-4o-mini"

// LLM holds configuration for the text generation backend
type LLM struct {
	provider       string
	openaiAPIKey   string `masq:"secret"`
	geminiProject  string
	geminiLocation string
	claudeAPIKey   string `masq:"secret"`
}

// Flags returns CLI flags for LLM configuration
func (l *LLM) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "llm-provider",
			Usage:       "LLM provider [openai|gemini|claude]",
			Value:       ProviderOpenAI,
			Category:    "LLM",
			Sources:     cli.EnvVars("HOVERTODO_LLM_PROVIDER"),
			Destination: &l.provider,
		},
		&cli.StringFlag{
			Name:        "openai-api-key",
			Usage:       "OpenAI API key (also used for meme images)",
			Category:    "LLM",
			Sources:     cli.EnvVars("HOVERTODO_OPENAI_API_KEY", "OPENAI_API_KEY"),
			Destination: &l.openaiAPIKey,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini API",
			Category:    "LLM",
			Sources:     cli.EnvVars("HOVERTODO_GEMINI_PROJECT"),
			Destination: &l.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini API",
			Value:       "us-central1",
			Category:    "LLM",
			Sources:     cli.EnvVars("HOVERTODO_GEMINI_LOCATION"),
			Destination: &l.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "claude-api-key",
			Usage:       "Anthropic API key for Claude",
			Category:    "LLM",
			Sources:     cli.EnvVars("HOVERTODO_CLAUDE_API_KEY"),
			Destination: &l.claudeAPIKey,
		},
	}
}

// LogAttrs returns log attributes for the LLM configuration. Keys are
// reported only as present or absent.
func (l *LLM) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("provider", l.provider),
		slog.Bool("openai_api_key", l.openaiAPIKey != ""),
		slog.String("gemini_project", l.geminiProject),
		slog.String("gemini_location", l.geminiLocation),
		slog.Bool("claude_api_key", l.claudeAPIKey != ""),
	}
}

// OpenAIAPIKey returns the OpenAI key shared with the image backend
func (l *LLM) OpenAIAPIKey() string {
	return l.openaiAPIKey
}

func (l *LLM) hasCredentials() bool {
	switch l.provider {
	case ProviderOpenAI:
		return l.openaiAPIKey != ""
	case ProviderGemini:
		return l.geminiProject != ""
	case ProviderClaude:
		return l.claudeAPIKey != ""
	}
	return false
}

// NewClient creates a client for the configured provider with budget applied.
// The budget is checked against the provider limits even without
// credentials. Returns nil if the provider has no credentials.
func (l *LLM) NewClient(ctx context.Context, budget Budget) (gollem.LLMClient, error) {
	switch l.provider {
	case ProviderOpenAI, ProviderGemini, ProviderClaude:
	default:
		return nil, goerr.Wrap(ErrUnknownProvider, "cannot create LLM client", goerr.V(ProviderKey, l.provider))
	}
	if err := budget.ValidateFor(l.provider); err != nil {
		return nil, err
	}
	if !l.hasCredentials() {
		return nil, nil
	}

	switch l.provider {
	case ProviderGemini:
		opts := []gemini.Option{
			gemini.WithTemperature(float32(budget.Temperature)),
			gemini.WithMaxTokens(int32(budget.MaxTokens)),
		}
		if budget.Model != "" {
			opts = append(opts, gemini.WithModel(budget.Model))
		}
		client, err := gemini.New(ctx, l.geminiProject, l.geminiLocation, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Gemini client")
		}
		return client, nil

	case ProviderClaude:
		opts := []claude.Option{
			claude.WithTemperature(budget.Temperature),
			claude.WithMaxTokens(int64(budget.MaxTokens)),
		}
		if budget.Model != "" {
			opts = append(opts, claude.WithModel(budget.Model))
		}
		client, err := claude.New(ctx, l.claudeAPIKey, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Claude client")
		}
		return client, nil

	default:
		model := budget.Model
		if model == "" {
			model = DefaultOpenAIModel
		}
		client, err := openai.New(ctx, l.openaiAPIKey,
			openai.WithModel(model),
			openai.WithTemperature(float32(budget.Temperature)),
			openai.WithMaxTokens(budget.MaxTokens),
		)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create OpenAI client")
		}
		return client, nil
	}
}

// Configure creates one client per gateway operation so that each keeps its
// own budget. With no credentials the options are empty and the gateway
// answers with its fallbacks.
func (l *LLM) Configure(ctx context.Context, app *AppConfig) ([]usecase.AssistantOption, error) {
	for name, budget := range map[string]Budget{
		"suggestion": app.Suggestion,
		"classify":   app.Classify,
		"meme":       app.Meme,
	} {
		if err := budget.ValidateFor(l.provider); err != nil {
			return nil, goerr.Wrap(err, "invalid budget", goerr.V("operation", name))
		}
	}

	suggest, err := l.NewClient(ctx, app.Suggestion)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure suggestion client")
	}
	if suggest == nil {
		logging.From(ctx).Warn("LLM credentials not configured, suggestions and classification will use fallbacks", "provider", l.provider)
		return nil, nil
	}

	classify, err := l.NewClient(ctx, app.Classify)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure classify client")
	}
	meme, err := l.NewClient(ctx, app.Meme)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure meme client")
	}

	return []usecase.AssistantOption{
		usecase.WithSuggestLLM(suggest),
		usecase.WithClassifyLLM(classify),
		usecase.WithMemeLLM(meme),
	}, nil
}
