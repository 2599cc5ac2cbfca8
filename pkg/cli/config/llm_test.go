package config_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/hovertodo/pkg/cli/config"
)

func TestLLM_Configure(t *testing.T) {
	t.Run("returns no options without credentials", func(t *testing.T) {
		for _, provider := range []string{config.ProviderOpenAI, config.ProviderGemini, config.ProviderClaude} {
			cfg := config.NewLLMForTest(provider, "", "", "")
			opts, err := cfg.Configure(t.Context(), config.DefaultAppConfig())
			gt.NoError(t, err)
			gt.Array(t, opts).Length(0)
		}
	})

	t.Run("rejects unknown provider", func(t *testing.T) {
		cfg := config.NewLLMForTest("mistral", "key", "", "")
		_, err := cfg.Configure(t.Context(), config.DefaultAppConfig())
		gt.Error(t, err).Is(config.ErrUnknownProvider)
	})

	t.Run("creates one client per operation", func(t *testing.T) {
		cfg := config.NewLLMForTest(config.ProviderOpenAI, "sk-test", "", "")
		opts, err := cfg.Configure(t.Context(), config.DefaultAppConfig())
		gt.NoError(t, err).Required()
		gt.Array(t, opts).Length(3)
	})

	t.Run("applies provider temperature limits", func(t *testing.T) {
		tests := []struct {
			provider string
			wantErr  bool
		}{
			{config.ProviderClaude, true},
			{config.ProviderOpenAI, false},
			{config.ProviderGemini, false},
		}
		for _, tt := range tests {
			t.Run(tt.provider, func(t *testing.T) {
				app := config.DefaultAppConfig()
				app.Classify.Temperature = 1.5

				_, err := config.NewLLMForTest(tt.provider, "", "", "").Configure(t.Context(), app)
				if tt.wantErr {
					gt.Error(t, err).Is(config.ErrInvalidConfig)
					return
				}
				gt.NoError(t, err)
			})
		}
	})

	t.Run("returns flags", func(t *testing.T) {
		cfg := config.NewLLMForTest("", "", "", "")
		gt.Value(t, len(cfg.Flags())).Equal(5)
	})

	t.Run("does not log keys", func(t *testing.T) {
		cfg := config.NewLLMForTest(config.ProviderOpenAI, "sk-test", "", "")
		for _, attr := range cfg.LogAttrs() {
			gt.Value(t, attr.Value.String()).NotEqual("sk-test")
		}
	})
}
