package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/hovertodo/pkg/cli/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()
	return path
}

func TestLoadAppConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
		check   func(t *testing.T, cfg *config.AppConfig)
	}{
		{
			name: "overrides only the given keys",
			content: `
[classify]
model = "gpt-4o"
temperature = 0.1

[image]
size = "1792x1024"
`,
			check: func(t *testing.T, cfg *config.AppConfig) {
				gt.Value(t, cfg.Classify.Model).Equal("gpt-4o")
				gt.Value(t, cfg.Classify.Temperature).Equal(0.1)
				gt.Value(t, cfg.Classify.MaxTokens).Equal(150)
				gt.Value(t, cfg.Suggestion.Temperature).Equal(0.7)
				gt.Value(t, cfg.Suggestion.MaxTokens).Equal(100)
				gt.Value(t, cfg.Meme.Temperature).Equal(0.8)
				gt.Value(t, cfg.Image.Model).Equal("dall-e-3")
				gt.Value(t, cfg.Image.Size).Equal("1792x1024")
			},
		},
		{
			name:    "empty file keeps defaults",
			content: ``,
			check: func(t *testing.T, cfg *config.AppConfig) {
				gt.Value(t, cfg).Equal(config.DefaultAppConfig())
			},
		},
		{
			name: "rejects temperature out of range",
			content: `
[suggestion]
temperature = 3.5
`,
			wantErr: config.ErrInvalidConfig,
		},
		{
			name: "rejects non positive max tokens",
			content: `
[meme]
max_tokens = 0
`,
			wantErr: config.ErrInvalidConfig,
		},
		{
			name: "rejects unsupported image size",
			content: `
[image]
size = "100x100"
`,
			wantErr: config.ErrInvalidConfig,
		},
		{
			name: "rejects size the default image model does not support",
			content: `
[image]
size = "512x512"
`,
			wantErr: config.ErrInvalidConfig,
		},
		{
			name: "accepts small size for dall-e-2",
			content: `
[image]
model = "dall-e-2"
size = "512x512"
`,
			check: func(t *testing.T, cfg *config.AppConfig) {
				gt.Value(t, cfg.Image.Model).Equal("dall-e-2")
				gt.Value(t, cfg.Image.Size).Equal("512x512")
			},
		},
		{
			name: "accepts any WIDTHxHEIGHT for unknown image model",
			content: `
[image]
model = "my-diffusion"
size = "768x768"
`,
			check: func(t *testing.T, cfg *config.AppConfig) {
				gt.Value(t, cfg.Image.Size).Equal("768x768")
			},
		},
		{
			name: "rejects malformed size for unknown image model",
			content: `
[image]
model = "my-diffusion"
size = "big"
`,
			wantErr: config.ErrInvalidConfig,
		},
		{
			name:    "rejects malformed TOML",
			content: `[suggestion`,
			wantErr: config.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.LoadAppConfiguration(writeConfig(t, tt.content))
			if tt.wantErr != nil {
				gt.Error(t, err).Is(tt.wantErr)
				return
			}
			gt.NoError(t, err).Required()
			tt.check(t, cfg)
		})
	}
}

func TestLoadAppConfiguration_NotFound(t *testing.T) {
	_, err := config.LoadAppConfiguration(filepath.Join(t.TempDir(), "missing.toml"))
	gt.Error(t, err).Is(config.ErrConfigNotFound)
}

func TestApp_Configure(t *testing.T) {
	t.Run("returns defaults without a file", func(t *testing.T) {
		cfg, err := config.NewAppForTest("").Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, cfg).Equal(config.DefaultAppConfig())
	})

	t.Run("loads the given file", func(t *testing.T) {
		path := writeConfig(t, "[suggestion]\nmax_tokens = 60\n")
		cfg, err := config.NewAppForTest(path).Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, cfg.Suggestion.MaxTokens).Equal(60)
	})
}

func TestDefaultAppConfig_IsValid(t *testing.T) {
	gt.NoError(t, config.DefaultAppConfig().Validate())
}
