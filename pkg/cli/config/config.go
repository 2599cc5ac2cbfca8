package config

import (
	"log/slog"
	"os"
	"regexp"
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// Budget is the sampling configuration of one gateway operation. An empty
// Model selects the provider default.
type Budget struct {
	Model       string  `toml:"model"`
	Temperature float64 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
}

// Validate checks the Budget against limits shared by every provider.
// Provider specific limits are checked by ValidateFor.
func (b *Budget) Validate() error {
	if b.Temperature < 0 || b.Temperature > 2 {
		return goerr.Wrap(ErrInvalidConfig, "temperature must be between 0 and 2", goerr.V("temperature", b.Temperature))
	}
	if b.MaxTokens <= 0 {
		return goerr.Wrap(ErrInvalidConfig, "max_tokens must be positive", goerr.V("max_tokens", b.MaxTokens))
	}
	return nil
}

// maxTemperature is the upper sampling temperature each provider accepts
var maxTemperature = map[string]float64{
	ProviderOpenAI: 2,
	ProviderGemini: 2,
	ProviderClaude: 1,
}

// ValidateFor checks the Budget against the limits of provider
func (b *Budget) ValidateFor(provider string) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if limit, ok := maxTemperature[provider]; ok && b.Temperature > limit {
		return goerr.Wrap(ErrInvalidConfig, "temperature exceeds provider limit",
			goerr.V("temperature", b.Temperature),
			goerr.V("limit", limit),
			goerr.V(ProviderKey, provider),
		)
	}
	return nil
}

// ImageSettings configures the image backend used for memes
type ImageSettings struct {
	Model string `toml:"model"`
	Size  string `toml:"size"`
}

// imageSizes lists the sizes each known image model accepts
var imageSizes = map[string][]string{
	"dall-e-2":    {"256x256", "512x512", "1024x1024"},
	"dall-e-3":    {"1024x1024", "1792x1024", "1024x1792"},
	"gpt-image-1": {"1024x1024", "1536x1024", "1024x1536"},
}

var sizePattern = regexp.MustCompile(`^[1-9][0-9]*x[1-9][0-9]*$`)

// Validate checks if the ImageSettings is valid. Models not in imageSizes
// only need a WIDTHxHEIGHT size.
func (s *ImageSettings) Validate() error {
	if s.Model == "" {
		return goerr.Wrap(ErrInvalidConfig, "image model is required")
	}
	if !sizePattern.MatchString(s.Size) {
		return goerr.Wrap(ErrInvalidConfig, "image size must be WIDTHxHEIGHT", goerr.V("size", s.Size))
	}
	if sizes, ok := imageSizes[s.Model]; ok && !slices.Contains(sizes, s.Size) {
		return goerr.Wrap(ErrInvalidConfig, "unsupported image size for model",
			goerr.V("size", s.Size),
			goerr.V("model", s.Model),
			goerr.V("supported", sizes),
		)
	}
	return nil
}

// AppConfig represents the application configuration
type AppConfig struct {
	Suggestion Budget        `toml:"suggestion"`
	Classify   Budget        `toml:"classify"`
	Meme       Budget        `toml:"meme"`
	Image      ImageSettings `toml:"image"`
}

// DefaultAppConfig returns the budgets used when no config file is given
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Suggestion: Budget{Temperature: 0.7, MaxTokens: 100},
		Classify:   Budget{Temperature: 0.3, MaxTokens: 150},
		Meme:       Budget{Temperature: 0.8, MaxTokens: 100},
		Image:      ImageSettings{Model: "dall-e-3", Size: "1024x1024"},
	}
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	budgets := []struct {
		name   string
		budget Budget
	}{
		{"suggestion", a.Suggestion},
		{"classify", a.Classify},
		{"meme", a.Meme},
	}
	for _, b := range budgets {
		if err := b.budget.Validate(); err != nil {
			return goerr.Wrap(err, "invalid budget", goerr.V("operation", b.name))
		}
	}

	if err := a.Image.Validate(); err != nil {
		return goerr.Wrap(err, "invalid image settings")
	}

	return nil
}

// LoadAppConfiguration loads the application configuration from a TOML file.
// Keys missing from the file keep their defaults.
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(ErrConfigNotFound, "failed to read config file", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	config := DefaultAppConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config", goerr.V(ConfigPathKey, path), goerr.V("error", err.Error()))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return config, nil
}

// App holds the CLI flag pointing at the optional TOML config file
type App struct {
	path string
}

// Flags returns CLI flags for the application config file
func (a *App) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to a TOML file overriding model budgets",
			Sources:     cli.EnvVars("HOVERTODO_CONFIG"),
			Destination: &a.path,
		},
	}
}

// LogAttrs returns log attributes for the config file
func (a *App) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("path", a.path),
	}
}

// Configure loads the config file, or the defaults when no file is given
func (a *App) Configure() (*AppConfig, error) {
	if a.path == "" {
		return DefaultAppConfig(), nil
	}
	return LoadAppConfiguration(a.path)
}
