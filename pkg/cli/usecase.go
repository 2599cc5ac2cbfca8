package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/hovertodo/pkg/cli/config"
	"github.com/secmon-lab/hovertodo/pkg/domain/interfaces"
	"github.com/secmon-lab/hovertodo/pkg/usecase"
	"github.com/secmon-lab/hovertodo/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// assistantConfig groups the flags needed to build the gateway
type assistantConfig struct {
	app   config.App
	llm   config.LLM
	image config.Image
}

func (a *assistantConfig) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, a.app.Flags()...)
	flags = append(flags, a.llm.Flags()...)
	flags = append(flags, a.image.Flags()...)
	return flags
}

// Configure returns the gateway options and a function releasing the
// clients behind them
func (a *assistantConfig) Configure(ctx context.Context) ([]usecase.AssistantOption, func(), error) {
	appCfg, err := a.app.Configure()
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to load configuration")
	}

	opts, err := a.llm.Configure(ctx, appCfg)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to configure LLM")
	}

	gen, closer, err := a.image.Configure(ctx, a.llm.OpenAIAPIKey(), appCfg.Image)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to configure image generation")
	}
	if gen != nil {
		opts = append(opts, usecase.WithImageGenerator(gen))
	}

	logging.From(ctx).Info("Assistant configured",
		slog.Any("config", a.app.LogAttrs()),
		slog.Any("llm", a.llm.LogAttrs()),
		slog.Any("image", a.image.LogAttrs()),
		slog.Any("budgets", appCfg),
	)

	return opts, closer, nil
}

func openStore(ctx context.Context, cfg *config.Store) (interfaces.KVStore, func(), error) {
	store, err := cfg.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize task store")
	}
	closer := func() {
		if err := store.Close(); err != nil {
			logging.Default().Error("failed to close task store", "error", err.Error())
		}
	}
	return store, closer, nil
}
