package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/hovertodo/pkg/domain/model"
	"github.com/secmon-lab/hovertodo/pkg/usecase"
	"github.com/secmon-lab/hovertodo/pkg/utils/errutil"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

// assistReport is the outcome of one assist run
type assistReport struct {
	Task       string
	Suggestion string
	Cheer      *model.CheerResult
}

// runAssist asks for a suggestion and the cheer pipeline concurrently
func runAssist(ctx context.Context, uc *usecase.AssistantUseCase, task string) (*assistReport, error) {
	report := &assistReport{Task: task}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		text, err := uc.Suggest(ctx, task)
		if err != nil {
			return goerr.Wrap(err, "failed to get suggestion")
		}
		report.Suggestion = text
		return nil
	})
	eg.Go(func() error {
		result, err := uc.Cheer(ctx, task)
		if err != nil {
			return goerr.Wrap(err, "failed to classify task")
		}
		report.Cheer = result
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}

func printAssistReport(w io.Writer, r *assistReport) {
	label := color.New(color.FgCyan, color.Bold)
	large := color.New(color.FgYellow, color.Bold)
	small := color.New(color.FgGreen)
	failed := color.New(color.FgRed)

	label.Fprint(w, "Task:       ")
	fmt.Fprintln(w, r.Task)

	label.Fprint(w, "Suggestion: ")
	fmt.Fprintln(w, r.Suggestion)

	label.Fprint(w, "Size:       ")
	if r.Cheer.Classification.IsLarge {
		large.Fprint(w, "large")
	} else {
		small.Fprint(w, "small")
	}
	fmt.Fprintf(w, " (%s)\n", r.Cheer.Classification.Reason)

	switch {
	case r.Cheer.Meme != nil:
		label.Fprint(w, "Meme:       ")
		fmt.Fprintln(w, r.Cheer.Meme.ImageURL)
	case r.Cheer.MemeErr != nil:
		label.Fprint(w, "Meme:       ")
		failed.Fprintln(w, "not available")
	}
}

func cmdAssist() *cli.Command {
	var task string
	var assistantCfg assistantConfig

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "task",
			Aliases:     []string{"t"},
			Usage:       "Task description to get help with",
			Required:    true,
			Destination: &task,
		},
	}
	flags = append(flags, assistantCfg.Flags()...)

	return &cli.Command{
		Name:    "assist",
		Aliases: []string{"a"},
		Usage:   "Suggest how to start a task and cheer if it is large",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			opts, closer, err := assistantCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer closer()

			report, err := runAssist(ctx, usecase.NewAssistantUseCase(opts...), task)
			if err != nil {
				return err
			}

			if report.Cheer.MemeErr != nil {
				_ = errutil.Handle(ctx, report.Cheer.MemeErr, "meme generation failed")
			}

			printAssistReport(os.Stdout, report)
			return nil
		},
	}
}
