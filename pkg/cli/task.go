package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/hovertodo/pkg/cli/config"
	"github.com/secmon-lab/hovertodo/pkg/domain/model"
	"github.com/secmon-lab/hovertodo/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func printTasks(w io.Writer, tasks []model.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks")
		return
	}

	done := color.New(color.FgHiBlack)
	for _, t := range tasks {
		if t.Completed {
			done.Fprintf(w, "%4d [x] %s\n", t.ID, t.Description)
			continue
		}
		fmt.Fprintf(w, "%4d [ ] %s\n", t.ID, t.Description)
	}
}

func parseTaskID(c *cli.Command) (int64, error) {
	raw := c.Args().First()
	if raw == "" {
		return 0, goerr.New("task id is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, goerr.Wrap(err, "invalid task id", goerr.V(usecase.TaskIDKey, raw))
	}
	return id, nil
}

// withTasks opens the store, loads the task list and runs fn against it
func withTasks(ctx context.Context, cfg *config.Store, fn func(uc *usecase.TaskUseCase) error) error {
	store, closer, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closer()

	uc := usecase.NewTaskUseCase(store)
	uc.Load(ctx)
	return fn(uc)
}

func cmdTask() *cli.Command {
	var storeCfg config.Store

	return &cli.Command{
		Name:    "task",
		Aliases: []string{"t"},
		Usage:   "Manage tasks in the configured store",
		Flags:   storeCfg.Flags(),
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List tasks",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withTasks(ctx, &storeCfg, func(uc *usecase.TaskUseCase) error {
						printTasks(os.Stdout, uc.List(ctx))
						return nil
					})
				},
			},
			{
				Name:      "add",
				Usage:     "Add a task",
				ArgsUsage: "<description>",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withTasks(ctx, &storeCfg, func(uc *usecase.TaskUseCase) error {
						task, err := uc.Add(ctx, strings.Join(c.Args().Slice(), " "))
						if err != nil {
							return goerr.Wrap(err, "failed to add task")
						}
						fmt.Fprintf(os.Stdout, "Added %d: %s\n", task.ID, task.Description)
						return nil
					})
				},
			},
			{
				Name:      "toggle",
				Usage:     "Toggle completion of a task",
				ArgsUsage: "<id>",
				Action: func(ctx context.Context, c *cli.Command) error {
					id, err := parseTaskID(c)
					if err != nil {
						return err
					}
					return withTasks(ctx, &storeCfg, func(uc *usecase.TaskUseCase) error {
						if err := uc.Toggle(ctx, id); err != nil {
							return goerr.Wrap(err, "failed to toggle task", goerr.V(usecase.TaskIDKey, id))
						}
						printTasks(os.Stdout, uc.List(ctx))
						return nil
					})
				},
			},
			{
				Name:      "rm",
				Usage:     "Remove a task",
				ArgsUsage: "<id>",
				Action: func(ctx context.Context, c *cli.Command) error {
					id, err := parseTaskID(c)
					if err != nil {
						return err
					}
					return withTasks(ctx, &storeCfg, func(uc *usecase.TaskUseCase) error {
						if err := uc.Remove(ctx, id); err != nil {
							return goerr.Wrap(err, "failed to remove task", goerr.V(usecase.TaskIDKey, id))
						}
						printTasks(os.Stdout, uc.List(ctx))
						return nil
					})
				},
			},
		},
	}
}
