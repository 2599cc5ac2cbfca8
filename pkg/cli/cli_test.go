package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/hovertodo/pkg/domain/model"
	"github.com/secmon-lab/hovertodo/pkg/repository/file"
	"github.com/secmon-lab/hovertodo/pkg/usecase"
	"github.com/secmon-lab/hovertodo/pkg/utils/logging"
)

func TestRun_TaskCommands(t *testing.T) {
	orig := logging.Default()
	t.Cleanup(func() { logging.SetDefault(orig) })

	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "data")
	logPath := filepath.Join(t.TempDir(), "test.log")
	run := func(args ...string) error {
		base := []string{"hovertodo", "--log-output", logPath, "task", "--store-backend", "file", "--store-dir", dir}
		return Run(ctx, append(base, args...), "test")
	}

	gt.NoError(t, run("add", "buy", "milk")).Required()
	gt.NoError(t, run("add", "write report")).Required()
	gt.NoError(t, run("toggle", "0")).Required()
	gt.NoError(t, run("rm", "1")).Required()
	gt.NoError(t, run("list")).Required()
	gt.Value(t, run("toggle", "abc")).NotNil()

	store, err := file.New(dir)
	gt.NoError(t, err).Required()
	defer func() { gt.NoError(t, store.Close()) }()

	uc := usecase.NewTaskUseCase(store)
	tasks := uc.Load(ctx)
	gt.Array(t, tasks).Length(1)
	gt.Value(t, tasks[0].Description).Equal("buy milk")
	gt.Bool(t, tasks[0].Completed).True()
	gt.Value(t, uc.NextID(ctx)).Equal(int64(2))
}

func TestRunAssist_WithoutBackends(t *testing.T) {
	report, err := runAssist(context.Background(), usecase.NewAssistantUseCase(), "rewrite everything")
	gt.NoError(t, err).Required()
	gt.Value(t, report.Suggestion).Equal(usecase.FallbackSuggestion)
	gt.Bool(t, report.Cheer.Classification.IsLarge).False()
	gt.Value(t, report.Cheer.Classification.Reason).Equal(usecase.ReasonClassificationError)
	gt.Value(t, report.Cheer.Meme).Nil()
}

func TestRunAssist_RejectsBlankTask(t *testing.T) {
	_, err := runAssist(context.Background(), usecase.NewAssistantUseCase(), "  ")
	gt.Error(t, err).Is(usecase.ErrEmptyTask)
}

func TestPrintAssistReport(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	printAssistReport(&buf, &assistReport{
		Task:       "migrate the database",
		Suggestion: "List the tables first.",
		Cheer: &model.CheerResult{
			Classification: model.Classification{IsLarge: true, Reason: "many systems"},
			Meme:           &model.Meme{ImageURL: "https://img.example.com/m.png"},
		},
	})

	out := buf.String()
	gt.String(t, out).Contains("migrate the database")
	gt.String(t, out).Contains("List the tables first.")
	gt.String(t, out).Contains("large (many systems)")
	gt.String(t, out).Contains("https://img.example.com/m.png")
}

func TestPrintTasks(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	printTasks(&buf, []model.Task{
		{ID: 0, Description: "buy milk", Completed: true},
		{ID: 3, Description: "call mom"},
	})
	gt.String(t, buf.String()).Contains("   0 [x] buy milk")
	gt.String(t, buf.String()).Contains("   3 [ ] call mom")

	buf.Reset()
	printTasks(&buf, nil)
	gt.String(t, buf.String()).Contains("No tasks")
}
