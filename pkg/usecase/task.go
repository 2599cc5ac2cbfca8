package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/hovertodo/pkg/domain/interfaces"
	"github.com/secmon-lab/hovertodo/pkg/domain/model"
	"github.com/secmon-lab/hovertodo/pkg/utils/logging"
)

// Keys the task list is persisted under
const (
	KeyTasks     = "todos"
	KeyIDCounter = "idCounter"
)

// TaskUseCase owns the ordered task collection. Each mutation produces a new
// snapshot from the stored state, persists it in a store transaction and only
// then makes it current.
type TaskUseCase struct {
	store interfaces.KVStore
	now   func() time.Time

	mu    sync.Mutex
	state model.TaskList
}

// NewTaskUseCase creates a TaskUseCase with an empty collection. Call Load to
// restore persisted state.
func NewTaskUseCase(store interfaces.KVStore) *TaskUseCase {
	return &TaskUseCase{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Load restores the collection from the store. Missing or malformed data is
// treated as empty; Load never fails.
func (uc *TaskUseCase) Load(ctx context.Context) []model.Task {
	// with failOpen set, decode only returns a nil error
	state, _ := decode(ctx, uc.store.Get, true)

	uc.mu.Lock()
	uc.state = state
	uc.mu.Unlock()

	logging.From(ctx).Info("task list loaded", "tasks", state.Len(), "next_id", state.NextID())
	return state.Tasks()
}

type getFunc func(ctx context.Context, key string) ([]byte, error)

// decode builds a TaskList from the stored keys. Absent keys and malformed
// values count as empty. Other read errors are logged and ignored when
// failOpen is set, and returned otherwise.
func decode(ctx context.Context, get getFunc, failOpen bool) (model.TaskList, error) {
	logger := logging.From(ctx)

	tasks := []model.Task{}
	raw, ok, err := read(ctx, get, KeyTasks, failOpen)
	if err != nil {
		return model.TaskList{}, err
	}
	if ok {
		if err := json.Unmarshal(raw, &tasks); err != nil {
			logger.Warn("stored task list is malformed, starting empty", "error", err, "key", KeyTasks)
			tasks = []model.Task{}
		}
	}

	var nextID int64
	raw, ok, err = read(ctx, get, KeyIDCounter, failOpen)
	if err != nil {
		return model.TaskList{}, err
	}
	if ok {
		if err := json.Unmarshal(raw, &nextID); err != nil {
			logger.Warn("stored id counter is malformed, deriving from tasks", "error", err, "key", KeyIDCounter)
			nextID = 0
		}
	}

	return model.NewTaskList(tasks, nextID), nil
}

func read(ctx context.Context, get getFunc, key string, failOpen bool) ([]byte, bool, error) {
	raw, err := get(ctx, key)
	if err == nil {
		return raw, true, nil
	}
	if errors.Is(err, interfaces.ErrNotFound) {
		return nil, false, nil
	}
	if !failOpen {
		return nil, false, goerr.Wrap(err, "failed to read stored value", goerr.V("key", key))
	}

	logging.From(ctx).Warn("failed to read stored value, treating as empty", "error", err, "key", key)
	return nil, false, nil
}

// List returns the current tasks in display order
func (uc *TaskUseCase) List(ctx context.Context) []model.Task {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.state.Tasks()
}

// NextID returns the id the next added task will receive
func (uc *TaskUseCase) NextID(ctx context.Context) int64 {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.state.NextID()
}

// Add appends a new task. A blank description returns ErrEmptyDescription and
// leaves the collection unchanged.
func (uc *TaskUseCase) Add(ctx context.Context, description string) (*model.Task, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, goerr.Wrap(ErrEmptyDescription, "cannot add task")
	}

	var created model.Task
	err := uc.update(ctx, func(l model.TaskList) model.TaskList {
		next, task := l.Append(description, uc.now())
		created = task
		return next
	})
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Debug("task added", TaskIDKey, created.ID)
	return &created, nil
}

// Toggle flips the completion state of id. Unknown ids are a no-op.
func (uc *TaskUseCase) Toggle(ctx context.Context, id int64) error {
	return uc.update(ctx, func(l model.TaskList) model.TaskList {
		return l.Toggle(id)
	})
}

// Remove deletes id. Unknown ids are a no-op.
func (uc *TaskUseCase) Remove(ctx context.Context, id int64) error {
	return uc.update(ctx, func(l model.TaskList) model.TaskList {
		return l.Remove(id)
	})
}

// update re-reads the stored list inside a store transaction, applies fn and
// writes the result back, so processes sharing the store never hand out the
// same id or drop each other's tasks. The in-memory snapshot is replaced only
// after the transaction commits.
func (uc *TaskUseCase) update(ctx context.Context, fn func(model.TaskList) model.TaskList) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	var next model.TaskList
	err := uc.store.Transaction(ctx, func(ctx context.Context, tx interfaces.KVTx) error {
		current, err := decode(ctx, tx.Get, false)
		if err != nil {
			return err
		}

		next = fn(current)
		return persist(ctx, tx, next)
	})
	if err != nil {
		return err
	}

	uc.state = next
	return nil
}

// persist writes the task list before the counter. If the counter write fails
// the next Load derives it from the stored ids.
func persist(ctx context.Context, tx interfaces.KVTx, l model.TaskList) error {
	tasks, err := json.Marshal(l.Tasks())
	if err != nil {
		return goerr.Wrap(err, "failed to marshal tasks")
	}
	counter, err := json.Marshal(l.NextID())
	if err != nil {
		return goerr.Wrap(err, "failed to marshal id counter")
	}

	if err := tx.Put(ctx, KeyTasks, tasks); err != nil {
		return goerr.Wrap(err, "failed to persist tasks", goerr.V("count", l.Len()))
	}
	if err := tx.Put(ctx, KeyIDCounter, counter); err != nil {
		return goerr.Wrap(err, "failed to persist id counter", goerr.V("next_id", l.NextID()))
	}

	return nil
}
