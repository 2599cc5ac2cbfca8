package model

import (
	"slices"
	"time"
)

// Task is a user entered to-do item
type Task struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
}

// TaskList is an immutable snapshot of the ordered task collection and the
// id counter. Insertion order is display order. Update methods return a new
// snapshot and leave the receiver untouched.
type TaskList struct {
	tasks  []Task
	nextID int64
}

// NewTaskList builds a snapshot from persisted state. The counter is raised
// above every stored id so that ids are never reused.
func NewTaskList(tasks []Task, nextID int64) TaskList {
	for _, t := range tasks {
		if t.ID >= nextID {
			nextID = t.ID + 1
		}
	}
	if nextID < 0 {
		nextID = 0
	}

	return TaskList{
		tasks:  slices.Clone(tasks),
		nextID: nextID,
	}
}

// Tasks returns a copy of the tasks in display order
func (l TaskList) Tasks() []Task {
	if l.tasks == nil {
		return []Task{}
	}
	return slices.Clone(l.tasks)
}

// NextID returns the id the next appended task will receive
func (l TaskList) NextID() int64 {
	return l.nextID
}

// Len returns the number of tasks
func (l TaskList) Len() int {
	return len(l.tasks)
}

// Find returns the task with id
func (l TaskList) Find(id int64) (Task, bool) {
	idx := l.indexOf(id)
	if idx < 0 {
		return Task{}, false
	}
	return l.tasks[idx], true
}

// Append adds a new incomplete task at the end. The caller is responsible for
// validating description.
func (l TaskList) Append(description string, now time.Time) (TaskList, Task) {
	task := Task{
		ID:          l.nextID,
		Description: description,
		Completed:   false,
		CreatedAt:   now,
	}

	tasks := make([]Task, len(l.tasks), len(l.tasks)+1)
	copy(tasks, l.tasks)
	tasks = append(tasks, task)

	return TaskList{tasks: tasks, nextID: l.nextID + 1}, task
}

// Toggle flips the completion state of id. Unknown ids yield an equal snapshot.
func (l TaskList) Toggle(id int64) TaskList {
	idx := l.indexOf(id)
	if idx < 0 {
		return l
	}

	tasks := slices.Clone(l.tasks)
	tasks[idx].Completed = !tasks[idx].Completed
	return TaskList{tasks: tasks, nextID: l.nextID}
}

// Remove deletes id. Remaining tasks keep their ids and order.
func (l TaskList) Remove(id int64) TaskList {
	idx := l.indexOf(id)
	if idx < 0 {
		return l
	}

	tasks := make([]Task, 0, len(l.tasks)-1)
	tasks = append(tasks, l.tasks[:idx]...)
	tasks = append(tasks, l.tasks[idx+1:]...)
	return TaskList{tasks: tasks, nextID: l.nextID}
}

func (l TaskList) indexOf(id int64) int {
	return slices.IndexFunc(l.tasks, func(t Task) bool { return t.ID == id })
}
