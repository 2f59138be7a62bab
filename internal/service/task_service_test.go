package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"

	"task-manager/internal/domain"
	"task-manager/internal/repository"
)

type mockTaskRepo struct {
	tasks map[string]domain.Task
}

func newMockTaskRepo() *mockTaskRepo {
	return &mockTaskRepo{tasks: make(map[string]domain.Task)}
}

func (m *mockTaskRepo) Create(_ context.Context, task domain.Task) error {
	m.tasks[task.ID] = task
	return nil
}

func (m *mockTaskRepo) GetByID(_ context.Context, ownerID, id string) (domain.Task, error) {
	task, ok := m.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return domain.Task{}, pgx.ErrNoRows
	}
	return task, nil
}

func (m *mockTaskRepo) ListByOwner(_ context.Context, ownerID string, filter repository.TaskFilter) ([]domain.Task, error) {
	var out []domain.Task
	for _, task := range m.tasks {
		if task.OwnerID != ownerID {
			continue
		}
		if filter.Completed != nil && task.Completed != *filter.Completed {
			continue
		}
		out = append(out, task)
	}
	return out, nil
}

func (m *mockTaskRepo) Update(_ context.Context, task domain.Task) error {
	current, ok := m.tasks[task.ID]
	if !ok || current.OwnerID != task.OwnerID {
		return pgx.ErrNoRows
	}
	m.tasks[task.ID] = task
	return nil
}

func (m *mockTaskRepo) Delete(_ context.Context, ownerID, id string) (bool, error) {
	task, ok := m.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return false, nil
	}
	delete(m.tasks, id)
	return true, nil
}

func TestTaskServiceCreate_RequiresDescription(t *testing.T) {
	svc := NewTaskService(newMockTaskRepo())

	if _, err := svc.Create(context.Background(), "u1", "   ", false); !errors.Is(err, ErrInvalidDescription) {
		t.Fatalf("expected ErrInvalidDescription, got %v", err)
	}
}

func TestTaskServiceGet_OwnerScoped(t *testing.T) {
	repo := newMockTaskRepo()
	svc := NewTaskService(repo)

	task, err := svc.Create(context.Background(), "u1", "buy milk", false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Get(context.Background(), "u2", task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("foreign task must look like not found, got %v", err)
	}
	got, err := svc.Get(context.Background(), "u1", task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Description != "buy milk" {
		t.Fatalf("unexpected task: %+v", got)
	}
}

func TestTaskServiceUpdate_AllowList(t *testing.T) {
	repo := newMockTaskRepo()
	svc := NewTaskService(repo)

	task, err := svc.Create(context.Background(), "u1", "buy milk", false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Update(context.Background(), "u1", task.ID, map[string]any{"owner_id": "u2"}); !errors.Is(err, ErrInvalidTaskUpdate) {
		t.Fatalf("expected ErrInvalidTaskUpdate, got %v", err)
	}
	if repo.tasks[task.ID].OwnerID != "u1" {
		t.Fatalf("task must remain unchanged on rejected update")
	}

	updated, err := svc.Update(context.Background(), "u1", task.ID, map[string]any{"completed": true, "description": "buy oat milk"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.Completed || updated.Description != "buy oat milk" {
		t.Fatalf("unexpected task after update: %+v", updated)
	}
}

func TestTaskServiceDelete(t *testing.T) {
	repo := newMockTaskRepo()
	svc := NewTaskService(repo)

	task, err := svc.Create(context.Background(), "u1", "buy milk", false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(context.Background(), "u2", task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("foreign delete must fail with not found, got %v", err)
	}
	if err := svc.Delete(context.Background(), "u1", task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(context.Background(), "u1", task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("second delete must fail with not found, got %v", err)
	}
}
