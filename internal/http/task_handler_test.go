package http

import (
	"context"
	"encoding/json"
	"net/http"
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

func decodeTask(t *testing.T, body []byte) domain.Task {
	t.Helper()
	var resp struct {
		Task domain.Task `json:"task"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode task: %v", err)
	}
	return resp.Task
}

func TestTaskCRUD(t *testing.T) {
	env := setupEnv(t)
	_, token := registerUser(t, env, "Mike", "mike@x.com", "Red1234")

	rec := performRequest(env.router, http.MethodPost, "/tasks", map[string]any{
		"description": "buy milk",
	}, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	task := decodeTask(t, rec.Body.Bytes())
	if task.Description != "buy milk" || task.Completed {
		t.Fatalf("unexpected task: %+v", task)
	}

	rec = performRequest(env.router, http.MethodGet, "/tasks/"+task.ID, nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}

	rec = performRequest(env.router, http.MethodPatch, "/tasks/"+task.ID, map[string]any{
		"completed": true,
	}, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch: expected 200, got %d", rec.Code)
	}
	if !decodeTask(t, rec.Body.Bytes()).Completed {
		t.Fatalf("task must be completed")
	}

	rec = performRequest(env.router, http.MethodDelete, "/tasks/"+task.ID, nil, token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}
	rec = performRequest(env.router, http.MethodGet, "/tasks/"+task.ID, nil, token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", rec.Code)
	}
}

func TestTaskUpdate_RejectsUnknownField(t *testing.T) {
	env := setupEnv(t)
	_, token := registerUser(t, env, "Mike", "mike@x.com", "Red1234")

	rec := performRequest(env.router, http.MethodPost, "/tasks", map[string]any{
		"description": "buy milk",
	}, token)
	task := decodeTask(t, rec.Body.Bytes())

	rec = performRequest(env.router, http.MethodPatch, "/tasks/"+task.ID, map[string]any{
		"owner_id": "someone-else",
	}, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if env.taskRepo.tasks[task.ID].OwnerID == "someone-else" {
		t.Fatalf("task must remain unchanged")
	}
}

func TestTasks_OwnerIsolation(t *testing.T) {
	env := setupEnv(t)
	_, tokenMike := registerUser(t, env, "Mike", "mike@x.com", "Red1234")
	_, tokenAna := registerUser(t, env, "Ana", "ana@x.com", "Blue5678")

	rec := performRequest(env.router, http.MethodPost, "/tasks", map[string]any{
		"description": "mike's task",
	}, tokenMike)
	task := decodeTask(t, rec.Body.Bytes())

	if rec := performRequest(env.router, http.MethodGet, "/tasks/"+task.ID, nil, tokenAna); rec.Code != http.StatusNotFound {
		t.Fatalf("foreign get: expected 404, got %d", rec.Code)
	}
	if rec := performRequest(env.router, http.MethodDelete, "/tasks/"+task.ID, nil, tokenAna); rec.Code != http.StatusNotFound {
		t.Fatalf("foreign delete: expected 404, got %d", rec.Code)
	}

	rec = performRequest(env.router, http.MethodGet, "/tasks", nil, tokenAna)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var resp struct {
		Tasks []domain.Task `json:"tasks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(resp.Tasks) != 0 {
		t.Fatalf("ana must not see mike's tasks")
	}
}

func TestTasks_CompletedFilter(t *testing.T) {
	env := setupEnv(t)
	_, token := registerUser(t, env, "Mike", "mike@x.com", "Red1234")

	performRequest(env.router, http.MethodPost, "/tasks", map[string]any{"description": "a", "completed": true}, token)
	performRequest(env.router, http.MethodPost, "/tasks", map[string]any{"description": "b"}, token)

	rec := performRequest(env.router, http.MethodGet, "/tasks?completed=true", nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Tasks []domain.Task `json:"tasks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(resp.Tasks) != 1 || resp.Tasks[0].Description != "a" {
		t.Fatalf("unexpected filtered tasks: %+v", resp.Tasks)
	}
}

func TestTasks_InvalidFilter(t *testing.T) {
	env := setupEnv(t)
	_, token := registerUser(t, env, "Mike", "mike@x.com", "Red1234")

	for _, path := range []string{"/tasks?completed=maybe", "/tasks?limit=-1", "/tasks?sortBy=owner"} {
		if rec := performRequest(env.router, http.MethodGet, path, nil, token); rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", path, rec.Code)
		}
	}
}
