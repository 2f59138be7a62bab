package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"task-manager/internal/domain"
	"task-manager/internal/repository"
)

// TaskService coordina reglas de negocio para tareas del usuario.
type TaskService struct {
	tasks repository.TaskRepository
}

func NewTaskService(tasks repository.TaskRepository) *TaskService {
	return &TaskService{tasks: tasks}
}

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrInvalidDescription = errors.New("invalid description")
	ErrInvalidTaskUpdate  = errors.New("invalid task update")
)

// allow-list de campos mutables de una tarea.
var allowedTaskUpdates = map[string]bool{
	"description": true,
	"completed":   true,
}

func (s *TaskService) Create(ctx context.Context, ownerID, description string, completed bool) (domain.Task, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return domain.Task{}, ErrInvalidDescription
	}
	task := domain.Task{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Description: description,
		Completed:   completed,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, ownerID, id string) (domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Task{}, ErrTaskNotFound
		}
		return domain.Task{}, err
	}
	return task, nil
}

func (s *TaskService) List(ctx context.Context, ownerID string, filter repository.TaskFilter) ([]domain.Task, error) {
	return s.tasks.ListByOwner(ctx, ownerID, filter)
}

// Update aplica la allow-list {description, completed}; claves desconocidas
// rechazan el request completo sin mutar la tarea.
func (s *TaskService) Update(ctx context.Context, ownerID, id string, updates map[string]any) (domain.Task, error) {
	if len(updates) == 0 {
		return domain.Task{}, ErrInvalidTaskUpdate
	}
	for key := range updates {
		if !allowedTaskUpdates[key] {
			return domain.Task{}, ErrInvalidTaskUpdate
		}
	}

	task, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return domain.Task{}, err
	}

	if raw, ok := updates["description"]; ok {
		description, ok := raw.(string)
		if !ok || strings.TrimSpace(description) == "" {
			return domain.Task{}, ErrInvalidDescription
		}
		task.Description = strings.TrimSpace(description)
	}
	if raw, ok := updates["completed"]; ok {
		completed, ok := raw.(bool)
		if !ok {
			return domain.Task{}, ErrInvalidTaskUpdate
		}
		task.Completed = completed
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, ownerID, id string) error {
	deleted, err := s.tasks.Delete(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrTaskNotFound
	}
	return nil
}
