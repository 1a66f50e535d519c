package application

import (
	"context"
	"fmt"

	"github.com/omnity-hq/omnity-cli/internal/adapters/querycache"
	"github.com/omnity-hq/omnity-cli/internal/domain"
	"github.com/omnity-hq/omnity-cli/internal/ports"
)

type TaskService struct {
	transport ports.Transport
	cache     *querycache.Cache
}

func NewTaskService(transport ports.Transport, cache *querycache.Cache) *TaskService {
	return &TaskService{transport: transport, cache: cache}
}

func (s *TaskService) List(ctx context.Context, projectID int) ([]domain.Task, error) {
	return querycache.Query(ctx, s.cache, tasksKey(projectID), func(ctx context.Context) ([]domain.Task, error) {
		var tasks []domain.Task
		err := s.transport.Get(ctx, fmt.Sprintf("/projects/%d/tasks", projectID), nil, &tasks)
		return tasks, err
	})
}

func (s *TaskService) Get(ctx context.Context, projectID, taskID int) (domain.Task, error) {
	return querycache.Query(ctx, s.cache, taskKey(projectID, taskID), func(ctx context.Context) (domain.Task, error) {
		var task domain.Task
		err := s.transport.Get(ctx, fmt.Sprintf("/projects/%d/tasks/%d", projectID, taskID), nil, &task)
		return task, err
	})
}

func (s *TaskService) Create(ctx context.Context, projectID int, request domain.CreateTaskRequest) (domain.Task, error) {
	if request.Title == "" {
		return domain.Task{}, &domain.ValidationError{Field: "title", Message: "is required"}
	}
	request.ProjectID = projectID

	task, err := querycache.Mutate(ctx, s.cache, func(ctx context.Context) (domain.Task, error) {
		var created domain.Task
		err := s.transport.Post(ctx, fmt.Sprintf("/projects/%d/tasks", projectID), request, &created)
		return created, err
	}, tasksKey(projectID), taskStatsKey(projectID), projectStatsKey)
	if err != nil {
		return domain.Task{}, err
	}

	s.cache.Put(taskKey(projectID, task.ID), task)
	return task, nil
}

func (s *TaskService) Update(ctx context.Context, projectID, taskID int, request domain.UpdateTaskRequest) (domain.Task, error) {
	task, err := querycache.Mutate(ctx, s.cache, func(ctx context.Context) (domain.Task, error) {
		var updated domain.Task
		err := s.transport.Put(ctx, fmt.Sprintf("/projects/%d/tasks/%d", projectID, taskID), request, &updated)
		return updated, err
	}, tasksKey(projectID), taskStatsKey(projectID))
	if err != nil {
		return domain.Task{}, err
	}

	s.cache.Put(taskKey(projectID, task.ID), task)
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, projectID, taskID int) error {
	_, err := querycache.Mutate(ctx, s.cache, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.transport.Delete(ctx, fmt.Sprintf("/projects/%d/tasks/%d", projectID, taskID), nil)
	}, tasksKey(projectID), taskStatsKey(projectID), projectStatsKey)
	if err != nil {
		return err
	}

	s.cache.Remove(taskKey(projectID, taskID), taskTodosKey(projectID, taskID))
	return nil
}

func (s *TaskService) Stats(ctx context.Context, projectID int) (domain.TaskStats, error) {
	return querycache.Query(ctx, s.cache, taskStatsKey(projectID), func(ctx context.Context) (domain.TaskStats, error) {
		var stats domain.TaskStats
		err := s.transport.Get(ctx, fmt.Sprintf("/projects/%d/tasks/stats", projectID), nil, &stats)
		return stats, err
	})
}

func (s *TaskService) Todos(ctx context.Context, projectID, taskID int) ([]domain.TaskTodo, error) {
	return querycache.Query(ctx, s.cache, taskTodosKey(projectID, taskID), func(ctx context.Context) ([]domain.TaskTodo, error) {
		var todos []domain.TaskTodo
		err := s.transport.Get(ctx, fmt.Sprintf("/projects/%d/tasks/%d/todos", projectID, taskID), nil, &todos)
		return todos, err
	})
}

func (s *TaskService) AddTodo(ctx context.Context, projectID, taskID int, request domain.CreateTaskTodoRequest) (domain.TaskTodo, error) {
	if request.Description == "" {
		return domain.TaskTodo{}, &domain.ValidationError{Field: "item_description", Message: "is required"}
	}
	request.TaskID = taskID

	return querycache.Mutate(ctx, s.cache, func(ctx context.Context) (domain.TaskTodo, error) {
		var created domain.TaskTodo
		err := s.transport.Post(ctx, fmt.Sprintf("/projects/%d/tasks/%d/todos", projectID, taskID), request, &created)
		return created, err
	}, taskTodosKey(projectID, taskID), taskKey(projectID, taskID))
}

func (s *TaskService) UpdateTodo(ctx context.Context, projectID, taskID, todoID int, request domain.UpdateTaskTodoRequest) (domain.TaskTodo, error) {
	return querycache.Mutate(ctx, s.cache, func(ctx context.Context) (domain.TaskTodo, error) {
		var updated domain.TaskTodo
		err := s.transport.Put(ctx, fmt.Sprintf("/projects/%d/tasks/%d/todos/%d", projectID, taskID, todoID), request, &updated)
		return updated, err
	}, taskTodosKey(projectID, taskID), taskKey(projectID, taskID))
}

func (s *TaskService) ToggleTodo(ctx context.Context, projectID, taskID, todoID int, completed bool) (domain.TaskTodo, error) {
	request := domain.UpdateTaskTodoRequest{IsCompleted: &completed}
	return s.UpdateTodo(ctx, projectID, taskID, todoID, request)
}

func (s *TaskService) DeleteTodo(ctx context.Context, projectID, taskID, todoID int) error {
	_, err := querycache.Mutate(ctx, s.cache, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.transport.Delete(ctx, fmt.Sprintf("/projects/%d/tasks/%d/todos/%d", projectID, taskID, todoID), nil)
	}, taskTodosKey(projectID, taskID), taskKey(projectID, taskID))
	return err
}
