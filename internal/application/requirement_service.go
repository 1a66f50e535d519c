package application

import (
	"context"
	"fmt"

	"github.com/omnity-hq/omnity-cli/internal/adapters/querycache"
	"github.com/omnity-hq/omnity-cli/internal/domain"
	"github.com/omnity-hq/omnity-cli/internal/ports"
)

type RequirementService struct {
	transport ports.Transport
	cache     *querycache.Cache
}

func NewRequirementService(transport ports.Transport, cache *querycache.Cache) *RequirementService {
	return &RequirementService{transport: transport, cache: cache}
}

func (s *RequirementService) List(ctx context.Context, projectID int) ([]domain.Requirement, error) {
	return querycache.Query(ctx, s.cache, requirementsKey(projectID), func(ctx context.Context) ([]domain.Requirement, error) {
		var requirements []domain.Requirement
		err := s.transport.Get(ctx, fmt.Sprintf("/projects/%d/requirements", projectID), nil, &requirements)
		return requirements, err
	})
}

func (s *RequirementService) Get(ctx context.Context, projectID, requirementID int) (domain.Requirement, error) {
	return querycache.Query(ctx, s.cache, requirementKey(projectID, requirementID), func(ctx context.Context) (domain.Requirement, error) {
		var requirement domain.Requirement
		err := s.transport.Get(ctx, fmt.Sprintf("/projects/%d/requirements/%d", projectID, requirementID), nil, &requirement)
		return requirement, err
	})
}

// Unlinked reports the requirements of a project that no task references
// yet. The list is not cached: it is a planning aid consulted right before
// a Link call, and a stale answer would offer rows the server will reject.
func (s *RequirementService) Unlinked(ctx context.Context, projectID int) ([]domain.Requirement, error) {
	var requirements []domain.Requirement
	err := s.transport.Get(ctx, fmt.Sprintf("/projects/%d/requirements/unlinked", projectID), nil, &requirements)
	return requirements, err
}

func (s *RequirementService) Create(ctx context.Context, projectID int, request domain.CreateRequirementRequest) (domain.Requirement, error) {
	if request.Title == "" {
		return domain.Requirement{}, &domain.ValidationError{Field: "titulo", Message: "is required"}
	}
	request.ProjectID = projectID

	requirement, err := querycache.Mutate(ctx, s.cache, func(ctx context.Context) (domain.Requirement, error) {
		var created domain.Requirement
		err := s.transport.Post(ctx, fmt.Sprintf("/projects/%d/requirements", projectID), request, &created)
		return created, err
	}, requirementsKey(projectID), projectStatsKey)
	if err != nil {
		return domain.Requirement{}, err
	}

	s.cache.Put(requirementKey(projectID, requirement.ID), requirement)
	return requirement, nil
}

func (s *RequirementService) Update(ctx context.Context, projectID, requirementID int, request domain.UpdateRequirementRequest) (domain.Requirement, error) {
	requirement, err := querycache.Mutate(ctx, s.cache, func(ctx context.Context) (domain.Requirement, error) {
		var updated domain.Requirement
		err := s.transport.Put(ctx, fmt.Sprintf("/projects/%d/requirements/%d", projectID, requirementID), request, &updated)
		return updated, err
	}, requirementsKey(projectID))
	if err != nil {
		return domain.Requirement{}, err
	}

	s.cache.Put(requirementKey(projectID, requirement.ID), requirement)
	return requirement, nil
}

func (s *RequirementService) Delete(ctx context.Context, projectID, requirementID int) error {
	_, err := querycache.Mutate(ctx, s.cache, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.transport.Delete(ctx, fmt.Sprintf("/projects/%d/requirements/%d", projectID, requirementID), nil)
	}, requirementsKey(projectID), projectStatsKey)
	if err != nil {
		return err
	}

	s.cache.Remove(requirementKey(projectID, requirementID), requirementTasksKey(requirementID))
	return nil
}

func (s *RequirementService) Tasks(ctx context.Context, requirementID int) ([]domain.Task, error) {
	return querycache.Query(ctx, s.cache, requirementTasksKey(requirementID), func(ctx context.Context) ([]domain.Task, error) {
		var tasks []domain.Task
		err := s.transport.Get(ctx, fmt.Sprintf("/requirements/%d/tasks", requirementID), nil, &tasks)
		return tasks, err
	})
}

func (s *RequirementService) Link(ctx context.Context, projectID, requirementID, taskID int) error {
	_, err := querycache.Mutate(ctx, s.cache, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.transport.Post(ctx, fmt.Sprintf("/requirements/%d/tasks/%d", requirementID, taskID), nil, nil)
	}, requirementTasksKey(requirementID), requirementKey(projectID, requirementID), taskKey(projectID, taskID))
	return err
}

func (s *RequirementService) Unlink(ctx context.Context, projectID, requirementID, taskID int) error {
	_, err := querycache.Mutate(ctx, s.cache, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.transport.Delete(ctx, fmt.Sprintf("/requirements/%d/tasks/%d", requirementID, taskID), nil)
	}, requirementTasksKey(requirementID), requirementKey(projectID, requirementID), taskKey(projectID, taskID))
	return err
}
