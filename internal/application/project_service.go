package application

import (
	"context"
	"fmt"
	"time"

	"github.com/omnity-hq/omnity-cli/internal/adapters/querycache"
	"github.com/omnity-hq/omnity-cli/internal/domain"
	"github.com/omnity-hq/omnity-cli/internal/ports"
)

// Project lists refresh more eagerly than detail views; the dashboard leans
// on them for its landing screen.
const projectListStaleTime = 2 * time.Minute

type ProjectService struct {
	transport ports.Transport
	cache     *querycache.Cache
}

func NewProjectService(transport ports.Transport, cache *querycache.Cache) *ProjectService {
	return &ProjectService{transport: transport, cache: cache}
}

func (s *ProjectService) List(ctx context.Context, query domain.ListProjectsQuery) (domain.ListProjectsResponse, error) {
	opts := querycache.QueryOptions{StaleTime: projectListStaleTime}
	return querycache.QueryWith(ctx, s.cache, projectsKey(query), opts, func(ctx context.Context) (domain.ListProjectsResponse, error) {
		var response domain.ListProjectsResponse
		err := s.transport.Get(ctx, "/projects", encodeProjectsQuery(query), &response)
		return response, err
	})
}

func (s *ProjectService) Get(ctx context.Context, projectID int) (domain.Project, error) {
	return querycache.Query(ctx, s.cache, projectKey(projectID), func(ctx context.Context) (domain.Project, error) {
		var project domain.Project
		err := s.transport.Get(ctx, fmt.Sprintf("/projects/%d", projectID), nil, &project)
		return project, err
	})
}

func (s *ProjectService) Create(ctx context.Context, request domain.CreateProjectRequest) (domain.Project, error) {
	if len(request.Name) < 3 {
		return domain.Project{}, &domain.ValidationError{Field: "name", Message: "must be at least 3 characters"}
	}

	project, err := querycache.Mutate(ctx, s.cache, func(ctx context.Context) (domain.Project, error) {
		var created domain.Project
		err := s.transport.Post(ctx, "/projects", request, &created)
		return created, err
	})
	if err != nil {
		return domain.Project{}, err
	}

	s.cache.InvalidatePrefix("projects:")
	s.cache.Invalidate(projectStatsKey)
	s.cache.Put(projectKey(project.ID), project)
	return project, nil
}

func (s *ProjectService) Update(ctx context.Context, projectID int, request domain.UpdateProjectRequest) (domain.Project, error) {
	project, err := querycache.Mutate(ctx, s.cache, func(ctx context.Context) (domain.Project, error) {
		var updated domain.Project
		err := s.transport.Put(ctx, fmt.Sprintf("/projects/%d", projectID), request, &updated)
		return updated, err
	})
	if err != nil {
		return domain.Project{}, err
	}

	s.cache.InvalidatePrefix("projects:")
	s.cache.Put(projectKey(project.ID), project)
	return project, nil
}

func (s *ProjectService) Delete(ctx context.Context, projectID int) error {
	_, err := querycache.Mutate(ctx, s.cache, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.transport.Delete(ctx, fmt.Sprintf("/projects/%d", projectID), nil)
	})
	if err != nil {
		return err
	}

	s.cache.InvalidatePrefix("projects:")
	s.cache.Invalidate(projectStatsKey)
	s.cache.Remove(projectKey(projectID), tasksKey(projectID), requirementsKey(projectID))
	return nil
}

func (s *ProjectService) ToggleFavorite(ctx context.Context, projectID int) (domain.Project, error) {
	project, err := querycache.Mutate(ctx, s.cache, func(ctx context.Context) (domain.Project, error) {
		var updated domain.Project
		err := s.transport.Patch(ctx, fmt.Sprintf("/projects/%d/favorite", projectID), nil, &updated)
		return updated, err
	})
	if err != nil {
		return domain.Project{}, err
	}

	s.cache.InvalidatePrefix("projects:")
	s.cache.Put(projectKey(project.ID), project)
	return project, nil
}

func (s *ProjectService) SetProgress(ctx context.Context, projectID, progress int) (domain.Project, error) {
	if progress < 0 || progress > 100 {
		return domain.Project{}, &domain.ValidationError{Field: "progress", Message: "must be between 0 and 100"}
	}

	project, err := querycache.Mutate(ctx, s.cache, func(ctx context.Context) (domain.Project, error) {
		var updated domain.Project
		err := s.transport.Patch(ctx, fmt.Sprintf("/projects/%d/progress", projectID), map[string]int{"progress": progress}, &updated)
		return updated, err
	})
	if err != nil {
		return domain.Project{}, err
	}

	s.cache.InvalidatePrefix("projects:")
	s.cache.Put(projectKey(project.ID), project)
	return project, nil
}

func (s *ProjectService) Stats(ctx context.Context) (domain.ProjectStats, error) {
	return querycache.Query(ctx, s.cache, projectStatsKey, func(ctx context.Context) (domain.ProjectStats, error) {
		var stats domain.ProjectStats
		err := s.transport.Get(ctx, "/projects/stats", nil, &stats)
		return stats, err
	})
}
