package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnity-hq/omnity-cli/internal/domain"
)

func TestProjectServiceListCachesPerFilter(t *testing.T) {
	t.Parallel()

	transport := newFakeTransport()
	transport.stub("GET", "/projects", domain.ListProjectsResponse{
		Projects: []domain.Project{{ID: 1, Name: "Atlas"}},
	}, nil)

	svc := NewProjectService(transport, newServiceCache())

	all := domain.ListProjectsQuery{}
	actives := domain.ListProjectsQuery{Status: domain.ProjectStatusActive}

	_, err := svc.List(context.Background(), all)
	require.NoError(t, err)
	_, err = svc.List(context.Background(), all)
	require.NoError(t, err)
	assert.Equal(t, 1, transport.callCount("GET", "/projects"))

	// A different filter is a different cache entry.
	_, err = svc.List(context.Background(), actives)
	require.NoError(t, err)
	assert.Equal(t, 2, transport.callCount("GET", "/projects"))

	call, ok := transport.lastCall("GET", "/projects")
	require.True(t, ok)
	assert.Equal(t, string(domain.ProjectStatusActive), call.query.Get("status"))
}

func TestProjectServiceCreateRefreshesListsAndSeedsDetail(t *testing.T) {
	t.Parallel()

	transport := newFakeTransport()
	transport.stub("GET", "/projects", domain.ListProjectsResponse{}, nil)
	transport.stub("POST", "/projects", domain.Project{ID: 7, Name: "Helios"}, nil)

	svc := NewProjectService(transport, newServiceCache())

	_, err := svc.List(context.Background(), domain.ListProjectsQuery{})
	require.NoError(t, err)

	created, err := svc.Create(context.Background(), domain.CreateProjectRequest{Name: "Helios", Description: "d", Stack: "go"})
	require.NoError(t, err)
	assert.Equal(t, 7, created.ID)

	// Lists were invalidated by the create.
	_, err = svc.List(context.Background(), domain.ListProjectsQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, transport.callCount("GET", "/projects"))

	// The detail view was seeded from the response.
	got, err := svc.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Helios", got.Name)
	assert.Zero(t, transport.callCount("GET", "/projects/7"))
}

func TestProjectServiceCreateValidatesName(t *testing.T) {
	t.Parallel()

	transport := newFakeTransport()
	svc := NewProjectService(transport, newServiceCache())

	_, err := svc.Create(context.Background(), domain.CreateProjectRequest{Name: "ab"})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)
	assert.Zero(t, transport.totalCalls())
}

func TestProjectServiceSetProgressBounds(t *testing.T) {
	t.Parallel()

	transport := newFakeTransport()
	svc := NewProjectService(transport, newServiceCache())

	var verr *domain.ValidationError
	_, err := svc.SetProgress(context.Background(), 1, -1)
	require.ErrorAs(t, err, &verr)
	_, err = svc.SetProgress(context.Background(), 1, 101)
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, transport.totalCalls())
}

func TestProjectServiceDeleteEvictsRelatedEntries(t *testing.T) {
	t.Parallel()

	transport := newFakeTransport()
	transport.stub("DELETE", "/projects/3", nil, nil)

	cache := newServiceCache()
	cache.Put(projectKey(3), domain.Project{ID: 3})
	cache.Put(tasksKey(3), []domain.Task{{ID: 10}})
	cache.Put(requirementsKey(3), []domain.Requirement{{ID: 20}})

	svc := NewProjectService(transport, cache)
	require.NoError(t, svc.Delete(context.Background(), 3))

	for _, key := range []string{projectKey(3), tasksKey(3), requirementsKey(3)} {
		_, _, ok := cache.Peek(key)
		assert.False(t, ok, "expected %s to be evicted", key)
	}
}

func TestProjectServiceToggleFavoriteUpdatesDetail(t *testing.T) {
	t.Parallel()

	transport := newFakeTransport()
	transport.stub("PATCH", "/projects/4/favorite", domain.Project{ID: 4, IsFavorite: true}, nil)

	svc := NewProjectService(transport, newServiceCache())

	project, err := svc.ToggleFavorite(context.Background(), 4)
	require.NoError(t, err)
	assert.True(t, project.IsFavorite)

	got, err := svc.Get(context.Background(), 4)
	require.NoError(t, err)
	assert.True(t, got.IsFavorite)
	assert.Zero(t, transport.callCount("GET", "/projects/4"))
}

func TestProjectServiceStatsCached(t *testing.T) {
	t.Parallel()

	transport := newFakeTransport()
	transport.stub("GET", "/projects/stats", domain.ProjectStats{Total: 9, Active: 4}, nil)

	svc := NewProjectService(transport, newServiceCache())

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 9, stats.Total)

	_, err = svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, transport.callCount("GET", "/projects/stats"))
}
