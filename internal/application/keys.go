package application

import (
	"net/url"
	"strconv"

	"github.com/omnity-hq/omnity-cli/internal/domain"
)

// Cache keys are composite: logical resource name plus the parameters that
// distinguish one server answer from another. List keys embed the canonical
// filter encoding so distinct filtered views cache independently and realtime
// events can invalidate them all by the "projects:" prefix.

const (
	profileKey      = "profile"
	projectStatsKey = "stats:projects"
)

func projectsKey(q domain.ListProjectsQuery) string {
	return "projects:" + encodeProjectsQuery(q).Encode()
}

func projectKey(id int) string {
	return "project:" + strconv.Itoa(id)
}

func tasksKey(projectID int) string {
	return "tasks:" + strconv.Itoa(projectID)
}

func taskKey(projectID, taskID int) string {
	return "task:" + strconv.Itoa(projectID) + ":" + strconv.Itoa(taskID)
}

func taskStatsKey(projectID int) string {
	return "stats:tasks:" + strconv.Itoa(projectID)
}

func taskTodosKey(projectID, taskID int) string {
	return "todos:" + strconv.Itoa(projectID) + ":" + strconv.Itoa(taskID)
}

func requirementsKey(projectID int) string {
	return "requirements:" + strconv.Itoa(projectID)
}

func requirementKey(projectID, requirementID int) string {
	return "requirement:" + strconv.Itoa(projectID) + ":" + strconv.Itoa(requirementID)
}

func requirementTasksKey(requirementID int) string {
	return "requirement-tasks:" + strconv.Itoa(requirementID)
}

func encodeProjectsQuery(q domain.ListProjectsQuery) url.Values {
	values := url.Values{}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Status != "" {
		values.Set("status", string(q.Status))
	}
	if q.Priority != "" {
		values.Set("priority", string(q.Priority))
	}
	if q.Favorite != nil {
		values.Set("favorite", strconv.FormatBool(*q.Favorite))
	}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	if q.SortBy != "" {
		values.Set("sortBy", q.SortBy)
	}
	if q.SortOrder != "" {
		values.Set("sortOrder", q.SortOrder)
	}
	return values
}
