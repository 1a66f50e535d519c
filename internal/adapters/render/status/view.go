package status

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/omnity-hq/omnity-cli/internal/domain"
)

// Overview is everything the status screen shows: who is signed in, the
// aggregate project numbers, and the projects themselves.
type Overview struct {
	Session  domain.Session
	Stats    *domain.ProjectStats
	Projects []domain.Project
	Unread   int
}

type RenderOptions struct {
	Now time.Time
}

func renderView(overview Overview, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Omnity Workspace"),
		sessionLine(overview.Session, s),
	}

	if overview.Unread > 0 {
		lines = append(lines, s.warning.Render(fmt.Sprintf("unread notifications: %d", overview.Unread)))
	}

	if overview.Stats != nil {
		lines = append(lines, s.section.Render(statsLine(*overview.Stats, s)))
	}

	lines = append(lines, s.header.Render(fmt.Sprintf("projects: %d", len(overview.Projects))))

	if len(overview.Projects) == 0 {
		lines = append(lines, s.empty.Render("No projects yet."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, project := range overview.Projects {
		lines = append(lines, s.section.Render(renderProject(project, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func sessionLine(session domain.Session, s styles) string {
	if !session.IsAuthenticated || session.User == nil {
		return s.warning.Render("Not signed in. Run `om login`.")
	}

	name := strings.TrimSpace(session.User.Name)
	if name == "" {
		name = session.User.Email
	}
	return s.session.Render(fmt.Sprintf("Signed in as %s <%s>", name, session.User.Email))
}

func statsLine(stats domain.ProjectStats, s styles) string {
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.statsKey.Render("totals:"),
		" ",
		s.statsMeta.Render(fmt.Sprintf("%d projects, %d active, %d completed, %d favorites, avg progress %.0f%%",
			stats.Total, stats.Active, stats.Completed, stats.Favorite, stats.AverageProgress)),
	)
}

func renderProject(project domain.Project, s styles) string {
	title := projectTitle(project, s)

	bar := renderProgressBar(float64(project.Progress), 24, s)
	progressColor := interpolateColor(float64(project.Progress), 0, 100)
	progressStyle := lipgloss.NewStyle().Foreground(progressColor)
	meta := progressStyle.Render(fmt.Sprintf("%3d%% done", clampProgress(project.Progress)))

	statusStyle := lipgloss.NewStyle().Foreground(statusColor(project.Status))
	detail := statusStyle.Render(fmt.Sprintf("[%s]", project.Status))

	line := lipgloss.JoinHorizontal(lipgloss.Top, "  ", bar, " ", meta, " ", detail)

	parts := []string{title, line}
	if project.TaskCount > 0 {
		parts = append(parts, s.detail.Render(fmt.Sprintf("  tasks: %d/%d done", project.CompletedTasks, project.TaskCount)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func projectTitle(project domain.Project, s styles) string {
	title := s.project.Render(fmt.Sprintf("%s (#%d)", strings.TrimSpace(project.Name), project.ID))
	if project.IsFavorite {
		title = lipgloss.JoinHorizontal(lipgloss.Top, title, " ", s.favorite.Render("*"))
	}
	if project.Priority == domain.ProjectPriorityHigh || project.Priority == domain.ProjectPriorityCritical {
		title = lipgloss.JoinHorizontal(lipgloss.Top, title, " ", s.warning.Render(string(project.Priority)))
	}
	return title
}

func renderProgressBar(donePercent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	done := clampPercent(donePercent)
	filled := int(math.Round(float64(width) * done / 100.0))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	empty := width - filled
	fillSegment := s.barFill.Render(strings.Repeat("=", filled))
	emptySegment := s.barEmpty.Render(strings.Repeat("-", empty))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		fillSegment,
		emptySegment,
		s.barBracket.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func clampProgress(v int) int {
	return int(clampPercent(float64(v)))
}

func statusColor(status domain.ProjectStatus) lipgloss.Color {
	switch status {
	case domain.ProjectStatusActive, domain.ProjectStatusInProgress:
		return lipgloss.Color("42")
	case domain.ProjectStatusPaused:
		return lipgloss.Color("220")
	case domain.ProjectStatusCompleted:
		return lipgloss.Color("245")
	case domain.ProjectStatusCancelled:
		return lipgloss.Color("203")
	default:
		return lipgloss.Color("252")
	}
}

func interpolateColor(value, min, max float64) lipgloss.Color {
	// Guard against division by zero
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	// ANSI 256 greyscale ramp: 240 (faded) at min, 255 (bright) at max.
	baseColor := 240.0
	targetColor := 255.0

	interpolated := baseColor + (targetColor-baseColor)*normalized
	return lipgloss.Color(fmt.Sprintf("%d", int(interpolated)))
}
