package domain

type ProjectStatus string

const (
	ProjectStatusActive     ProjectStatus = "Ativo"
	ProjectStatusPaused     ProjectStatus = "Pausado"
	ProjectStatusCompleted  ProjectStatus = "Concluído"
	ProjectStatusCancelled  ProjectStatus = "Cancelado"
	ProjectStatusInProgress ProjectStatus = "Em Andamento"
)

type ProjectPriority string

const (
	ProjectPriorityLow      ProjectPriority = "Baixa"
	ProjectPriorityMedium   ProjectPriority = "Média"
	ProjectPriorityHigh     ProjectPriority = "Alta"
	ProjectPriorityCritical ProjectPriority = "Crítica"
)

type Project struct {
	ID               int             `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Stack            string          `json:"stack"`
	Notes            string          `json:"notes,omitempty"`
	Status           ProjectStatus   `json:"status"`
	Priority         ProjectPriority `json:"priority"`
	Progress         int             `json:"progress"`
	IsFavorite       bool            `json:"isFavorite"`
	Metadata         map[string]any  `json:"metadata,omitempty"`
	GitRepositoryURL string          `json:"gitRepositoryUrl,omitempty"`
	CreatedAt        string          `json:"createdAt"`
	UpdatedAt        string          `json:"updatedAt"`
	UserID           UserID          `json:"userId"`
	TaskCount        int             `json:"taskCount,omitempty"`
	CompletedTasks   int             `json:"completedTaskCount,omitempty"`
	RequirementCount int             `json:"requirementCount,omitempty"`
}

type CreateProjectRequest struct {
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Stack            string          `json:"stack"`
	Status           ProjectStatus   `json:"status,omitempty"`
	Priority         ProjectPriority `json:"priority,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	Metadata         map[string]any  `json:"metadata,omitempty"`
	GitRepositoryURL string          `json:"gitRepositoryUrl,omitempty"`
}

type UpdateProjectRequest struct {
	Name             *string          `json:"name,omitempty"`
	Description      *string          `json:"description,omitempty"`
	Stack            *string          `json:"stack,omitempty"`
	Status           *ProjectStatus   `json:"status,omitempty"`
	Priority         *ProjectPriority `json:"priority,omitempty"`
	Notes            *string          `json:"notes,omitempty"`
	GitRepositoryURL *string          `json:"gitRepositoryUrl,omitempty"`
}

type ListProjectsQuery struct {
	Page      int             `json:"page,omitempty"`
	Limit     int             `json:"limit,omitempty"`
	Status    ProjectStatus   `json:"status,omitempty"`
	Priority  ProjectPriority `json:"priority,omitempty"`
	Favorite  *bool           `json:"favorite,omitempty"`
	Search    string          `json:"search,omitempty"`
	SortBy    string          `json:"sortBy,omitempty"`
	SortOrder string          `json:"sortOrder,omitempty"`
}

type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

type ListProjectsResponse struct {
	Projects   []Project  `json:"projects"`
	Pagination Pagination `json:"pagination"`
}

type ProjectStats struct {
	Total           int            `json:"total"`
	Active          int            `json:"active"`
	Completed       int            `json:"completed"`
	Favorite        int            `json:"favorite"`
	AverageProgress float64        `json:"averageProgress"`
	ByStatus        map[string]int `json:"byStatus"`
	ByPriority      map[string]int `json:"byPriority"`
}
