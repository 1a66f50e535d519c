package domain

type RequirementType string

const (
	RequirementTypeFunctional    RequirementType = "Funcional"
	RequirementTypeNonFunctional RequirementType = "Não Funcional"
)

type RequirementPriority string

const (
	RequirementPriorityLow      RequirementPriority = "Baixa"
	RequirementPriorityMedium   RequirementPriority = "Média"
	RequirementPriorityHigh     RequirementPriority = "Alta"
	RequirementPriorityCritical RequirementPriority = "Crítica"
)

type Requirement struct {
	ID        int                 `json:"id"`
	Title     string              `json:"titulo"`
	Details   string              `json:"descricao"`
	Type      RequirementType     `json:"tipo"`
	Category  string              `json:"categoria"`
	Priority  RequirementPriority `json:"prioridade"`
	ProjectID int                 `json:"project_id"`
	CreatedAt string              `json:"created_at"`
	UpdatedAt string              `json:"updated_at"`
	Tasks     []Task              `json:"tasks,omitempty"`
}

type CreateRequirementRequest struct {
	Title     string              `json:"titulo"`
	Details   string              `json:"descricao"`
	Type      RequirementType     `json:"tipo"`
	Category  string              `json:"categoria"`
	Priority  RequirementPriority `json:"prioridade"`
	ProjectID int                 `json:"project_id"`
}

type UpdateRequirementRequest struct {
	Title    *string              `json:"titulo,omitempty"`
	Details  *string              `json:"descricao,omitempty"`
	Type     *RequirementType     `json:"tipo,omitempty"`
	Category *string              `json:"categoria,omitempty"`
	Priority *RequirementPriority `json:"prioridade,omitempty"`
}
