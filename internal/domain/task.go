package domain

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "Pendente"
	TaskStatusInProgress TaskStatus = "Em Progresso"
	TaskStatusBlocked    TaskStatus = "Bloqueada"
	TaskStatusInReview   TaskStatus = "Em Revisão"
	TaskStatusDone       TaskStatus = "Concluída"
)

type Task struct {
	ID              int           `json:"id"`
	Title           string        `json:"title"`
	TaskDescription string        `json:"taskDescription"`
	GuidancePrompt  string        `json:"guidancePrompt"`
	Status          TaskStatus    `json:"status"`
	CreatedBy       string        `json:"created_by"`
	UpdatedBy       string        `json:"updated_by"`
	AdditionalInfo  string        `json:"additional_information,omitempty"`
	Result          string        `json:"result_task,omitempty"`
	ProjectID       int           `json:"project_id"`
	CreatedAt       string        `json:"createdAt"`
	UpdatedAt       string        `json:"updatedAt"`
	Todos           []TaskTodo    `json:"todos,omitempty"`
	Requirements    []Requirement `json:"requirements,omitempty"`
}

type CreateTaskRequest struct {
	Title           string `json:"title"`
	TaskDescription string `json:"taskDescription"`
	GuidancePrompt  string `json:"guidancePrompt"`
	AdditionalInfo  string `json:"additional_information,omitempty"`
	ProjectID       int    `json:"project_id"`
}

type UpdateTaskRequest struct {
	Title           *string     `json:"title,omitempty"`
	TaskDescription *string     `json:"taskDescription,omitempty"`
	GuidancePrompt  *string     `json:"guidancePrompt,omitempty"`
	AdditionalInfo  *string     `json:"additional_information,omitempty"`
	Status          *TaskStatus `json:"status,omitempty"`
	Result          *string     `json:"result_task,omitempty"`
}

type TaskStats struct {
	Total      int            `json:"total"`
	Completed  int            `json:"completed"`
	InProgress int            `json:"inProgress"`
	Pending    int            `json:"pending"`
	ByStatus   map[string]int `json:"byStatus"`
}

type TaskTodo struct {
	ID          int    `json:"id"`
	TaskID      int    `json:"task_id"`
	Sequence    int    `json:"sequence"`
	Description string `json:"item_description"`
	IsCompleted bool   `json:"is_completed"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type CreateTaskTodoRequest struct {
	TaskID      int    `json:"task_id"`
	Sequence    int    `json:"sequence"`
	Description string `json:"item_description"`
}

type UpdateTaskTodoRequest struct {
	Sequence    *int    `json:"sequence,omitempty"`
	Description *string `json:"item_description,omitempty"`
	IsCompleted *bool   `json:"is_completed,omitempty"`
}
