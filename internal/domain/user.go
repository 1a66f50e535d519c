package domain

type UserID string

type User struct {
	ID          UserID `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	IsActive    bool   `json:"isActive"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateUserRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
}

type RecoverPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type UserStats struct {
	TotalProjects     int `json:"totalProjects"`
	CompletedTasks    int `json:"completedTasks"`
	ActiveProjects    int `json:"activeProjects"`
	TotalTasks        int `json:"totalTasks"`
	TotalRequirements int `json:"totalRequirements"`
}
