package user

type UserResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	LeaveBalance int    `json:"leave_balance"`
	JoinedAt     string `json:"joined_at"`
	CreatedAt    string `json:"created_at"`
}

func MapToResponse(u User) UserResponse {
	return UserResponse{
		ID:           u.ID.String(),
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role.String(),
		LeaveBalance: u.LeaveBalance,
		JoinedAt:     u.JoinedAt.UTC().Format("2006-01-02"),
		CreatedAt:    u.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
	}
}

func mapToListResponse(users []User) []UserResponse {
	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = MapToResponse(u)
	}
	return resp
}
