package models

// Group is a named collection of expenses owned by one user.
type Group struct {
	ID          int64   `json:"id,omitempty"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	CreatedBy   string  `json:"created_by"`
	CreatedAt   string  `json:"created_at,omitempty"`
	UpdatedAt   string  `json:"updated_at,omitempty"`
}

// GroupSummary is a group together with the aggregate of its expenses.
type GroupSummary struct {
	Group
	ExpenseCount int   `json:"expense_count"`
	TotalAmount  Money `json:"total_amount"`
}

// GroupsResponse holds the caller's groups.
type GroupsResponse struct {
	Groups []GroupSummary `json:"groups"`
	Count  int            `json:"count"`
}

// CreateGroupRequest is the body of POST /groups.
type CreateGroupRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
}
