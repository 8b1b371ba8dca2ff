package models

// Expense is a monetary line item belonging to exactly one group.
type Expense struct {
	ID          int64  `json:"id,omitempty"`
	Description string `json:"description"`
	Amount      Money  `json:"amount"`
	GroupID     int64  `json:"group_id"`
	CreatedBy   string `json:"created_by"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// ExpensesResponse holds the expenses of one group.
type ExpensesResponse struct {
	Expenses    []Expense `json:"expenses"`
	Count       int       `json:"count"`
	TotalAmount Money     `json:"total_amount"`
	GroupID     int64     `json:"group_id"`
}

// CreateExpenseRequest is the body of POST /groups/{group-id}/expenses.
type CreateExpenseRequest struct {
	Description string `json:"description" validate:"required,max=255"`
	Amount      Money  `json:"amount" validate:"positive,cents"`
}
