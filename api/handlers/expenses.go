package handlers

import (
	"net/http"

	services "github.com/splitbook/splitbook-services/api/services"
)

// @Summary Add an expense
// @Description Add an expense to one of the token owner's groups. The amount may be a number or a numeric string.
// @Tags expenses
// @Accept json
// @Produce json
// @Param group-id path int true "Group ID" example(1)
// @Param expense body models.CreateExpenseRequest true "Expense"
// @Success 201 {object} models.Expense
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /groups/{group-id}/expenses [post]
func CreateExpense(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.CreateExpenseService(svc, w, r)
	}
}

// @Summary List the expenses of a group
// @Tags expenses
// @Produce json
// @Param group-id path int true "Group ID" example(1)
// @Success 200 {object} models.ExpensesResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /groups/{group-id}/expenses [get]
func GetGroupExpenses(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.GetGroupExpensesService(svc, w, r)
	}
}

// @Summary Get an expense
// @Tags expenses
// @Produce json
// @Param expense-id path int true "Expense ID" example(1)
// @Success 200 {object} models.Expense
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /expenses/{expense-id} [get]
func GetExpense(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.GetExpenseService(svc, w, r)
	}
}

// @Summary Delete an expense
// @Tags expenses
// @Produce json
// @Param expense-id path int true "Expense ID" example(1)
// @Success 200 {object} models.MessageResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /expenses/{expense-id} [delete]
func DeleteExpense(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.DeleteExpenseService(svc, w, r)
	}
}
