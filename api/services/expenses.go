package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/splitbook/splitbook-services/internal/events"
	"github.com/splitbook/splitbook-services/models"
)

// CreateExpenseService adds an expense to one of the caller's groups.
func CreateExpenseService(svc *Service, w http.ResponseWriter, r *http.Request) {

	log := logger(r.Context())

	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	groupID, ok := pathID(r, "group-id")
	if !ok {
		HandleErrResponse(w, http.StatusNotFound, errors.New("group not found"))
		return
	}

	var req models.CreateExpenseRequest
	if err := decodeBody(w, r, &req); err != nil {
		log.Warn().Err(err).Msg("Invalid request payload")
		HandleErrResponse(w, http.StatusBadRequest, errors.New("invalid request payload"))
		return
	}

	req.Description = strings.TrimSpace(req.Description)
	if err := validate.Struct(req); err != nil {
		log.Warn().Err(err).Msg("Expense failed validation")
		HandleErrResponse(w, http.StatusBadRequest, errors.New(validationMessage(err)))
		return
	}

	if _, err := svc.Guard.AssertOwnsGroup(r.Context(), user, groupID); err != nil {
		handleGuardError(w, r, err, "group")
		return
	}

	expense, err := svc.DB.CreateExpense(r.Context(), &models.Expense{
		Description: req.Description,
		Amount:      req.Amount,
		GroupID:     groupID,
		CreatedBy:   user.ID,
	})
	if err != nil {
		log.Error().Err(err).Int64("group_id", groupID).Msg("Database error creating expense")
		HandleErrResponse(w, http.StatusInternalServerError, err)
		return
	}

	svc.publish(r.Context(), events.NewLedgerEvent(events.ExpenseCreated, groupID, expense.ID, user.ID))

	log.Info().Int64("group_id", groupID).Int64("expense_id", expense.ID).Msg("Expense created")
	location := fmt.Sprintf("%s/expenses/%d", svc.Config.BasePath, expense.ID)
	WriteResponse(w, http.StatusCreated, expense, location)
}

// GetGroupExpensesService lists the expenses of one of the caller's groups.
func GetGroupExpensesService(svc *Service, w http.ResponseWriter, r *http.Request) {

	log := logger(r.Context())

	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	groupID, ok := pathID(r, "group-id")
	if !ok {
		HandleErrResponse(w, http.StatusNotFound, errors.New("group not found"))
		return
	}

	if _, err := svc.Guard.AssertOwnsGroup(r.Context(), user, groupID); err != nil {
		handleGuardError(w, r, err, "group")
		return
	}

	expenses, err := svc.DB.GetGroupExpenses(r.Context(), groupID)
	if err != nil {
		log.Error().Err(err).Int64("group_id", groupID).Msg("Database error retrieving expenses")
		HandleErrResponse(w, http.StatusInternalServerError, err)
		return
	}

	log.Info().Int64("group_id", groupID).Int("expense_count", len(expenses)).Msg("Successfully retrieved expenses")
	WriteResponse(w, http.StatusOK, models.ExpensesResponse{
		Expenses:    expenses,
		Count:       len(expenses),
		TotalAmount: models.SumAmounts(expenses).Rounded(),
		GroupID:     groupID,
	})
}

// GetExpenseService returns one expense from one of the caller's groups.
func GetExpenseService(svc *Service, w http.ResponseWriter, r *http.Request) {

	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	expenseID, ok := pathID(r, "expense-id")
	if !ok {
		HandleErrResponse(w, http.StatusNotFound, errors.New("expense not found"))
		return
	}

	expense, err := svc.Guard.AssertOwnsExpense(r.Context(), user, expenseID)
	if err != nil {
		handleGuardError(w, r, err, "expense")
		return
	}

	WriteResponse(w, http.StatusOK, expense)
}

// DeleteExpenseService deletes one expense from one of the caller's groups.
func DeleteExpenseService(svc *Service, w http.ResponseWriter, r *http.Request) {

	log := logger(r.Context())

	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	expenseID, ok := pathID(r, "expense-id")
	if !ok {
		HandleErrResponse(w, http.StatusNotFound, errors.New("expense not found"))
		return
	}

	expense, err := svc.Guard.AssertOwnsExpense(r.Context(), user, expenseID)
	if err != nil {
		handleGuardError(w, r, err, "expense")
		return
	}

	if err := svc.DB.DeleteExpense(r.Context(), expenseID); err != nil {
		log.Error().Err(err).Int64("expense_id", expenseID).Msg("Database error deleting expense")
		HandleErrResponse(w, http.StatusInternalServerError, err)
		return
	}

	svc.publish(r.Context(), events.NewLedgerEvent(events.ExpenseDeleted, expense.GroupID, expenseID, user.ID))

	log.Info().Int64("expense_id", expenseID).Msg("Expense deleted")
	WriteResponse(w, http.StatusOK, models.MessageResponse{Message: "Expense deleted successfully"})
}
