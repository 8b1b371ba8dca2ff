package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/splitbook/splitbook-services/db"
	"github.com/splitbook/splitbook-services/internal/events"
	"github.com/splitbook/splitbook-services/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateExpenseService(t *testing.T) {
	for _, body := range []string{
		`{"description": "Lift ticket", "amount": 89.00}`,
		`{"description": "Lift ticket", "amount": "89"}`,
	} {
		svc, mockDB, mockPublisher := newTestService()

		mockDB.On("GetOwnedGroup", mock.Anything, int64(7), "u1").Return(&models.Group{ID: 7, CreatedBy: "u1"}, nil)
		mockDB.On("CreateExpense", mock.Anything, mock.MatchedBy(func(e *models.Expense) bool {
			return e.Description == "Lift ticket" && e.Amount.Equal(models.MustMoney("89").Decimal) && e.GroupID == 7 && e.CreatedBy == "u1"
		})).Return(&models.Expense{ID: 3, Description: "Lift ticket", Amount: models.MustMoney("89"), GroupID: 7, CreatedBy: "u1"}, nil)
		mockPublisher.On("Publish", mock.Anything, mock.MatchedBy(func(e events.LedgerEvent) bool {
			return e.Type == events.ExpenseCreated && e.ExpenseID == 3 && e.GroupID == 7
		})).Return(nil)

		rr := httptest.NewRecorder()
		CreateExpenseService(svc, rr, newRequest(http.MethodPost, "/api/groups/7/expenses", body, map[string]string{"group-id": "7"}))

		assert.Equal(t, http.StatusCreated, rr.Code, body)
		assert.Contains(t, rr.Body.String(), `"amount":89.00`)
		assert.Equal(t, "/api/expenses/3", rr.Header().Get("Location"))
		mockDB.AssertExpectations(t)
		mockPublisher.AssertExpectations(t)
	}
}

func TestCreateExpenseService_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantError string
	}{
		{name: "zero amount", body: `{"description": "x", "amount": 0}`, wantError: "amount must be greater than 0"},
		{name: "negative amount", body: `{"description": "x", "amount": -5}`, wantError: "amount must be greater than 0"},
		{name: "missing amount", body: `{"description": "x"}`, wantError: "amount must be greater than 0"},
		{name: "missing description", body: `{"amount": 5}`, wantError: "description is required"},
		{name: "blank description", body: `{"description": "  ", "amount": 5}`, wantError: "description is required"},
		{name: "fractional cents", body: `{"description": "x", "amount": 1.005}`, wantError: "amount must have at most two decimal places and be below 9999999999.99"},
		{name: "amount not a number", body: `{"description": "x", "amount": "lots"}`, wantError: "invalid request payload"},
		{name: "amount exponent too large", body: `{"description": "x", "amount": 1e2000000}`, wantError: "invalid request payload"},
		{name: "amount exponent too small", body: `{"description": "x", "amount": 1e-2000000}`, wantError: "invalid request payload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockDB, _ := newTestService()

			rr := httptest.NewRecorder()
			CreateExpenseService(svc, rr, newRequest(http.MethodPost, "/api/groups/7/expenses", tt.body, map[string]string{"group-id": "7"}))

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tt.wantError, decodeError(t, rr))
			mockDB.AssertNotCalled(t, "CreateExpense", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateExpenseService_GroupNotOwned(t *testing.T) {
	svc, mockDB, _ := newTestService()

	mockDB.On("GetOwnedGroup", mock.Anything, int64(7), "u1").Return(nil, db.ErrNotFound)

	rr := httptest.NewRecorder()
	CreateExpenseService(svc, rr, newRequest(http.MethodPost, "/api/groups/7/expenses", `{"description": "x", "amount": 1}`, map[string]string{"group-id": "7"}))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	mockDB.AssertNotCalled(t, "CreateExpense", mock.Anything, mock.Anything)
}

func TestGetGroupExpensesService(t *testing.T) {
	svc, mockDB, _ := newTestService()

	mockDB.On("GetOwnedGroup", mock.Anything, int64(7), "u1").Return(&models.Group{ID: 7, CreatedBy: "u1"}, nil)
	mockDB.On("GetGroupExpenses", mock.Anything, int64(7)).Return([]models.Expense{
		{ID: 2, Description: "b", Amount: models.MustMoney("0.1"), GroupID: 7, CreatedBy: "u1"},
		{ID: 1, Description: "a", Amount: models.MustMoney("0.2"), GroupID: 7, CreatedBy: "u1"},
	}, nil)

	rr := httptest.NewRecorder()
	GetGroupExpensesService(svc, rr, newRequest(http.MethodGet, "/api/groups/7/expenses", nil, map[string]string{"group-id": "7"}))

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp models.ExpensesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, int64(7), resp.GroupID)
	assert.Equal(t, "0.30", resp.TotalAmount.StringFixed(2))
	assert.Contains(t, rr.Body.String(), `"total_amount":0.30`)
}

func TestGetExpenseService(t *testing.T) {
	svc, mockDB, _ := newTestService()

	mockDB.On("GetExpense", mock.Anything, int64(3)).Return(&models.Expense{ID: 3, Description: "x", Amount: models.MustMoney("1"), GroupID: 7, CreatedBy: "u1"}, nil)
	mockDB.On("GetOwnedGroup", mock.Anything, int64(7), "u1").Return(&models.Group{ID: 7, CreatedBy: "u1"}, nil)

	rr := httptest.NewRecorder()
	GetExpenseService(svc, rr, newRequest(http.MethodGet, "/api/expenses/3", nil, map[string]string{"expense-id": "3"}))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"group_id":7`)
}

func TestGetExpenseService_OtherUsersGroupIs404(t *testing.T) {
	svc, mockDB, _ := newTestService()

	mockDB.On("GetExpense", mock.Anything, int64(3)).Return(&models.Expense{ID: 3, GroupID: 9, CreatedBy: "u2"}, nil)
	mockDB.On("GetOwnedGroup", mock.Anything, int64(9), "u1").Return(nil, db.ErrNotFound)

	rr := httptest.NewRecorder()
	GetExpenseService(svc, rr, newRequest(http.MethodGet, "/api/expenses/3", nil, map[string]string{"expense-id": "3"}))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "expense not found", decodeError(t, rr))
}

func TestDeleteExpenseService(t *testing.T) {
	svc, mockDB, mockPublisher := newTestService()

	mockDB.On("GetExpense", mock.Anything, int64(3)).Return(&models.Expense{ID: 3, GroupID: 7, CreatedBy: "u1"}, nil)
	mockDB.On("GetOwnedGroup", mock.Anything, int64(7), "u1").Return(&models.Group{ID: 7, CreatedBy: "u1"}, nil)
	mockDB.On("DeleteExpense", mock.Anything, int64(3)).Return(nil)
	mockPublisher.On("Publish", mock.Anything, mock.MatchedBy(func(e events.LedgerEvent) bool {
		return e.Type == events.ExpenseDeleted && e.ExpenseID == 3 && e.GroupID == 7
	})).Return(nil)

	rr := httptest.NewRecorder()
	DeleteExpenseService(svc, rr, newRequest(http.MethodDelete, "/api/expenses/3", nil, map[string]string{"expense-id": "3"}))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message": "Expense deleted successfully"}`, rr.Body.String())
	mockDB.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestDeleteExpenseService_Absent(t *testing.T) {
	svc, mockDB, _ := newTestService()

	mockDB.On("GetExpense", mock.Anything, int64(3)).Return(nil, db.ErrNotFound)

	rr := httptest.NewRecorder()
	DeleteExpenseService(svc, rr, newRequest(http.MethodDelete, "/api/expenses/3", nil, map[string]string{"expense-id": "3"}))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	mockDB.AssertNotCalled(t, "DeleteExpense", mock.Anything, mock.Anything)
}
