package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"splitcircle/internal/models"
	"splitcircle/internal/services"
	"splitcircle/internal/split"
)

func TestCreateExpense(t *testing.T) {
	handler := newTestHandler(handlerDeps{
		expenseService: stubExpenseService{
			createFn: func(_ context.Context, actorID, circleID string, input services.CreateExpenseInput) (services.ExpenseWithObligations, error) {
				if actorID != "user-1" || circleID != "circle-1" {
					t.Fatalf("unexpected actor/circle %s/%s", actorID, circleID)
				}
				if !input.Amount.Equal(decimal.RequireFromString("90.00")) {
					t.Fatalf("amount %s, want 90.00", input.Amount)
				}
				if input.SplitType != models.SplitEqual {
					t.Fatalf("split type %s, want EQUAL", input.SplitType)
				}
				return services.ExpenseWithObligations{Expense: models.Expense{ID: "exp-1"}}, nil
			},
		},
	})
	body := strings.NewReader(`{"name":"Dinner","amount":"90.00","date":"2026-08-20","split_type":"EQUAL"}`)
	req := withURLParams(authedRequest(http.MethodPost, "/circles/circle-1/transactions", body, "user-1"), map[string]string{"circleID": "circle-1"})
	rr := httptest.NewRecorder()
	handler.CreateExpense(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestCreateExpenseRejectsNegativeAmount(t *testing.T) {
	handler := newTestHandler(handlerDeps{})
	body := strings.NewReader(`{"name":"Dinner","amount":"-5.00","split_type":"EQUAL"}`)
	req := withURLParams(authedRequest(http.MethodPost, "/circles/circle-1/transactions", body, "user-1"), map[string]string{"circleID": "circle-1"})
	rr := httptest.NewRecorder()
	handler.CreateExpense(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestCreateExpenseRejectsSubCentAmount(t *testing.T) {
	handler := newTestHandler(handlerDeps{})
	body := strings.NewReader(`{"name":"Dinner","amount":"10.001","split_type":"EQUAL"}`)
	req := withURLParams(authedRequest(http.MethodPost, "/circles/circle-1/transactions", body, "user-1"), map[string]string{"circleID": "circle-1"})
	rr := httptest.NewRecorder()
	handler.CreateExpense(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestCreateExpenseInvariantViolation(t *testing.T) {
	handler := newTestHandler(handlerDeps{
		expenseService: stubExpenseService{
			createFn: func(context.Context, string, string, services.CreateExpenseInput) (services.ExpenseWithObligations, error) {
				return services.ExpenseWithObligations{}, split.ErrInvariantViolation
			},
		},
	})
	body := strings.NewReader(`{"name":"Dinner","amount":"50.00","split_type":"CUSTOM","splits":[{"user_id":"u1","amount":"20.00"},{"user_id":"u2","amount":"20.00"}]}`)
	req := withURLParams(authedRequest(http.MethodPost, "/circles/circle-1/transactions", body, "user-1"), map[string]string{"circleID": "circle-1"})
	rr := httptest.NewRecorder()
	handler.CreateExpense(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if resp["code"] != "invariant_violation" {
		t.Fatalf("expected invariant_violation code, got %q", resp["code"])
	}
}

func TestListExpensesPagination(t *testing.T) {
	handler := newTestHandler(handlerDeps{
		expenses: stubExpenseStore{
			listByCircleFn: func(_ context.Context, _ string, limit, offset int) ([]models.Expense, error) {
				if limit != 5 || offset != 10 {
					t.Fatalf("limit/offset %d/%d, want 5/10", limit, offset)
				}
				return []models.Expense{{ID: "exp-1"}}, nil
			},
			countByCircleFn: func(context.Context, string) (int, error) {
				return 11, nil
			},
		},
	})
	req := withURLParams(authedRequest(http.MethodGet, "/circles/circle-1/transactions?page=3&limit=5", nil, "user-1"), map[string]string{"circleID": "circle-1"})
	rr := httptest.NewRecorder()
	handler.ListExpenses(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Total int `json:"total"`
		Page  int `json:"page"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if resp.Total != 11 || resp.Page != 3 {
		t.Fatalf("unexpected page data: %+v", resp)
	}
}

func TestUpdateObligationRequiresIsPaid(t *testing.T) {
	handler := newTestHandler(handlerDeps{})
	body := strings.NewReader(`{}`)
	req := withURLParams(authedRequest(http.MethodPatch, "/circles/circle-1/transactions/exp-1/splits/ob-1", body, "user-1"), map[string]string{
		"circleID": "circle-1", "expenseID": "exp-1", "obligationID": "ob-1",
	})
	rr := httptest.NewRecorder()
	handler.UpdateObligation(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestUpdateObligationMarksPaid(t *testing.T) {
	handler := newTestHandler(handlerDeps{
		expenseService: stubExpenseService{
			setObligationPaidFn: func(_ context.Context, actorID, circleID, expenseID, obligationID string, isPaid bool) (models.Obligation, error) {
				if actorID != "debtor" || obligationID != "ob-1" || !isPaid {
					t.Fatalf("unexpected call %s %s %v", actorID, obligationID, isPaid)
				}
				return models.Obligation{ID: obligationID, ExpenseID: expenseID, UserID: actorID, IsPaid: true}, nil
			},
		},
	})
	body := strings.NewReader(`{"is_paid":true}`)
	req := withURLParams(authedRequest(http.MethodPatch, "/circles/circle-1/transactions/exp-1/splits/ob-1", body, "debtor"), map[string]string{
		"circleID": "circle-1", "expenseID": "exp-1", "obligationID": "ob-1",
	})
	rr := httptest.NewRecorder()
	handler.UpdateObligation(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp models.Obligation
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if !resp.IsPaid {
		t.Fatalf("expected paid obligation in response")
	}
}

func TestDeleteExpenseForbidden(t *testing.T) {
	handler := newTestHandler(handlerDeps{
		expenseService: stubExpenseService{
			deleteFn: func(context.Context, string, string, string) error {
				return services.ErrForbidden
			},
		},
	})
	req := withURLParams(authedRequest(http.MethodDelete, "/circles/circle-1/transactions/exp-1", nil, "bystander"), map[string]string{
		"circleID": "circle-1", "expenseID": "exp-1",
	})
	rr := httptest.NewRecorder()
	handler.DeleteExpense(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}
