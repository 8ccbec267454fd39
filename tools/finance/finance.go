// Package finance tracks personal income, expenses, and category budgets.
package finance

import (
	"context"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentools/schema"
	"github.com/effective-security/agentools/store"
	"github.com/effective-security/agentools/tools"
	"github.com/google/uuid"
)

const ToolName = "PersonalFinanceTracker"

const stateDoc = "personal_finance_data"

const (
	OpAddTransaction  = "add_transaction"
	OpGetBalance      = "get_balance"
	OpGetTransactions = "get_transactions"
	OpSetBudget       = "set_budget"
	OpGetBudgetStatus = "get_budget_status"
)

const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Transaction is a recorded income or expense.
type Transaction struct {
	TransactionID string  `json:"transaction_id" yaml:"transaction_id"`
	Type          string  `json:"type" yaml:"type"`
	Amount        float64 `json:"amount" yaml:"amount"`
	Category      string  `json:"category" yaml:"category"`
	Description   string  `json:"description,omitempty" yaml:"description,omitempty"`
	Date          string  `json:"date" yaml:"date"`
}

// Request represents the tool input.
type Request struct {
	Operation       string  `json:"operation" yaml:"operation" jsonschema:"title=operation,description=The operation to perform.,enum=add_transaction,enum=get_balance,enum=get_transactions,enum=set_budget,enum=get_budget_status" validate:"required,oneof=add_transaction get_balance get_transactions set_budget get_budget_status"`
	TransactionType string  `json:"transaction_type,omitempty" yaml:"transaction_type,omitempty" jsonschema:"title=transaction_type,enum=income,enum=expense" validate:"omitempty,oneof=income expense"`
	Amount          float64 `json:"amount,omitempty" yaml:"amount,omitempty" jsonschema:"title=amount,description=The transaction or budget amount." validate:"omitempty,gt=0"`
	Category        string  `json:"category,omitempty" yaml:"category,omitempty" jsonschema:"title=category,description=The transaction or budget category."`
	Description     string  `json:"description,omitempty" yaml:"description,omitempty" jsonschema:"title=description"`
	Date            string  `json:"date,omitempty" yaml:"date,omitempty" jsonschema:"title=date,description=Transaction date (YYYY-MM-DD); defaults to today."`
	StartDate       string  `json:"start_date,omitempty" yaml:"start_date,omitempty" jsonschema:"title=start_date,description=Filter start date (YYYY-MM-DD)."`
	EndDate         string  `json:"end_date,omitempty" yaml:"end_date,omitempty" jsonschema:"title=end_date,description=Filter end date (YYYY-MM-DD)."`
}

// Balance summarizes all recorded transactions.
type Balance struct {
	TotalIncome   float64 `json:"total_income" yaml:"total_income"`
	TotalExpenses float64 `json:"total_expenses" yaml:"total_expenses"`
	Balance       float64 `json:"balance" yaml:"balance"`
}

// BudgetStatus reports spend against a category budget.
type BudgetStatus struct {
	Category  string  `json:"category" yaml:"category"`
	Budget    float64 `json:"budget" yaml:"budget"`
	Spent     float64 `json:"spent" yaml:"spent"`
	Remaining float64 `json:"remaining" yaml:"remaining"`
}

// Response represents the tool output.
type Response struct {
	Transaction  *Transaction   `json:"transaction,omitempty" yaml:"transaction,omitempty"`
	Transactions []Transaction  `json:"transactions,omitempty" yaml:"transactions,omitempty"`
	Balance      *Balance       `json:"balance,omitempty" yaml:"balance,omitempty"`
	Budgets      []BudgetStatus `json:"budgets,omitempty" yaml:"budgets,omitempty"`
	Message      string         `json:"message,omitempty" yaml:"message,omitempty"`
}

type state struct {
	Transactions []Transaction      `json:"transactions"`
	Budgets      map[string]float64 `json:"budgets"`
}

// Tool tracks transactions and budgets in the state store.
type Tool struct {
	name        string
	description string
	funcParams  any

	store store.Store
}

var _ tools.Tool[Request, Response] = (*Tool)(nil)

func New(st store.Store) (*Tool, error) {
	sc, err := schema.New(reflect.TypeOf(Request{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	return &Tool{
		name:        ToolName,
		description: "Tracks personal finances: record income and expenses, check balances, and manage category budgets.",
		funcParams:  sc.Parameters,
		store:       st,
	}, nil
}

func (t *Tool) Name() string        { return t.name }
func (t *Tool) Description() string { return t.description }
func (t *Tool) Parameters() any     { return t.funcParams }

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	return tools.CallTyped(ctx, t, input)
}

func (t *Tool) Run(ctx context.Context, req *Request) (*Response, error) {
	var s state
	if _, err := t.store.Load(ctx, stateDoc, &s); err != nil {
		return nil, err
	}
	if s.Budgets == nil {
		s.Budgets = make(map[string]float64)
	}

	switch req.Operation {
	case OpAddTransaction:
		return t.addTransaction(ctx, &s, req)

	case OpGetBalance:
		b := &Balance{}
		for _, txn := range s.Transactions {
			if txn.Type == TypeIncome {
				b.TotalIncome += txn.Amount
			} else {
				b.TotalExpenses += txn.Amount
			}
		}
		b.Balance = round2(b.TotalIncome - b.TotalExpenses)
		b.TotalIncome = round2(b.TotalIncome)
		b.TotalExpenses = round2(b.TotalExpenses)
		return &Response{Balance: b}, nil

	case OpGetTransactions:
		var list []Transaction
		for _, txn := range s.Transactions {
			if req.TransactionType != "" && txn.Type != req.TransactionType {
				continue
			}
			if req.Category != "" && !strings.EqualFold(txn.Category, req.Category) {
				continue
			}
			if req.StartDate != "" && txn.Date < req.StartDate {
				continue
			}
			if req.EndDate != "" && txn.Date > req.EndDate {
				continue
			}
			list = append(list, txn)
		}
		return &Response{Transactions: list}, nil

	case OpSetBudget:
		if req.Category == "" {
			return nil, errors.New("category is required")
		}
		if req.Amount <= 0 {
			return nil, errors.New("budget amount must be positive")
		}
		s.Budgets[strings.TrimSpace(req.Category)] = req.Amount
		if err := t.store.Save(ctx, stateDoc, &s); err != nil {
			return nil, err
		}
		return &Response{Message: "budget set for category: " + req.Category}, nil

	case OpGetBudgetStatus:
		var budgets []BudgetStatus
		for category, budget := range s.Budgets {
			if req.Category != "" && !strings.EqualFold(category, req.Category) {
				continue
			}
			spent := 0.0
			for _, txn := range s.Transactions {
				if txn.Type == TypeExpense && strings.EqualFold(txn.Category, category) {
					spent += txn.Amount
				}
			}
			budgets = append(budgets, BudgetStatus{
				Category:  category,
				Budget:    budget,
				Spent:     round2(spent),
				Remaining: round2(budget - spent),
			})
		}
		if req.Category != "" && len(budgets) == 0 {
			return nil, errors.Errorf("no budget set for category: %s", req.Category)
		}
		return &Response{Budgets: budgets}, nil

	default:
		return nil, errors.Errorf("unsupported operation: %s", req.Operation)
	}
}

func (t *Tool) addTransaction(ctx context.Context, s *state, req *Request) (*Response, error) {
	if req.TransactionType == "" {
		return nil, errors.New("transaction_type is required")
	}
	if req.Amount <= 0 {
		return nil, errors.New("amount must be positive")
	}
	if req.Category == "" {
		return nil, errors.New("category is required")
	}
	date := req.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, errors.New("date must be in YYYY-MM-DD format")
	}

	txn := Transaction{
		TransactionID: uuid.New().String(),
		Type:          req.TransactionType,
		Amount:        req.Amount,
		Category:      strings.TrimSpace(req.Category),
		Description:   strings.TrimSpace(req.Description),
		Date:          date,
	}
	s.Transactions = append(s.Transactions, txn)
	if err := t.store.Save(ctx, stateDoc, s); err != nil {
		return nil, err
	}
	return &Response{Transaction: &txn}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
