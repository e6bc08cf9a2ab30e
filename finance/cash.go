package finance

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"alphastore/models"
	"alphastore/pricing"
	"alphastore/validation"
)

// Rule marks an entry suspicious when its amount exceeds MaxAmount or when
// MaxPerWindow entries of the same category already fall inside Window.
type Rule struct {
	MaxAmount    float64
	MaxPerWindow int64
	Window       time.Duration
}

var (
	TransactionRule = Rule{MaxAmount: 10000, MaxPerWindow: 5, Window: time.Hour}
	PettyCashRule   = Rule{MaxAmount: 5000, MaxPerWindow: 10, Window: time.Hour}
)

type categoryCounter interface {
	CountInCategorySince(ctx context.Context, category string, since time.Time) (int64, error)
}

func (r Rule) suspicious(ctx context.Context, c categoryCounter, amount float64, category string, now time.Time) (bool, error) {
	if amount > r.MaxAmount {
		return true, nil
	}
	n, err := c.CountInCategorySince(ctx, category, now.Add(-r.Window))
	if err != nil {
		return false, err
	}
	return n >= r.MaxPerWindow, nil
}

type TransactionInput struct {
	Amount      float64   `json:"amount"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
}

func (in *TransactionInput) validate(now time.Time) error {
	if err := checkAmount(in.Amount); err != nil {
		return err
	}
	if in.Type != models.TransactionIncome && in.Type != models.TransactionExpense {
		return validation.New("type must be Income or Expense")
	}
	in.Category = strings.TrimSpace(in.Category)
	if in.Category == "" {
		return validation.New("category is required")
	}
	if in.Date.IsZero() {
		in.Date = now
	}
	return nil
}

// CreateTransaction stores a cash transaction and flags it against
// TransactionRule. Suspicious entries are still stored.
func (s *Service) CreateTransaction(ctx context.Context, in TransactionInput) (*models.Transaction, error) {
	now := s.now()
	if err := in.validate(now); err != nil {
		return nil, err
	}

	flag, err := TransactionRule.suspicious(ctx, s.transactions, in.Amount, in.Category, now)
	if err != nil {
		return nil, err
	}

	tx := &models.Transaction{
		ID:           primitive.NewObjectID(),
		Amount:       in.Amount,
		Type:         in.Type,
		Category:     in.Category,
		Date:         in.Date,
		Description:  in.Description,
		IsSuspicious: flag,
	}
	if err := s.transactions.Create(ctx, tx); err != nil {
		return nil, err
	}
	if flag {
		s.lg.Warn("Suspicious transaction",
			zap.String("id", tx.ID.Hex()),
			zap.Float64("amount", tx.Amount),
			zap.String("category", tx.Category),
		)
	}
	return tx, nil
}

func (s *Service) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	return s.transactions.List(ctx)
}

// UpdateTransaction replaces the editable fields. An amount above the rule's
// limit flags the entry; an existing flag is never cleared here.
func (s *Service) UpdateTransaction(ctx context.Context, id primitive.ObjectID, in TransactionInput) (*models.Transaction, error) {
	if err := in.validate(s.now()); err != nil {
		return nil, err
	}
	set := map[string]any{
		"amount":      in.Amount,
		"type":        in.Type,
		"category":    in.Category,
		"date":        in.Date,
		"description": in.Description,
	}
	if in.Amount > TransactionRule.MaxAmount {
		set["isSuspicious"] = true
	}
	return s.transactions.Update(ctx, id, set)
}

func (s *Service) DeleteTransaction(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.transactions.Delete(ctx, id)
	return err
}

type PettyCashInput struct {
	Amount      float64   `json:"amount"`
	Purpose     string    `json:"purpose"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
}

func (in *PettyCashInput) validate(now time.Time) error {
	if err := checkAmount(in.Amount); err != nil {
		return err
	}
	in.Category = strings.TrimSpace(in.Category)
	if strings.TrimSpace(in.Purpose) == "" || in.Category == "" {
		return validation.New("purpose and category are required")
	}
	if in.Date.IsZero() {
		in.Date = now
	}
	return nil
}

func (s *Service) CreatePettyCash(ctx context.Context, in PettyCashInput) (*models.PettyCash, error) {
	now := s.now()
	if err := in.validate(now); err != nil {
		return nil, err
	}

	flag, err := PettyCashRule.suspicious(ctx, s.pettyCash, in.Amount, in.Category, now)
	if err != nil {
		return nil, err
	}

	pc := &models.PettyCash{
		ID:           primitive.NewObjectID(),
		Amount:       in.Amount,
		Purpose:      in.Purpose,
		Category:     in.Category,
		Date:         in.Date,
		Description:  in.Description,
		IsSuspicious: flag,
	}
	if err := s.pettyCash.Create(ctx, pc); err != nil {
		return nil, err
	}
	if flag {
		s.lg.Warn("Suspicious petty cash",
			zap.String("id", pc.ID.Hex()),
			zap.Float64("amount", pc.Amount),
			zap.String("category", pc.Category),
		)
	}
	return pc, nil
}

func (s *Service) ListPettyCash(ctx context.Context) ([]models.PettyCash, error) {
	return s.pettyCash.List(ctx)
}

func (s *Service) UpdatePettyCash(ctx context.Context, id primitive.ObjectID, in PettyCashInput) (*models.PettyCash, error) {
	if err := in.validate(s.now()); err != nil {
		return nil, err
	}
	set := map[string]any{
		"amount":      in.Amount,
		"purpose":     in.Purpose,
		"category":    in.Category,
		"date":        in.Date,
		"description": in.Description,
	}
	if in.Amount > PettyCashRule.MaxAmount {
		set["isSuspicious"] = true
	}
	return s.pettyCash.Update(ctx, id, set)
}

func (s *Service) DeletePettyCash(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.pettyCash.Delete(ctx, id)
	return err
}

type ExpenseInput struct {
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
}

func (in ExpenseInput) validate() error {
	if err := checkAmount(in.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(in.Category) == "" || in.Date.IsZero() {
		return validation.New("amount, category and date are required")
	}
	return nil
}

func (s *Service) CreateExpense(ctx context.Context, in ExpenseInput) (*models.Expense, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	e := &models.Expense{
		ID:          primitive.NewObjectID(),
		Amount:      in.Amount,
		Category:    strings.TrimSpace(in.Category),
		Date:        in.Date,
		Description: in.Description,
	}
	if err := s.expenses.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) ListExpenses(ctx context.Context) ([]models.Expense, error) {
	return s.expenses.List(ctx)
}

func (s *Service) GetExpense(ctx context.Context, id primitive.ObjectID) (*models.Expense, error) {
	return s.expenses.Get(ctx, id)
}

func (s *Service) UpdateExpense(ctx context.Context, id primitive.ObjectID, in ExpenseInput) (*models.Expense, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	return s.expenses.Update(ctx, id, map[string]any{
		"amount":      in.Amount,
		"category":    strings.TrimSpace(in.Category),
		"date":        in.Date,
		"description": in.Description,
	})
}

func (s *Service) DeleteExpense(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.expenses.Delete(ctx, id)
	return err
}

type IncomeInput struct {
	Amount      float64   `json:"amount"`
	Source      string    `json:"source"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
}

func (in IncomeInput) validate() error {
	if err := checkAmount(in.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(in.Source) == "" || in.Date.IsZero() {
		return validation.New("amount, source and date are required")
	}
	return nil
}

func (s *Service) CreateIncome(ctx context.Context, in IncomeInput) (*models.Income, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	inc := &models.Income{
		ID:          primitive.NewObjectID(),
		Amount:      in.Amount,
		Source:      strings.TrimSpace(in.Source),
		Date:        in.Date,
		Description: in.Description,
	}
	if err := s.incomes.Create(ctx, inc); err != nil {
		return nil, err
	}
	return inc, nil
}

func (s *Service) ListIncomes(ctx context.Context) ([]models.Income, error) {
	return s.incomes.List(ctx)
}

func (s *Service) GetIncome(ctx context.Context, id primitive.ObjectID) (*models.Income, error) {
	return s.incomes.Get(ctx, id)
}

func (s *Service) UpdateIncome(ctx context.Context, id primitive.ObjectID, in IncomeInput) (*models.Income, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	return s.incomes.Update(ctx, id, map[string]any{
		"amount":      in.Amount,
		"source":      strings.TrimSpace(in.Source),
		"date":        in.Date,
		"description": in.Description,
	})
}

func (s *Service) DeleteIncome(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.incomes.Delete(ctx, id)
	return err
}

// Summary is the dashboard view of the books.
type Summary struct {
	TotalIncome    float64 `json:"totalIncome"`
	TotalExpense   float64 `json:"totalExpense"`
	PettyCashSpent float64 `json:"pettyCashSpent"`
	Net            float64 `json:"net"`
}

// Summary adds recorded income to Income transactions, and expenses, petty
// cash and Expense transactions to the expense side.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	type part struct {
		src   Summer
		field string
		value any
	}
	sum := func(parts ...part) (decimal.Decimal, error) {
		total := decimal.Zero
		for _, p := range parts {
			v, err := p.src.SumAmount(ctx, p.field, p.value)
			if err != nil {
				return decimal.Zero, err
			}
			total = total.Add(decimal.NewFromFloat(v))
		}
		return total, nil
	}

	income, err := sum(
		part{s.incomes, "", nil},
		part{s.transactions, "type", models.TransactionIncome},
	)
	if err != nil {
		return nil, err
	}
	petty, err := sum(part{s.pettyCash, "", nil})
	if err != nil {
		return nil, err
	}
	expense, err := sum(
		part{s.expenses, "", nil},
		part{s.transactions, "type", models.TransactionExpense},
	)
	if err != nil {
		return nil, err
	}
	expense = expense.Add(petty)

	return &Summary{
		TotalIncome:    pricing.Float(income),
		TotalExpense:   pricing.Float(expense),
		PettyCashSpent: pricing.Float(petty),
		Net:            pricing.Float(income.Sub(expense)),
	}, nil
}
