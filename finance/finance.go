// Package finance keeps the shop's books: tax records, invoices, cash
// transactions, petty cash, expenses and income.
package finance

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"alphastore/models"
	"alphastore/pricing"
	"alphastore/validation"
)

// Records is the CRUD surface every ledger collection offers.
type Records[T any] interface {
	Create(ctx context.Context, doc *T) error
	Get(ctx context.Context, id primitive.ObjectID) (*T, error)
	List(ctx context.Context) ([]T, error)
	Update(ctx context.Context, id primitive.ObjectID, set map[string]any) (*T, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*T, error)
}

// CategoryRecords can also count recent entries of one category.
type CategoryRecords[T any] interface {
	Records[T]
	CountInCategorySince(ctx context.Context, category string, since time.Time) (int64, error)
}

// Summer totals the amount field, optionally only where field equals value.
type Summer interface {
	SumAmount(ctx context.Context, field string, value any) (float64, error)
}

type SummedRecords[T any] interface {
	Records[T]
	Summer
}

type SummedCategoryRecords[T any] interface {
	CategoryRecords[T]
	Summer
}

type Deps struct {
	Taxes        Records[models.Tax]
	Invoices     Records[models.Invoice]
	Transactions SummedCategoryRecords[models.Transaction]
	PettyCash    SummedCategoryRecords[models.PettyCash]
	Expenses     SummedRecords[models.Expense]
	Incomes      SummedRecords[models.Income]
	Logger       *zap.Logger
}

type Service struct {
	taxes        Records[models.Tax]
	invoices     Records[models.Invoice]
	transactions SummedCategoryRecords[models.Transaction]
	pettyCash    SummedCategoryRecords[models.PettyCash]
	expenses     SummedRecords[models.Expense]
	incomes      SummedRecords[models.Income]
	lg           *zap.Logger
	now          func() time.Time
}

func NewService(d Deps) *Service {
	lg := d.Logger
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Service{
		taxes:        d.Taxes,
		invoices:     d.Invoices,
		transactions: d.Transactions,
		pettyCash:    d.PettyCash,
		expenses:     d.Expenses,
		incomes:      d.Incomes,
		lg:           lg,
		now:          time.Now,
	}
}

type TaxInput struct {
	SuccessOrderID string   `json:"successOrderId"`
	TotalAmount    float64  `json:"totalAmount"`
	TaxAmount      *float64 `json:"taxAmount"`
	TaxRate        *float64 `json:"taxRate"`
}

// CreateTax stores a manual tax record. The rate defaults to the checkout
// rate and the amount to total times rate.
func (s *Service) CreateTax(ctx context.Context, in TaxInput) (*models.Tax, error) {
	if err := checkAmount(in.TotalAmount); err != nil {
		return nil, err
	}

	rate := pricing.DefaultTaxRate
	if in.TaxRate != nil {
		if *in.TaxRate < 0 || *in.TaxRate >= 1 || !finite(*in.TaxRate) {
			return nil, validation.New("tax rate must be between 0 and 1")
		}
		rate = decimal.NewFromFloat(*in.TaxRate)
	}

	amount := decimal.NewFromFloat(in.TotalAmount).Mul(rate)
	if in.TaxAmount != nil {
		if *in.TaxAmount < 0 || !finite(*in.TaxAmount) {
			return nil, validation.New("tax amount must not be negative")
		}
		amount = decimal.NewFromFloat(*in.TaxAmount)
	}

	orderID := strings.TrimSpace(in.SuccessOrderID)
	if orderID == "" {
		orderID = models.NotFromOrder
	}

	t := &models.Tax{
		ID:             primitive.NewObjectID(),
		SuccessOrderID: orderID,
		TotalAmount:    in.TotalAmount,
		TaxAmount:      pricing.Float(amount),
		TaxRate:        rate.InexactFloat64(),
		CreatedAt:      s.now(),
	}
	if err := s.taxes.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) ListTaxes(ctx context.Context) ([]models.Tax, error) {
	return s.taxes.List(ctx)
}

type InvoiceInput struct {
	CustomerName string               `json:"customerName"`
	Items        []models.InvoiceItem `json:"items"`
	Status       string               `json:"status"`
	Date         time.Time            `json:"date"`
}

// InvoiceTotal sums price times quantity over the items.
func InvoiceTotal(items []models.InvoiceItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

func (s *Service) CreateInvoice(ctx context.Context, in InvoiceInput) (*models.Invoice, error) {
	if strings.TrimSpace(in.CustomerName) == "" {
		return nil, validation.New("customer name is required")
	}
	if len(in.Items) == 0 {
		return nil, validation.New("invoice needs at least one item")
	}
	for _, it := range in.Items {
		if strings.TrimSpace(it.Name) == "" || it.Quantity < 1 || it.Price < 0 || !finite(it.Price) {
			return nil, validation.New("every item needs a name, a quantity of at least 1 and a price")
		}
	}

	status := in.Status
	if status == "" {
		status = models.InvoicePending
	}
	if !validInvoiceStatus(status) {
		return nil, validation.New("status must be Paid or Pending")
	}
	date := in.Date
	if date.IsZero() {
		date = s.now()
	}

	inv := &models.Invoice{
		ID:           primitive.NewObjectID(),
		CustomerName: strings.TrimSpace(in.CustomerName),
		Items:        in.Items,
		TotalAmount:  pricing.Float(InvoiceTotal(in.Items)),
		Status:       status,
		Date:         date,
	}
	if err := s.invoices.Create(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Service) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	return s.invoices.List(ctx)
}

func (s *Service) GetInvoice(ctx context.Context, id primitive.ObjectID) (*models.Invoice, error) {
	return s.invoices.Get(ctx, id)
}

func (s *Service) UpdateInvoiceStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Invoice, error) {
	if !validInvoiceStatus(status) {
		return nil, validation.New("status must be Paid or Pending")
	}
	return s.invoices.Update(ctx, id, map[string]any{"status": status})
}

func (s *Service) DeleteInvoice(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.invoices.Delete(ctx, id)
	return err
}

func validInvoiceStatus(s string) bool {
	return s == models.InvoicePaid || s == models.InvoicePending
}

func checkAmount(a float64) error {
	if !finite(a) || a <= 0 {
		return validation.New("amount must be a positive number")
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
