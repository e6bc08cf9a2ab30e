package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"alphastore/finance"
	"alphastore/models"
)

type FinanceService interface {
	CreateTax(ctx context.Context, in finance.TaxInput) (*models.Tax, error)
	ListTaxes(ctx context.Context) ([]models.Tax, error)

	CreateInvoice(ctx context.Context, in finance.InvoiceInput) (*models.Invoice, error)
	ListInvoices(ctx context.Context) ([]models.Invoice, error)
	GetInvoice(ctx context.Context, id primitive.ObjectID) (*models.Invoice, error)
	UpdateInvoiceStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Invoice, error)
	DeleteInvoice(ctx context.Context, id primitive.ObjectID) error

	CreateTransaction(ctx context.Context, in finance.TransactionInput) (*models.Transaction, error)
	ListTransactions(ctx context.Context) ([]models.Transaction, error)
	UpdateTransaction(ctx context.Context, id primitive.ObjectID, in finance.TransactionInput) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, id primitive.ObjectID) error

	CreatePettyCash(ctx context.Context, in finance.PettyCashInput) (*models.PettyCash, error)
	ListPettyCash(ctx context.Context) ([]models.PettyCash, error)
	UpdatePettyCash(ctx context.Context, id primitive.ObjectID, in finance.PettyCashInput) (*models.PettyCash, error)
	DeletePettyCash(ctx context.Context, id primitive.ObjectID) error

	CreateExpense(ctx context.Context, in finance.ExpenseInput) (*models.Expense, error)
	ListExpenses(ctx context.Context) ([]models.Expense, error)
	GetExpense(ctx context.Context, id primitive.ObjectID) (*models.Expense, error)
	UpdateExpense(ctx context.Context, id primitive.ObjectID, in finance.ExpenseInput) (*models.Expense, error)
	DeleteExpense(ctx context.Context, id primitive.ObjectID) error

	CreateIncome(ctx context.Context, in finance.IncomeInput) (*models.Income, error)
	ListIncomes(ctx context.Context) ([]models.Income, error)
	GetIncome(ctx context.Context, id primitive.ObjectID) (*models.Income, error)
	UpdateIncome(ctx context.Context, id primitive.ObjectID, in finance.IncomeInput) (*models.Income, error)
	DeleteIncome(ctx context.Context, id primitive.ObjectID) error

	Summary(ctx context.Context) (*finance.Summary, error)
}

type FinanceController struct {
	base
	svc FinanceService
}

func NewFinanceController(svc FinanceService, lg *zap.Logger, timeout time.Duration) *FinanceController {
	return &FinanceController{base: newBase(lg, timeout), svc: svc}
}

func (fc *FinanceController) CreateTax(c *gin.Context) {
	createJSON(fc.base, c, fc.svc.CreateTax, "tax record")
}

func (fc *FinanceController) ListTaxes(c *gin.Context) {
	listAll(fc.base, c, fc.svc.ListTaxes, "tax records")
}

func (fc *FinanceController) CreateInvoice(c *gin.Context) {
	createJSON(fc.base, c, fc.svc.CreateInvoice, "invoice")
}

func (fc *FinanceController) ListInvoices(c *gin.Context) {
	listAll(fc.base, c, fc.svc.ListInvoices, "invoices")
}

func (fc *FinanceController) GetInvoice(c *gin.Context) {
	getByID(fc.base, c, fc.svc.GetInvoice, "invoice")
}

// UpdateInvoiceStatus takes {"status": "Paid"|"Pending"}.
func (fc *FinanceController) UpdateInvoiceStatus(c *gin.Context) {
	type statusInput struct {
		Status string `json:"status"`
	}
	updateJSON(fc.base, c, func(ctx context.Context, id primitive.ObjectID, in statusInput) (*models.Invoice, error) {
		return fc.svc.UpdateInvoiceStatus(ctx, id, in.Status)
	}, "invoice")
}

func (fc *FinanceController) DeleteInvoice(c *gin.Context) {
	deleteByID(fc.base, c, fc.svc.DeleteInvoice, "invoice")
}

func (fc *FinanceController) CreateTransaction(c *gin.Context) {
	createJSON(fc.base, c, fc.svc.CreateTransaction, "transaction")
}

func (fc *FinanceController) ListTransactions(c *gin.Context) {
	listAll(fc.base, c, fc.svc.ListTransactions, "transactions")
}

func (fc *FinanceController) UpdateTransaction(c *gin.Context) {
	updateJSON(fc.base, c, fc.svc.UpdateTransaction, "transaction")
}

func (fc *FinanceController) DeleteTransaction(c *gin.Context) {
	deleteByID(fc.base, c, fc.svc.DeleteTransaction, "transaction")
}

func (fc *FinanceController) CreatePettyCash(c *gin.Context) {
	createJSON(fc.base, c, fc.svc.CreatePettyCash, "petty cash entry")
}

func (fc *FinanceController) ListPettyCash(c *gin.Context) {
	listAll(fc.base, c, fc.svc.ListPettyCash, "petty cash entries")
}

func (fc *FinanceController) UpdatePettyCash(c *gin.Context) {
	updateJSON(fc.base, c, fc.svc.UpdatePettyCash, "petty cash entry")
}

func (fc *FinanceController) DeletePettyCash(c *gin.Context) {
	deleteByID(fc.base, c, fc.svc.DeletePettyCash, "petty cash entry")
}

func (fc *FinanceController) CreateExpense(c *gin.Context) {
	createJSON(fc.base, c, fc.svc.CreateExpense, "expense")
}

func (fc *FinanceController) ListExpenses(c *gin.Context) {
	listAll(fc.base, c, fc.svc.ListExpenses, "expenses")
}

func (fc *FinanceController) GetExpense(c *gin.Context) {
	getByID(fc.base, c, fc.svc.GetExpense, "expense")
}

func (fc *FinanceController) UpdateExpense(c *gin.Context) {
	updateJSON(fc.base, c, fc.svc.UpdateExpense, "expense")
}

func (fc *FinanceController) DeleteExpense(c *gin.Context) {
	deleteByID(fc.base, c, fc.svc.DeleteExpense, "expense")
}

func (fc *FinanceController) CreateIncome(c *gin.Context) {
	createJSON(fc.base, c, fc.svc.CreateIncome, "income")
}

func (fc *FinanceController) ListIncomes(c *gin.Context) {
	listAll(fc.base, c, fc.svc.ListIncomes, "income")
}

func (fc *FinanceController) GetIncome(c *gin.Context) {
	getByID(fc.base, c, fc.svc.GetIncome, "income")
}

func (fc *FinanceController) UpdateIncome(c *gin.Context) {
	updateJSON(fc.base, c, fc.svc.UpdateIncome, "income")
}

func (fc *FinanceController) DeleteIncome(c *gin.Context) {
	deleteByID(fc.base, c, fc.svc.DeleteIncome, "income")
}

func (fc *FinanceController) Summary(c *gin.Context) {
	ctx, cancel := fc.ctx(c)
	defer cancel()

	s, err := fc.svc.Summary(ctx)
	if err != nil {
		fc.respondError(c, err, "Failed to build summary")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fetch success", "data": s})
}
