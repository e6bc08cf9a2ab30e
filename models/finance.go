package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotFromOrder marks a tax record that was entered by hand.
const NotFromOrder = "not from order"

// Tax records the tax collected on a sale. SuccessOrderID refers to an order
// by its hex id only; nothing enforces that the order exists.
type Tax struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SuccessOrderID string             `bson:"successOrderId" json:"successOrderId"`
	TotalAmount    float64            `bson:"totalAmount" json:"totalAmount"`
	TaxAmount      float64            `bson:"taxAmount" json:"taxAmount"`
	TaxRate        float64            `bson:"taxRate" json:"taxRate"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}

const (
	InvoicePaid    = "Paid"
	InvoicePending = "Pending"
)

type InvoiceItem struct {
	Name     string  `bson:"name" json:"name"`
	Price    float64 `bson:"price" json:"price"`
	Quantity int     `bson:"quantity" json:"quantity"`
}

type Invoice struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerName string             `bson:"customerName" json:"customerName"`
	Items        []InvoiceItem      `bson:"items" json:"items"`
	TotalAmount  float64            `bson:"totalAmount" json:"totalAmount"`
	Status       string             `bson:"status" json:"status"`
	Date         time.Time          `bson:"date" json:"date"`
}

const (
	TransactionIncome  = "Income"
	TransactionExpense = "Expense"
)

type Transaction struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Amount       float64            `bson:"amount" json:"amount"`
	Type         string             `bson:"type" json:"type"`
	Category     string             `bson:"category" json:"category"`
	Date         time.Time          `bson:"date" json:"date"`
	Description  string             `bson:"description" json:"description"`
	IsSuspicious bool               `bson:"isSuspicious" json:"isSuspicious"`
}

type PettyCash struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Amount       float64            `bson:"amount" json:"amount"`
	Purpose      string             `bson:"purpose" json:"purpose"`
	Category     string             `bson:"category" json:"category"`
	Date         time.Time          `bson:"date" json:"date"`
	Description  string             `bson:"description" json:"description"`
	IsSuspicious bool               `bson:"isSuspicious" json:"isSuspicious"`
}

type Expense struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Amount      float64            `bson:"amount" json:"amount"`
	Category    string             `bson:"category" json:"category"`
	Date        time.Time          `bson:"date" json:"date"`
	Description string             `bson:"description" json:"description"`
}

type Income struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Amount      float64            `bson:"amount" json:"amount"`
	Source      string             `bson:"source" json:"source"`
	Date        time.Time          `bson:"date" json:"date"`
	Description string             `bson:"description" json:"description"`
}
