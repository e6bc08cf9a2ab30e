package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"alphastore/models"
)

// RecordStore is the plain CRUD store shared by the finance, appointment,
// review and blog collections. Listings are sorted by sortKey, newest first.
type RecordStore[T any] struct {
	c       *mongo.Collection
	coll    Collection[T]
	sortKey string
}

func NewRecordStore[T any](c *mongo.Collection, sortKey string) *RecordStore[T] {
	return &RecordStore[T]{c: c, coll: NewCollection[T](c), sortKey: sortKey}
}

func (s *RecordStore[T]) Create(ctx context.Context, doc *T) error {
	return s.coll.Insert(ctx, doc)
}

func (s *RecordStore[T]) Get(ctx context.Context, id primitive.ObjectID) (*T, error) {
	return s.coll.FindByID(ctx, id)
}

func (s *RecordStore[T]) List(ctx context.Context) ([]T, error) {
	return s.coll.Find(ctx, bson.M{}, s.sorted())
}

// ListWhere returns the documents whose field equals value.
func (s *RecordStore[T]) ListWhere(ctx context.Context, field string, value any) ([]T, error) {
	return s.coll.Find(ctx, bson.M{field: value}, s.sorted())
}

func (s *RecordStore[T]) Update(ctx context.Context, id primitive.ObjectID, set map[string]any) (*T, error) {
	return s.coll.UpdateByID(ctx, id, bson.M(set))
}

func (s *RecordStore[T]) Delete(ctx context.Context, id primitive.ObjectID) (*T, error) {
	return s.coll.DeleteByID(ctx, id)
}

// CountInCategorySince counts documents of category dated at or after since.
func (s *RecordStore[T]) CountInCategorySince(ctx context.Context, category string, since time.Time) (int64, error) {
	return s.coll.Count(ctx, bson.M{
		"category": category,
		"date":     bson.M{"$gte": since},
	})
}

// SumAmount totals the amount field. An empty field sums every document,
// otherwise only those whose field equals value.
func (s *RecordStore[T]) SumAmount(ctx context.Context, field string, value any) (float64, error) {
	match := bson.M{}
	if field != "" {
		match[field] = value
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$amount"}}}},
	}
	cursor, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, mapErr(err)
	}
	var out []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &out); err != nil {
		return 0, err
	}
	if len(out) == 0 {
		return 0, nil
	}
	return out[0].Total, nil
}

func (s *RecordStore[T]) sorted() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: s.sortKey, Value: -1}})
}

// Stores bundles every store built on a Collections set.
type Stores struct {
	Users        *UserStore
	Tokens       *TokenStore
	Products     *ProductStore
	PreBuilds    *PreBuildStore
	Carts        *CartStore
	Orders       *OrderStore
	Taxes        *RecordStore[models.Tax]
	Invoices     *RecordStore[models.Invoice]
	Transactions *RecordStore[models.Transaction]
	PettyCash    *RecordStore[models.PettyCash]
	Expenses     *RecordStore[models.Expense]
	Incomes      *RecordStore[models.Income]
	Appointments *AppointmentStore
	Reviews      *RecordStore[models.Review]
	Blogs        *RecordStore[models.Blog]
	Inquiries    *InquiryStore
	FAQs         *FAQStore
}

func NewStores(c *Collections) *Stores {
	return &Stores{
		Users:        NewUserStore(c.Users),
		Tokens:       NewTokenStore(c.Blacklist),
		Products:     NewProductStore(c.Products),
		PreBuilds:    NewPreBuildStore(c.PreBuilds),
		Carts:        NewCartStore(c.Carts),
		Orders:       NewOrderStore(c.Orders),
		Taxes:        NewRecordStore[models.Tax](c.Taxes, "createdAt"),
		Invoices:     NewRecordStore[models.Invoice](c.Invoices, "date"),
		Transactions: NewRecordStore[models.Transaction](c.Transactions, "date"),
		PettyCash:    NewRecordStore[models.PettyCash](c.PettyCash, "date"),
		Expenses:     NewRecordStore[models.Expense](c.Expenses, "date"),
		Incomes:      NewRecordStore[models.Income](c.Incomes, "date"),
		Appointments: &AppointmentStore{NewRecordStore[models.Appointment](c.Appointments, "date")},
		Reviews:      NewRecordStore[models.Review](c.Reviews, "createdAt"),
		Blogs:        NewRecordStore[models.Blog](c.Blogs, "createdAt"),
		Inquiries:    &InquiryStore{NewRecordStore[models.Inquiry](c.Inquiries, "createdAt")},
		FAQs:         &FAQStore{NewRecordStore[models.FAQ](c.FAQs, "views")},
	}
}

type AppointmentStore struct {
	*RecordStore[models.Appointment]
}

func (s *AppointmentStore) SlotTaken(ctx context.Context, date, slot string, exclude primitive.ObjectID) (bool, error) {
	n, err := s.coll.Count(ctx, bson.M{
		"date":     date,
		"timeSlot": slot,
		"_id":      bson.M{"$ne": exclude},
	})
	return n > 0, err
}
