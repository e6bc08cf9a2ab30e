package database

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Connect opens a client against uri and verifies it with a ping.
func Connect(ctx context.Context, uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	if uri == "" || dbName == "" {
		return nil, nil, errors.New("mongo uri and database name are required")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, errors.Wrap(err, "connect")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, errors.Wrap(err, "ping")
	}

	return client, client.Database(dbName), nil
}

// Collections groups every collection the service reads or writes.
type Collections struct {
	Users        *mongo.Collection
	Blacklist    *mongo.Collection
	Products     *mongo.Collection
	PreBuilds    *mongo.Collection
	Carts        *mongo.Collection
	Orders       *mongo.Collection
	Taxes        *mongo.Collection
	Invoices     *mongo.Collection
	Transactions *mongo.Collection
	PettyCash    *mongo.Collection
	Expenses     *mongo.Collection
	Incomes      *mongo.Collection
	Appointments *mongo.Collection
	Reviews      *mongo.Collection
	Blogs        *mongo.Collection
	Inquiries    *mongo.Collection
	FAQs         *mongo.Collection
}

func InitCollections(db *mongo.Database) *Collections {
	return &Collections{
		Users:        db.Collection("users"),
		Blacklist:    db.Collection("blacklist_tokens"),
		Products:     db.Collection("products"),
		PreBuilds:    db.Collection("prebuilds"),
		Carts:        db.Collection("carts"),
		Orders:       db.Collection("orders"),
		Taxes:        db.Collection("taxes"),
		Invoices:     db.Collection("invoices"),
		Transactions: db.Collection("transactions"),
		PettyCash:    db.Collection("petty_cash"),
		Expenses:     db.Collection("expenses"),
		Incomes:      db.Collection("incomes"),
		Appointments: db.Collection("appointments"),
		Reviews:      db.Collection("reviews"),
		Blogs:        db.Collection("blogs"),
		Inquiries:    db.Collection("inquiries"),
		FAQs:         db.Collection("faqs"),
	}
}

// EnsureIndexes creates the indexes the stores rely on. It is idempotent.
func (c *Collections) EnsureIndexes(ctx context.Context) error {
	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{c.Users, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{c.Blacklist, mongo.IndexModel{
			Keys: bson.D{{Key: "token", Value: 1}},
		}},
		{c.Blacklist, mongo.IndexModel{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		}},
		{c.Carts, mongo.IndexModel{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{c.Orders, mongo.IndexModel{
			Keys: bson.D{{Key: "customerId", Value: 1}, {Key: "createdAt", Value: -1}},
		}},
		{c.Appointments, mongo.IndexModel{
			Keys:    bson.D{{Key: "date", Value: 1}, {Key: "timeSlot", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{c.Inquiries, mongo.IndexModel{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
		}},
		{c.Inquiries, mongo.IndexModel{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "resolvedAt", Value: 1}},
		}},
		{c.Transactions, mongo.IndexModel{
			Keys: bson.D{{Key: "category", Value: 1}, {Key: "date", Value: -1}},
		}},
		{c.PettyCash, mongo.IndexModel{
			Keys: bson.D{{Key: "category", Value: 1}, {Key: "date", Value: -1}},
		}},
	}

	for _, idx := range indexes {
		if _, err := idx.coll.Indexes().CreateOne(ctx, idx.model); err != nil {
			return errors.Wrapf(err, "create index on %s", idx.coll.Name())
		}
	}
	return nil
}
