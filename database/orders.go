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

type OrderStore struct {
	c    *mongo.Collection
	coll Collection[models.Order]
}

func NewOrderStore(c *mongo.Collection) *OrderStore {
	return &OrderStore{c: c, coll: NewCollection[models.Order](c)}
}

func (s *OrderStore) Insert(ctx context.Context, o *models.Order) error {
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	return s.coll.Insert(ctx, o)
}

func (s *OrderStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	return s.coll.FindByID(ctx, id)
}

// List returns all orders, newest first, optionally limited to one status.
func (s *OrderStore) List(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	q := bson.M{}
	if status != "" {
		q["status"] = status
	}
	return s.coll.Find(ctx, q, newestFirst())
}

func (s *OrderStore) ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.Order, error) {
	return s.coll.Find(ctx, bson.M{"customerId": customerID}, newestFirst())
}

// CountSince counts the customer's orders created at or after since.
func (s *OrderStore) CountSince(ctx context.Context, customerID primitive.ObjectID, since time.Time) (int64, error) {
	return s.coll.Count(ctx, bson.M{
		"customerId": customerID,
		"createdAt":  bson.M{"$gte": since},
	})
}

// HasStatus reports whether the customer owns at least one order in status.
func (s *OrderStore) HasStatus(ctx context.Context, customerID primitive.ObjectID, status models.OrderStatus) (bool, error) {
	n, err := s.coll.Count(ctx, bson.M{"customerId": customerID, "status": status})
	return n > 0, err
}

// SetStatus changes the status from one value to another, matching only
// while the order is still in from.
// ErrNotFound means the order is gone or no longer in from.
func (s *OrderStore) SetStatus(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus) (*models.Order, error) {
	return s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now()}},
	)
}

func (s *OrderStore) AddAttachment(ctx context.Context, id primitive.ObjectID, path string) (*models.Order, error) {
	return s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{
			"$push": bson.M{"attachments": path},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
}

func (s *OrderStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	return s.coll.DeleteByID(ctx, id)
}

// Stats groups orders by status with their count and summed total.
func (s *OrderStore) Stats(ctx context.Context) ([]models.OrderStat, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":     "$status",
			"count":   bson.M{"$sum": 1},
			"revenue": bson.M{"$sum": "$totalAmount"},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
	cursor, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, mapErr(err)
	}
	stats := []models.OrderStat{}
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
}
