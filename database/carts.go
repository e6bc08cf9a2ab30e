package database

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"alphastore/models"
)

type CartStore struct {
	coll *mongo.Collection
}

func NewCartStore(c *mongo.Collection) *CartStore {
	return &CartStore{coll: c}
}

// Get returns the user's cart, or an empty one if none was saved yet.
func (s *CartStore) Get(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	err := s.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &models.Cart{UserID: userID, Lines: []models.CartLine{}}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find cart")
	}
	if cart.Lines == nil {
		cart.Lines = []models.CartLine{}
	}
	return &cart, nil
}

// Save replaces the user's lines, creating the cart on first write.
func (s *CartStore) Save(ctx context.Context, cart *models.Cart) error {
	cart.UpdatedAt = time.Now()
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"userId": cart.UserID},
		bson.M{"$set": bson.M{"lines": cart.Lines, "updatedAt": cart.UpdatedAt}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return errors.Wrap(err, "save cart")
	}
	return nil
}
