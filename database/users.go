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

type UserStore struct {
	coll Collection[models.User]
}

func NewUserStore(c *mongo.Collection) *UserStore {
	return &UserStore{coll: NewCollection[models.User](c)}
}

// Create inserts u. A taken email surfaces as ErrDuplicate.
func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	u.ID = primitive.NewObjectID()
	u.CreatedAt = time.Now()
	return s.coll.Insert(ctx, u)
}

func (s *UserStore) ByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.coll.FindOne(ctx, bson.M{"email": email})
}

func (s *UserStore) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.coll.FindByID(ctx, id)
}

// List returns every account, newest first.
func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	return s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

// Update sets fields on the account. A taken email surfaces as ErrDuplicate.
func (s *UserStore) Update(ctx context.Context, id primitive.ObjectID, set map[string]any) (*models.User, error) {
	return s.coll.UpdateByID(ctx, id, bson.M(set))
}

func (s *UserStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.coll.DeleteByID(ctx, id)
}

func (s *UserStore) SaveAddress(ctx context.Context, userID primitive.ObjectID, address string) error {
	_, err := s.coll.UpdateByID(ctx, userID, bson.M{"savedAddress": address})
	return err
}

// TokenStore keeps logged-out JWTs until they expire.
type TokenStore struct {
	c *mongo.Collection
}

func NewTokenStore(c *mongo.Collection) *TokenStore {
	return &TokenStore{c: c}
}

func (s *TokenStore) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	_, err := s.c.InsertOne(ctx, bson.M{"token": token, "expiresAt": expiresAt})
	return mapErr(err)
}

func (s *TokenStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"token": token})
	if err != nil {
		return false, mapErr(err)
	}
	return n > 0, nil
}
