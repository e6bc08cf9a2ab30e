package database

import (
	"context"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no document matches.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidID is returned for ids that are not 24-character hex strings.
	ErrInvalidID = errors.New("invalid id")
	// ErrDuplicate is returned when a unique index rejects a write.
	ErrDuplicate = errors.New("duplicate document")
)

// ParseID converts a hex string into an ObjectID.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

// Collection is a typed wrapper over a mongo collection for documents of type T.
type Collection[T any] struct {
	c *mongo.Collection
}

func NewCollection[T any](c *mongo.Collection) Collection[T] {
	return Collection[T]{c: c}
}

func (c Collection[T]) Insert(ctx context.Context, doc *T) error {
	if _, err := c.c.InsertOne(ctx, doc); err != nil {
		return mapErr(err)
	}
	return nil
}

func (c Collection[T]) FindOne(ctx context.Context, filter any) (*T, error) {
	var out T
	if err := c.c.FindOne(ctx, filter).Decode(&out); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (c Collection[T]) FindByID(ctx context.Context, id primitive.ObjectID) (*T, error) {
	return c.FindOne(ctx, bson.M{"_id": id})
}

// Find returns every matching document; the result is never nil.
func (c Collection[T]) Find(ctx context.Context, filter any, opts ...*options.FindOptions) ([]T, error) {
	if filter == nil {
		filter = bson.M{}
	}
	cursor, err := c.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, mapErr(err)
	}
	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, errors.Wrap(err, "decode")
	}
	return out, nil
}

// UpdateByID applies a $set of fields and returns the updated document.
func (c Collection[T]) UpdateByID(ctx context.Context, id primitive.ObjectID, set bson.M) (*T, error) {
	return c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set})
}

// FindOneAndUpdate runs update against the first match and returns the
// document as it is after the update.
func (c Collection[T]) FindOneAndUpdate(ctx context.Context, filter, update any) (*T, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var out T
	if err := c.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

// DeleteByID removes a document and returns it.
func (c Collection[T]) DeleteByID(ctx context.Context, id primitive.ObjectID) (*T, error) {
	var out T
	if err := c.c.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&out); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (c Collection[T]) Count(ctx context.Context, filter any) (int64, error) {
	n, err := c.c.CountDocuments(ctx, filter)
	if err != nil {
		return 0, mapErr(err)
	}
	return n, nil
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return errors.Wrap(ErrDuplicate, err.Error())
	default:
		return err
	}
}
