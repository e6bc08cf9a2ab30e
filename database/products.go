package database

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"alphastore/cart"
	"alphastore/models"
)

// ProductFilter narrows a catalog listing. Zero values are ignored.
type ProductFilter struct {
	Category     string
	Availability string
	State        string
	MinPrice     float64
	MaxPrice     float64
	Page         int64
	Limit        int64
}

func (f ProductFilter) query() bson.M {
	q := bson.M{}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.Availability != "" {
		q["availability"] = f.Availability
	}
	if f.State != "" {
		q["state"] = f.State
	}
	price := bson.M{}
	if f.MinPrice > 0 {
		price["$gte"] = f.MinPrice
	}
	if f.MaxPrice > 0 {
		price["$lte"] = f.MaxPrice
	}
	if len(price) > 0 {
		q["price"] = price
	}
	return q
}

type ProductStore struct {
	coll Collection[models.Product]
}

func NewProductStore(c *mongo.Collection) *ProductStore {
	return &ProductStore{coll: NewCollection[models.Product](c)}
}

func (s *ProductStore) Create(ctx context.Context, p *models.Product) error {
	now := time.Now()
	p.ID = primitive.NewObjectID()
	p.CreatedAt, p.UpdatedAt = now, now
	return s.coll.Insert(ctx, p)
}

func (s *ProductStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	return s.coll.FindByID(ctx, id)
}

// List returns one page of products matching f, newest first, and the
// total number of matches.
func (s *ProductStore) List(ctx context.Context, f ProductFilter) ([]models.Product, int64, error) {
	q := f.query()
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if f.Limit > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		opts.SetSkip((page - 1) * f.Limit).SetLimit(f.Limit)
	}

	products, err := s.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.coll.Count(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Related returns up to limit other products of the same category.
func (s *ProductStore) Related(ctx context.Context, p *models.Product, limit int64) ([]models.Product, error) {
	return s.coll.Find(ctx,
		bson.M{"category": p.Category, "_id": bson.M{"$ne": p.ID}},
		options.Find().SetLimit(limit),
	)
}

func (s *ProductStore) LowStock(ctx context.Context) ([]models.Product, error) {
	return s.coll.Find(ctx,
		bson.M{"$expr": bson.M{"$lte": bson.A{"$stock", "$lowStockThreshold"}}},
		options.Find().SetSort(bson.D{{Key: "stock", Value: 1}}),
	)
}

func (s *ProductStore) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Product, error) {
	set["updatedAt"] = time.Now()
	return s.coll.UpdateByID(ctx, id, set)
}

func (s *ProductStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	return s.coll.DeleteByID(ctx, id)
}

// PatchInventory adds change to the displayed stock in a single $inc and
// returns the product after the update. The stock is not clamped at zero.
func (s *ProductStore) PatchInventory(ctx context.Context, id primitive.ObjectID, change int) (*models.Product, error) {
	return s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"stock": change},
			"$set": bson.M{"updatedAt": time.Now()},
		},
	)
}

type PreBuildStore struct {
	coll Collection[models.PreBuild]
}

func NewPreBuildStore(c *mongo.Collection) *PreBuildStore {
	return &PreBuildStore{coll: NewCollection[models.PreBuild](c)}
}

func (s *PreBuildStore) Create(ctx context.Context, p *models.PreBuild) error {
	now := time.Now()
	p.ID = primitive.NewObjectID()
	p.CreatedAt, p.UpdatedAt = now, now
	return s.coll.Insert(ctx, p)
}

func (s *PreBuildStore) Get(ctx context.Context, id primitive.ObjectID) (*models.PreBuild, error) {
	return s.coll.FindByID(ctx, id)
}

func (s *PreBuildStore) List(ctx context.Context, category string) ([]models.PreBuild, error) {
	q := bson.M{}
	if category != "" {
		q["category"] = category
	}
	return s.coll.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (s *PreBuildStore) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.PreBuild, error) {
	set["updatedAt"] = time.Now()
	return s.coll.UpdateByID(ctx, id, set)
}

func (s *PreBuildStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.PreBuild, error) {
	return s.coll.DeleteByID(ctx, id)
}

// Catalog looks up either kind of purchasable item. Unknown ids come back
// as cart.ErrItemNotFound.
type Catalog struct {
	Products  *ProductStore
	PreBuilds *PreBuildStore
}

func (c Catalog) Product(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, err := c.Products.Get(ctx, id)
	return p, itemErr(err, id)
}

func (c Catalog) PreBuild(ctx context.Context, id primitive.ObjectID) (*models.PreBuild, error) {
	pb, err := c.PreBuilds.Get(ctx, id)
	return pb, itemErr(err, id)
}

func itemErr(err error, id primitive.ObjectID) error {
	if errors.Is(err, ErrNotFound) {
		return errors.Wrap(cart.ErrItemNotFound, id.Hex())
	}
	return err
}
