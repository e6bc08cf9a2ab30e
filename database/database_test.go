package database

import (
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"alphastore/cart"
)

func TestParseID(t *testing.T) {
	want := primitive.NewObjectID()
	got, err := ParseID(want.Hex())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	for _, in := range []string{"", "zzz", "65f0c2a1b4e5d6c7a8b9c0d", want.Hex() + "00"} {
		_, err := ParseID(in)
		assert.ErrorIs(t, err, ErrInvalidID, in)
	}
}

func TestMapErr(t *testing.T) {
	assert.NoError(t, mapErr(nil))
	assert.ErrorIs(t, mapErr(mongo.ErrNoDocuments), ErrNotFound)
	assert.ErrorIs(t, mapErr(errors.Wrap(mongo.ErrNoDocuments, "find")), ErrNotFound)

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	err := mapErr(dup)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Contains(t, err.Error(), "E11000")

	other := errors.New("connection reset")
	assert.Equal(t, other, mapErr(other))
}

func TestProductFilterQuery(t *testing.T) {
	for _, tt := range []struct {
		name string
		f    ProductFilter
		want bson.M
	}{
		{"Empty", ProductFilter{Page: 2, Limit: 10}, bson.M{}},
		{
			"Fields",
			ProductFilter{Category: "GPU", Availability: "In Stock", State: "New"},
			bson.M{"category": "GPU", "availability": "In Stock", "state": "New"},
		},
		{"MinOnly", ProductFilter{MinPrice: 100}, bson.M{"price": bson.M{"$gte": 100.0}}},
		{"MaxOnly", ProductFilter{MaxPrice: 500}, bson.M{"price": bson.M{"$lte": 500.0}}},
		{
			"Range",
			ProductFilter{Category: "CPU", MinPrice: 100, MaxPrice: 500},
			bson.M{"category": "CPU", "price": bson.M{"$gte": 100.0, "$lte": 500.0}},
		},
		{"NonPositivePricesIgnored", ProductFilter{MinPrice: -1, MaxPrice: 0}, bson.M{}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.f.query())
		})
	}
}

func TestItemErr(t *testing.T) {
	id := primitive.NewObjectID()

	err := itemErr(ErrNotFound, id)
	assert.ErrorIs(t, err, cart.ErrItemNotFound)
	assert.Contains(t, err.Error(), id.Hex())

	other := errors.New("timeout")
	assert.Equal(t, other, itemErr(other, id))
	assert.NoError(t, itemErr(nil, id))
}
