package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ItemTypeProduct  = "Product"
	ItemTypePreBuild = "PreBuild"
)

// CartLine is one entry of a cart. Orders keep a copy of their lines, so the
// price fields are a snapshot taken when the line was added.
type CartLine struct {
	ID            string             `bson:"id" json:"id"`
	ItemID        primitive.ObjectID `bson:"itemId" json:"itemId"`
	ItemType      string             `bson:"itemType" json:"itemType"`
	Name          string             `bson:"name" json:"name"`
	Quantity      int                `bson:"quantity" json:"quantity"`
	UnitPrice     float64            `bson:"unitPrice" json:"unitPrice"`
	DiscountPrice *float64           `bson:"discountPrice,omitempty" json:"discountPrice,omitempty"`
	Specs         []Spec             `bson:"specs" json:"specs"`
	Image         string             `bson:"image,omitempty" json:"image,omitempty"`
}

// EffectivePrice is the discounted price when one is set, the unit price otherwise.
func (l CartLine) EffectivePrice() float64 {
	if l.DiscountPrice != nil {
		return *l.DiscountPrice
	}
	return l.UnitPrice
}

type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Lines     []CartLine         `bson:"lines" json:"lines"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
