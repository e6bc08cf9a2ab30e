package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"-"`
	Role     string             `bson:"role" json:"role"`
	// ContactNumber is set from the profile page.
	ContactNumber string `bson:"contactNumber,omitempty" json:"contactNumber,omitempty"`
	// SavedAddress is the default delivery address, set from the profile or
	// from a checkout that asked to keep it.
	SavedAddress string    `bson:"savedAddress,omitempty" json:"savedAddress,omitempty"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}
