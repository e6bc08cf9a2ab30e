package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ReviewPending  = "pending"
	ReviewFlagged  = "flagged"
	ReviewApproved = "approved"
	ReviewRejected = "rejected"
)

type Review struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	Rating        int                `bson:"rating" json:"rating"`
	Comment       string             `bson:"comment" json:"comment"`
	ReviewTitle   string             `bson:"reviewTitle" json:"reviewTitle"`
	FullName      string             `bson:"fullName" json:"fullName"`
	Email         string             `bson:"email" json:"email"`
	VerifiedBuyer bool               `bson:"verifiedBuyer" json:"verifiedBuyer"`
	Status        string             `bson:"status" json:"status"`
	FlaggedReason string             `bson:"flaggedReason" json:"flaggedReason"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}
