package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	InquiryGeneral             = "General"
	InquiryProductAvailability = "Product Availability"
	InquirySupport             = "Support"

	InquiryPending  = "Pending"
	InquiryResolved = "Resolved"
)

// InquiryTypes lists the accepted inquiry categories in display order.
var InquiryTypes = []string{InquiryGeneral, InquiryProductAvailability, InquirySupport}

type Inquiry struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID            primitive.ObjectID `bson:"userId" json:"userId"`
	FullName          string             `bson:"fullName" json:"fullName"`
	Email             string             `bson:"email" json:"email"`
	ContactNumber     string             `bson:"contactNumber" json:"contactNumber"`
	InquiryType       string             `bson:"inquiryType" json:"inquiryType"`
	ProductName       string             `bson:"productName,omitempty" json:"productName,omitempty"`
	InquirySubject    string             `bson:"inquirySubject" json:"inquirySubject"`
	AdditionalDetails string             `bson:"additionalDetails" json:"additionalDetails"`
	Attachment        string             `bson:"attachment,omitempty" json:"attachment,omitempty"`
	// UserApproval is the customer's consent to publish the inquiry as an FAQ.
	UserApproval bool       `bson:"userApproval" json:"userApproval"`
	AdminAnswer  string     `bson:"adminAnswer,omitempty" json:"adminAnswer,omitempty"`
	Status       string     `bson:"status" json:"status"`
	CreatedAt    time.Time  `bson:"createdAt" json:"createdAt"`
	ResolvedAt   *time.Time `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
}

type FAQ struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Question  string             `bson:"question" json:"question"`
	Answer    string             `bson:"answer" json:"answer"`
	Category  string             `bson:"category,omitempty" json:"category,omitempty"`
	Views     int64              `bson:"views" json:"views"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
