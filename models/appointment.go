package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	AppointmentPending  = "pending"
	AppointmentAccepted = "accepted"
	AppointmentRejected = "rejected"
)

// Progress stages of a repair ticket. ProgressNotStarted precedes stage 0.
const (
	ProgressNotStarted = -1
	ProgressMax        = 4
)

type Appointment struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID           primitive.ObjectID `bson:"userId" json:"userId"`
	Name             string             `bson:"name" json:"name"`
	Email            string             `bson:"email" json:"email"`
	Phone            string             `bson:"phone" json:"phone"`
	Address          string             `bson:"address" json:"address"`
	DeviceType       string             `bson:"deviceType" json:"deviceType"`
	IssueDescription string             `bson:"issueDescription" json:"issueDescription"`
	ContactMethod    string             `bson:"contactMethod" json:"contactMethod"`
	Date             string             `bson:"date" json:"date"`
	TimeSlot         string             `bson:"timeSlot" json:"timeSlot"`
	ProblemType      string             `bson:"problemType" json:"problemType"`
	PickupOrDropoff  string             `bson:"pickupOrDropoff" json:"pickupOrDropoff"`
	ChipLevelRepair  bool               `bson:"chipLevelRepair" json:"chipLevelRepair"`
	AttemptedFixes   bool               `bson:"attemptedFixes" json:"attemptedFixes"`
	BackupData       bool               `bson:"backupData" json:"backupData"`
	Status           string             `bson:"status" json:"status"`
	RejectionReason  string             `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`
	Progress         int                `bson:"progress" json:"progress"`
}
