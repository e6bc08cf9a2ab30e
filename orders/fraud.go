package orders

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"alphastore/models"
)

const (
	minPhoneLen      = 8
	maxPhoneLen      = 10
	burstWindow      = 24 * time.Hour
	maxOrdersInBurst = 2
)

// OrderCounter counts a customer's recent orders.
type OrderCounter interface {
	CountSince(ctx context.Context, customerID primitive.ObjectID, since time.Time) (int64, error)
}

// DetectFraud returns the reasons o looks suspicious. Dates are compared by
// day, so a delivery booked for today is fine. The order itself is expected
// not to be stored yet, so the burst rule only sees earlier orders.
func DetectFraud(ctx context.Context, counter OrderCounter, o *models.Order, now time.Time) ([]string, error) {
	var reasons []string

	phone := strings.TrimSpace(o.PhoneNo)
	if len(phone) < minPhoneLen {
		reasons = append(reasons, "Phone number too short.")
	}
	if len(phone) > maxPhoneLen {
		reasons = append(reasons, "Phone number too long.")
	}
	if !strings.Contains(o.Email, "@") {
		reasons = append(reasons, "Invalid email address.")
	}

	today := startOfDay(now)
	switch o.PaymentMethod {
	case models.PaymentCOD:
		if o.CODDetails != nil && o.CODDetails.DeliveryDate.Before(today) {
			reasons = append(reasons, "Delivery date is in the past.")
		}
	case models.PaymentPickup:
		if o.PickupDetails != nil && o.PickupDetails.PickupDate.Before(today) {
			reasons = append(reasons, "Pickup date is in the past.")
		}
	}

	n, err := counter.CountSince(ctx, o.CustomerID, now.Add(-burstWindow))
	if err != nil {
		return reasons, err
	}
	if n > maxOrdersInBurst {
		reasons = append(reasons, "Multiple orders placed within 24 hours.")
	}

	return reasons, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
