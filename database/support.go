package database

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"alphastore/models"
)

type InquiryStore struct {
	*RecordStore[models.Inquiry]
}

// HasSimilar reports whether an inquiry's details already contain details,
// ignoring case.
func (s *InquiryStore) HasSimilar(ctx context.Context, details string) (bool, error) {
	n, err := s.coll.Count(ctx, bson.M{
		"additionalDetails": primitive.Regex{Pattern: regexp.QuoteMeta(details), Options: "i"},
	})
	return n > 0, err
}

// ResolvedBefore lists resolved inquiries whose resolution is at or before cutoff.
func (s *InquiryStore) ResolvedBefore(ctx context.Context, cutoff time.Time) ([]models.Inquiry, error) {
	return s.coll.Find(ctx, bson.M{
		"status":     models.InquiryResolved,
		"resolvedAt": bson.M{"$lte": cutoff},
	})
}

// FAQStore lists FAQs most viewed first.
type FAQStore struct {
	*RecordStore[models.FAQ]
}

func (s *FAQStore) IncrementViews(ctx context.Context, id primitive.ObjectID) (*models.FAQ, error) {
	return s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"views": 1}},
	)
}
