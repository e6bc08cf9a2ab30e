// Package reviews collects store reviews from verified buyers and screens
// them for moderation.
package reviews

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"alphastore/models"
	"alphastore/validation"
)

var (
	ErrNotVerifiedBuyer = errors.New("only verified buyers can leave reviews")
	ErrNotOwner         = errors.New("review belongs to another user")
	ErrEditWindow       = errors.New("reviews can only be changed within 24 hours")
)

// EditWindow is how long after submission the author may change a review.
const EditWindow = 24 * time.Hour

var inappropriateWords = []string{
	"useless", "garbage", "piece of crap", "scam", "fraud", "ripoff", "junk",
	"terrible", "horrible", "disappointing", "worst", "awful", "shitty", "pathetic",
	"disgusting", "waste", "overpriced", "defective", "broken", "inferior",
}

// Screen returns the first inappropriate word found in text, case-insensitively.
func Screen(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, w := range inappropriateWords {
		if strings.Contains(lower, w) {
			return w, true
		}
	}
	return "", false
}

type Repository interface {
	Create(ctx context.Context, r *models.Review) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	List(ctx context.Context) ([]models.Review, error)
	ListWhere(ctx context.Context, field string, value any) ([]models.Review, error)
	Update(ctx context.Context, id primitive.ObjectID, set map[string]any) (*models.Review, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
}

// Purchases tells whether a customer has an order in the given status.
type Purchases interface {
	HasStatus(ctx context.Context, customerID primitive.ObjectID, status models.OrderStatus) (bool, error)
}

type Service struct {
	repo      Repository
	purchases Purchases
	lg        *zap.Logger
	now       func() time.Time
}

func NewService(repo Repository, purchases Purchases, lg *zap.Logger) *Service {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Service{repo: repo, purchases: purchases, lg: lg, now: time.Now}
}

type SubmitInput struct {
	Rating      int    `json:"rating"`
	Comment     string `json:"comment"`
	ReviewTitle string `json:"reviewTitle"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
}

func (in SubmitInput) validate() error {
	if in.Rating < 1 || in.Rating > 5 {
		return validation.New("rating must be between 1 and 5")
	}
	for _, f := range []string{in.Comment, in.ReviewTitle, in.FullName, in.Email} {
		if strings.TrimSpace(f) == "" {
			return validation.New("all required fields must be filled")
		}
	}
	return nil
}

// Submit stores a review by a customer who received at least one order.
// Reviews with inappropriate language are stored as flagged.
func (s *Service) Submit(ctx context.Context, userID primitive.ObjectID, in SubmitInput) (*models.Review, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	bought, err := s.purchases.HasStatus(ctx, userID, models.OrderHandedOver)
	if err != nil {
		return nil, errors.Wrap(err, "check purchases")
	}
	if !bought {
		return nil, ErrNotVerifiedBuyer
	}

	r := &models.Review{
		ID:            primitive.NewObjectID(),
		UserID:        userID,
		Rating:        in.Rating,
		Comment:       strings.TrimSpace(in.Comment),
		ReviewTitle:   strings.TrimSpace(in.ReviewTitle),
		FullName:      strings.TrimSpace(in.FullName),
		Email:         strings.TrimSpace(in.Email),
		VerifiedBuyer: true,
		CreatedAt:     s.now(),
	}
	r.Status, r.FlaggedReason = screenStatus(r.Comment)

	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	if r.Status == models.ReviewFlagged {
		s.lg.Warn("Review flagged", zap.String("review_id", r.ID.Hex()), zap.String("reason", r.FlaggedReason))
	}
	return r, nil
}

func screenStatus(comment string) (status, reason string) {
	if w, bad := Screen(comment); bad {
		return models.ReviewFlagged, "Contains inappropriate language: " + w
	}
	return models.ReviewPending, ""
}

func (s *Service) ListMine(ctx context.Context, userID primitive.ObjectID) ([]models.Review, error) {
	return s.repo.ListWhere(ctx, "userId", userID)
}

func (s *Service) ListApproved(ctx context.Context) ([]models.Review, error) {
	return s.repo.ListWhere(ctx, "status", models.ReviewApproved)
}

func (s *Service) ListAll(ctx context.Context) ([]models.Review, error) {
	return s.repo.List(ctx)
}

// owned loads a review the user may still change.
func (s *Service) owned(ctx context.Context, userID, id primitive.ObjectID) (*models.Review, error) {
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, ErrNotOwner
	}
	if s.now().Sub(r.CreatedAt) > EditWindow {
		return nil, ErrEditWindow
	}
	return r, nil
}

type UpdateInput struct {
	Rating      int    `json:"rating"`
	Comment     string `json:"comment"`
	ReviewTitle string `json:"reviewTitle"`
}

// Update rewrites the author's review and sends it back through screening.
func (s *Service) Update(ctx context.Context, userID, id primitive.ObjectID, in UpdateInput) (*models.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, validation.New("rating must be between 1 and 5")
	}
	if strings.TrimSpace(in.Comment) == "" || strings.TrimSpace(in.ReviewTitle) == "" {
		return nil, validation.New("comment and title are required")
	}
	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, err
	}

	status, reason := screenStatus(in.Comment)
	return s.repo.Update(ctx, id, map[string]any{
		"rating":        in.Rating,
		"comment":       strings.TrimSpace(in.Comment),
		"reviewTitle":   strings.TrimSpace(in.ReviewTitle),
		"status":        status,
		"flaggedReason": reason,
	})
}

func (s *Service) Delete(ctx context.Context, userID, id primitive.ObjectID) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	_, err := s.repo.Delete(ctx, id)
	return err
}

const (
	ActionApprove = "approved"
	ActionReject  = "rejected"
	ActionDelete  = "deleted"
)

// Moderate approves a review, or removes it when rejected or deleted. The
// returned review is nil when it was removed.
func (s *Service) Moderate(ctx context.Context, id primitive.ObjectID, action string) (*models.Review, error) {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case ActionApprove, "approve":
		return s.repo.Update(ctx, id, map[string]any{
			"status":        models.ReviewApproved,
			"flaggedReason": "",
		})
	case ActionReject, ActionDelete, "reject", "delete":
		_, err := s.repo.Delete(ctx, id)
		return nil, err
	default:
		return nil, validation.New("action must be approved, rejected or deleted")
	}
}
