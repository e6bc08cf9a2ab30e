// Package inquiries handles customer questions: submission with an optional
// image, owner edits within a day, admin resolution and promotion of
// approved answers to the FAQ.
package inquiries

import (
	"context"
	"mime/multipart"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"alphastore/models"
	"alphastore/uploads"
	"alphastore/validation"
)

var (
	ErrSimilarExists = errors.New("a similar inquiry already exists")
	ErrNotOwner      = errors.New("inquiry belongs to another user")
	ErrEditWindow    = errors.New("inquiries can only be changed within 24 hours")
)

const (
	// EditWindow is how long after submission the owner may change an inquiry.
	EditWindow = 24 * time.Hour
	// Retention is how long a resolved inquiry is kept.
	Retention = 48 * time.Hour

	AttachmentDir = "inquiries"
)

type Repository interface {
	Create(ctx context.Context, q *models.Inquiry) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.Inquiry, error)
	List(ctx context.Context) ([]models.Inquiry, error)
	ListWhere(ctx context.Context, field string, value any) ([]models.Inquiry, error)
	Update(ctx context.Context, id primitive.ObjectID, set map[string]any) (*models.Inquiry, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Inquiry, error)
	HasSimilar(ctx context.Context, details string) (bool, error)
	ResolvedBefore(ctx context.Context, cutoff time.Time) ([]models.Inquiry, error)
}

// FAQs receives inquiries promoted to the FAQ.
type FAQs interface {
	Create(ctx context.Context, f *models.FAQ) error
}

type Files interface {
	Save(sub string, fh *multipart.FileHeader, allowed []string) (string, error)
	Remove(publicPath string) error
}

type Deps struct {
	Repo   Repository
	FAQs   FAQs
	Files  Files
	Logger *zap.Logger
}

type Service struct {
	repo  Repository
	faqs  FAQs
	files Files
	lg    *zap.Logger
	now   func() time.Time
}

func NewService(d Deps) *Service {
	lg := d.Logger
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Service{repo: d.Repo, faqs: d.FAQs, files: d.Files, lg: lg, now: time.Now}
}

type SubmitInput struct {
	FullName          string
	Email             string
	ContactNumber     string
	InquiryType       string
	ProductName       string
	InquirySubject    string
	AdditionalDetails string
	UserApproval      bool
}

func (in SubmitInput) validate() error {
	for _, f := range []string{in.FullName, in.Email, in.ContactNumber, in.InquiryType, in.InquirySubject, in.AdditionalDetails} {
		if strings.TrimSpace(f) == "" {
			return validation.New("all required fields must be filled")
		}
	}
	for _, t := range models.InquiryTypes {
		if in.InquiryType == t {
			return nil
		}
	}
	return validation.Errorf("inquiry type must be one of %s", strings.Join(models.InquiryTypes, ", "))
}

// Submit stores a new inquiry for userID. Details already covered by another
// inquiry are refused with ErrSimilarExists.
func (s *Service) Submit(ctx context.Context, userID primitive.ObjectID, in SubmitInput, attachment *multipart.FileHeader) (*models.Inquiry, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	details := strings.TrimSpace(in.AdditionalDetails)
	similar, err := s.repo.HasSimilar(ctx, details)
	if err != nil {
		return nil, errors.Wrap(err, "check similar")
	}
	if similar {
		return nil, ErrSimilarExists
	}

	var path string
	if attachment != nil {
		if path, err = s.files.Save(AttachmentDir, attachment, uploads.Images); err != nil {
			if errors.Is(err, uploads.ErrFileType) {
				return nil, validation.New("only images (jpeg, jpg, png) are allowed")
			}
			return nil, errors.Wrap(err, "save attachment")
		}
	}

	q := &models.Inquiry{
		ID:                primitive.NewObjectID(),
		UserID:            userID,
		FullName:          strings.TrimSpace(in.FullName),
		Email:             strings.TrimSpace(in.Email),
		ContactNumber:     strings.TrimSpace(in.ContactNumber),
		InquiryType:       in.InquiryType,
		ProductName:       strings.TrimSpace(in.ProductName),
		InquirySubject:    strings.TrimSpace(in.InquirySubject),
		AdditionalDetails: details,
		Attachment:        path,
		UserApproval:      in.UserApproval,
		Status:            models.InquiryPending,
		CreatedAt:         s.now(),
	}
	if err := s.repo.Create(ctx, q); err != nil {
		if path != "" {
			s.removeAttachment(path)
		}
		return nil, err
	}
	return q, nil
}

func (s *Service) ListMine(ctx context.Context, userID primitive.ObjectID) ([]models.Inquiry, error) {
	return s.repo.ListWhere(ctx, "userId", userID)
}

// Listing is the admin view: every inquiry plus the same inquiries grouped
// by type. Every type has an entry, possibly empty.
type Listing struct {
	Inquiries   []models.Inquiry            `json:"inquiries"`
	Categorized map[string][]models.Inquiry `json:"categorizedInquiries"`
}

func (s *Service) ListAll(ctx context.Context) (*Listing, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := &Listing{Inquiries: all, Categorized: map[string][]models.Inquiry{}}
	for _, t := range models.InquiryTypes {
		out.Categorized[t] = []models.Inquiry{}
	}
	for _, q := range all {
		out.Categorized[q.InquiryType] = append(out.Categorized[q.InquiryType], q)
	}
	return out, nil
}

// owned loads an inquiry the user may still change.
func (s *Service) owned(ctx context.Context, userID, id primitive.ObjectID) (*models.Inquiry, error) {
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.UserID != userID {
		return nil, ErrNotOwner
	}
	if s.now().Sub(q.CreatedAt) > EditWindow {
		return nil, ErrEditWindow
	}
	return q, nil
}

// UpdateInput holds the editable text. Empty fields are kept.
type UpdateInput struct {
	InquirySubject    string `json:"inquirySubject"`
	AdditionalDetails string `json:"additionalDetails"`
}

func (s *Service) Update(ctx context.Context, userID, id primitive.ObjectID, in UpdateInput) (*models.Inquiry, error) {
	q, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	set := map[string]any{}
	if v := strings.TrimSpace(in.InquirySubject); v != "" {
		set["inquirySubject"] = v
	}
	if v := strings.TrimSpace(in.AdditionalDetails); v != "" {
		set["additionalDetails"] = v
	}
	if len(set) == 0 {
		return q, nil
	}
	return s.repo.Update(ctx, id, set)
}

func (s *Service) Delete(ctx context.Context, userID, id primitive.ObjectID) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	q, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if q.Attachment != "" {
		s.removeAttachment(q.Attachment)
	}
	return nil
}

// Resolve marks the inquiry resolved. The first resolution time is kept and
// starts the retention countdown.
func (s *Service) Resolve(ctx context.Context, id primitive.ObjectID) (*models.Inquiry, error) {
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	set := map[string]any{"status": models.InquiryResolved}
	if q.ResolvedAt == nil {
		set["resolvedAt"] = s.now()
	}
	return s.repo.Update(ctx, id, set)
}

// AddToFAQ publishes a resolved inquiry the customer agreed to share, with
// the admin's answer, as an FAQ entry.
func (s *Service) AddToFAQ(ctx context.Context, id primitive.ObjectID, answer string) (*models.FAQ, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, validation.New("answer is required to add to FAQ")
	}
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.Status != models.InquiryResolved {
		return nil, validation.New("only resolved inquiries can be added to FAQs")
	}
	if !q.UserApproval {
		return nil, validation.New("user has not approved adding this inquiry to FAQ")
	}

	if _, err := s.repo.Update(ctx, id, map[string]any{"adminAnswer": answer}); err != nil {
		return nil, err
	}
	question := q.InquirySubject
	if question == "" {
		question = "No inquiry subject provided."
	}
	now := s.now()
	f := &models.FAQ{
		ID:        primitive.NewObjectID(),
		Question:  question,
		Answer:    answer,
		Category:  q.InquiryType,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.faqs.Create(ctx, f); err != nil {
		return nil, errors.Wrap(err, "create faq")
	}
	return f, nil
}

// Purge deletes inquiries resolved at least Retention ago along with their
// attachments. Every inquiry is attempted; failures are combined.
func (s *Service) Purge(ctx context.Context) (int, error) {
	expired, err := s.repo.ResolvedBefore(ctx, s.now().Add(-Retention))
	if err != nil {
		return 0, errors.Wrap(err, "list expired")
	}
	var (
		n    int
		errs error
	)
	for _, q := range expired {
		if _, err := s.repo.Delete(ctx, q.ID); err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "delete %s", q.ID.Hex()))
			continue
		}
		n++
		if q.Attachment != "" {
			s.removeAttachment(q.Attachment)
		}
	}
	return n, errs
}

// Run purges expired inquiries every interval until ctx is done.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Purge(ctx)
			if err != nil {
				s.lg.Error("Purge resolved inquiries", zap.Error(err))
			}
			if n > 0 {
				s.lg.Info("Purged resolved inquiries", zap.Int("count", n))
			}
		}
	}
}

func (s *Service) removeAttachment(path string) {
	if err := s.files.Remove(path); err != nil {
		s.lg.Warn("Remove inquiry attachment failed", zap.String("path", path), zap.Error(err))
	}
}
