// Package faq keeps the questions shown on the help page, most viewed first.
package faq

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"alphastore/models"
	"alphastore/validation"
)

type Repository interface {
	Create(ctx context.Context, f *models.FAQ) error
	List(ctx context.Context) ([]models.FAQ, error)
	Update(ctx context.Context, id primitive.ObjectID, set map[string]any) (*models.FAQ, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.FAQ, error)
	IncrementViews(ctx context.Context, id primitive.ObjectID) (*models.FAQ, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type Input struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
}

func (in Input) validate() error {
	if strings.TrimSpace(in.Question) == "" || strings.TrimSpace(in.Answer) == "" {
		return validation.New("question and answer are required")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in Input) (*models.FAQ, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := s.now()
	f := &models.FAQ{
		ID:        primitive.NewObjectID(),
		Question:  strings.TrimSpace(in.Question),
		Answer:    strings.TrimSpace(in.Answer),
		Category:  strings.TrimSpace(in.Category),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Service) List(ctx context.Context) ([]models.FAQ, error) {
	return s.repo.List(ctx)
}

// Update replaces the text. The view count is kept.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, in Input) (*models.FAQ, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, map[string]any{
		"question":  strings.TrimSpace(in.Question),
		"answer":    strings.TrimSpace(in.Answer),
		"category":  strings.TrimSpace(in.Category),
		"updatedAt": s.now(),
	})
}

func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.repo.Delete(ctx, id)
	return err
}

// View counts one read of the FAQ.
func (s *Service) View(ctx context.Context, id primitive.ObjectID) (*models.FAQ, error) {
	return s.repo.IncrementViews(ctx, id)
}
