// Package blog manages blog posts and their cover images.
package blog

import (
	"context"
	"mime/multipart"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"alphastore/models"
	"alphastore/uploads"
	"alphastore/validation"
)

// ImageDir is the upload sub-directory for cover images.
const ImageDir = "blogs"

type Repository interface {
	Create(ctx context.Context, b *models.Blog) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.Blog, error)
	List(ctx context.Context) ([]models.Blog, error)
	ListWhere(ctx context.Context, field string, value any) ([]models.Blog, error)
	Update(ctx context.Context, id primitive.ObjectID, set map[string]any) (*models.Blog, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Blog, error)
}

type Files interface {
	Save(sub string, fh *multipart.FileHeader, allowed []string) (string, error)
	Remove(publicPath string) error
}

type Service struct {
	repo  Repository
	files Files
	lg    *zap.Logger
	now   func() time.Time
}

func NewService(repo Repository, files Files, lg *zap.Logger) *Service {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Service{repo: repo, files: files, lg: lg, now: time.Now}
}

type Input struct {
	Title     string
	Content   string
	Published bool
}

func (in Input) validate() error {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Content) == "" {
		return validation.New("title and content are required")
	}
	return nil
}

// Create saves the image first and removes it again if the post cannot be stored.
func (s *Service) Create(ctx context.Context, in Input, image *multipart.FileHeader) (*models.Blog, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if image == nil {
		return nil, validation.New("image is required")
	}

	path, err := s.saveImage(image)
	if err != nil {
		return nil, err
	}

	now := s.now()
	b := &models.Blog{
		ID:        primitive.NewObjectID(),
		Title:     strings.TrimSpace(in.Title),
		Content:   strings.TrimSpace(in.Content),
		Image:     path,
		Published: in.Published,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		s.removeImage(path)
		return nil, err
	}
	return b, nil
}

// List returns every post, or only published ones.
func (s *Service) List(ctx context.Context, publishedOnly bool) ([]models.Blog, error) {
	if publishedOnly {
		return s.repo.ListWhere(ctx, "published", true)
	}
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.Blog, error) {
	return s.repo.Get(ctx, id)
}

// Update replaces the text fields and, when image is set, the cover image.
// The previous image is removed once the update is stored.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, in Input, image *multipart.FileHeader) (*models.Blog, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	cur, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	set := map[string]any{
		"title":     strings.TrimSpace(in.Title),
		"content":   strings.TrimSpace(in.Content),
		"published": in.Published,
		"updatedAt": s.now(),
	}
	var newPath string
	if image != nil {
		if newPath, err = s.saveImage(image); err != nil {
			return nil, err
		}
		set["image"] = newPath
	}

	updated, err := s.repo.Update(ctx, id, set)
	if err != nil {
		if newPath != "" {
			s.removeImage(newPath)
		}
		return nil, err
	}
	if newPath != "" && cur.Image != "" && cur.Image != newPath {
		s.removeImage(cur.Image)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	b, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if b.Image != "" {
		s.removeImage(b.Image)
	}
	return nil
}

func (s *Service) saveImage(fh *multipart.FileHeader) (string, error) {
	path, err := s.files.Save(ImageDir, fh, uploads.Images)
	if errors.Is(err, uploads.ErrFileType) {
		return "", validation.New("only images (jpeg, jpg, png) are allowed")
	}
	if err != nil {
		return "", errors.Wrap(err, "save image")
	}
	return path, nil
}

func (s *Service) removeImage(path string) {
	if err := s.files.Remove(path); err != nil {
		s.lg.Warn("Remove blog image failed", zap.String("path", path), zap.Error(err))
	}
}
