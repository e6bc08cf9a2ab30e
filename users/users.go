// Package users manages customer accounts after registration: profile
// edits, password changes, account deletion and the admin user list.
package users

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"alphastore/models"
	"alphastore/validation"
)

// MinPasswordLen is the shortest password accepted at registration and on change.
const MinPasswordLen = 6

// ErrDetailsMismatch is returned when submitted details differ from the account.
var ErrDetailsMismatch = validation.New("provided details do not match registered details")

type Repository interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, set map[string]any) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// HashPassword checks the minimum length and returns the bcrypt hash.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLen {
		return "", validation.Errorf("password must be at least %d characters", MinPasswordLen)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(h), nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Profile(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.repo.Get(ctx, id)
}

// ProfileInput holds the fields a customer may edit. Nil fields are kept.
type ProfileInput struct {
	Name          *string `json:"name"`
	Email         *string `json:"email"`
	ContactNumber *string `json:"contactNumber"`
	Address       *string `json:"address"`
}

// UpdateProfile applies in. An email taken by another account fails with
// the store's duplicate error.
func (s *Service) UpdateProfile(ctx context.Context, id primitive.ObjectID, in ProfileInput) (*models.User, error) {
	set := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, validation.New("name must not be empty")
		}
		set["name"] = name
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if !strings.Contains(email, "@") {
			return nil, validation.New("invalid email address")
		}
		set["email"] = email
	}
	if in.ContactNumber != nil {
		set["contactNumber"] = strings.TrimSpace(*in.ContactNumber)
	}
	if in.Address != nil {
		set["savedAddress"] = strings.TrimSpace(*in.Address)
	}
	if len(set) == 0 {
		return s.repo.Get(ctx, id)
	}
	return s.repo.Update(ctx, id, set)
}

func (s *Service) ChangePassword(ctx context.Context, id primitive.ObjectID, oldPassword, newPassword string) error {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !CheckPassword(u.Password, oldPassword) {
		return validation.New("incorrect old password")
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	_, err = s.repo.Update(ctx, id, map[string]any{"password": hash})
	return err
}

func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.repo.Delete(ctx, id)
	return err
}

func (s *Service) List(ctx context.Context) ([]models.User, error) {
	return s.repo.List(ctx)
}

// VerifyInput is checked against the account registered under Email. Name
// compares case-insensitively; ContactNumber is only compared when set.
type VerifyInput struct {
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	ContactNumber *string `json:"contactNumber"`
}

// VerifyDetails confirms a form was filled in with the account's own details.
func (s *Service) VerifyDetails(ctx context.Context, in VerifyInput) error {
	u, err := s.repo.ByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		return err
	}
	if !strings.EqualFold(strings.TrimSpace(u.Name), strings.TrimSpace(in.Name)) {
		return ErrDetailsMismatch
	}
	if in.ContactNumber != nil && strings.TrimSpace(*in.ContactNumber) != strings.TrimSpace(u.ContactNumber) {
		return ErrDetailsMismatch
	}
	return nil
}
