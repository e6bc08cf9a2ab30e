// Package appointments books repair appointments and tracks their progress.
package appointments

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"alphastore/models"
	"alphastore/validation"
)

// ErrSlotTaken is returned when another appointment holds the date and time slot.
var ErrSlotTaken = errors.New("this time slot is already booked, please choose another time")

type Repository interface {
	Create(ctx context.Context, a *models.Appointment) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error)
	List(ctx context.Context) ([]models.Appointment, error)
	ListWhere(ctx context.Context, field string, value any) ([]models.Appointment, error)
	// SlotTaken reports whether an appointment other than exclude holds
	// date and slot.
	SlotTaken(ctx context.Context, date, slot string, exclude primitive.ObjectID) (bool, error)
	Update(ctx context.Context, id primitive.ObjectID, set map[string]any) (*models.Appointment, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error)
}

type Service struct {
	repo Repository
	lg   *zap.Logger
}

func NewService(repo Repository, lg *zap.Logger) *Service {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Service{repo: repo, lg: lg}
}

type CreateInput struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
	DeviceType       string `json:"deviceType"`
	IssueDescription string `json:"issueDescription"`
	ContactMethod    string `json:"contactMethod"`
	Date             string `json:"date"`
	TimeSlot         string `json:"timeSlot"`
	ProblemType      string `json:"problemType"`
	PickupOrDropoff  string `json:"pickupOrDropoff"`
	ChipLevelRepair  bool   `json:"chipLevelRepair"`
	AttemptedFixes   bool   `json:"attemptedFixes"`
	BackupData       bool   `json:"backupData"`
}

func (in CreateInput) validate() error {
	for _, f := range []string{in.Name, in.Email, in.Phone, in.Date, in.TimeSlot, in.ProblemType, in.PickupOrDropoff} {
		if strings.TrimSpace(f) == "" {
			return validation.New("all required fields must be filled")
		}
	}
	if in.ContactMethod != "email" && in.ContactMethod != "phone" {
		return validation.New("contact method must be email or phone")
	}
	switch in.ProblemType {
	case "hardware", "software", "virus":
	default:
		return validation.New("problem type must be hardware, software or virus")
	}
	if in.PickupOrDropoff != "pickup" && in.PickupOrDropoff != "dropoff" {
		return validation.New("pickupOrDropoff must be pickup or dropoff")
	}
	return nil
}

// Create books a slot for userID. A slot holds at most one appointment.
func (s *Service) Create(ctx context.Context, userID primitive.ObjectID, in CreateInput) (*models.Appointment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.slotFree(ctx, in.Date, in.TimeSlot, primitive.NilObjectID); err != nil {
		return nil, err
	}

	a := &models.Appointment{
		ID:               primitive.NewObjectID(),
		UserID:           userID,
		Name:             strings.TrimSpace(in.Name),
		Email:            strings.TrimSpace(in.Email),
		Phone:            strings.TrimSpace(in.Phone),
		Address:          in.Address,
		DeviceType:       in.DeviceType,
		IssueDescription: in.IssueDescription,
		ContactMethod:    in.ContactMethod,
		Date:             in.Date,
		TimeSlot:         in.TimeSlot,
		ProblemType:      in.ProblemType,
		PickupOrDropoff:  in.PickupOrDropoff,
		ChipLevelRepair:  in.ChipLevelRepair,
		AttemptedFixes:   in.AttemptedFixes,
		BackupData:       in.BackupData,
		Status:           models.AppointmentPending,
		Progress:         models.ProgressNotStarted,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) slotFree(ctx context.Context, date, slot string, self primitive.ObjectID) error {
	taken, err := s.repo.SlotTaken(ctx, date, slot, self)
	if err != nil {
		return errors.Wrap(err, "check slot")
	}
	if taken {
		return ErrSlotTaken
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]models.Appointment, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Appointment, error) {
	return s.repo.ListWhere(ctx, "userId", userID)
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error) {
	return s.repo.Get(ctx, id)
}

// UpdateInput holds the fields an admin may change. Nil fields are kept.
type UpdateInput struct {
	Status          *string `json:"status"`
	RejectionReason *string `json:"rejectionReason"`
	Progress        *int    `json:"progress"`
	Date            *string `json:"date"`
	TimeSlot        *string `json:"timeSlot"`
}

func (s *Service) Update(ctx context.Context, id primitive.ObjectID, in UpdateInput) (*models.Appointment, error) {
	cur, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	set := map[string]any{}
	if in.Status != nil {
		switch *in.Status {
		case models.AppointmentPending, models.AppointmentAccepted:
			set["rejectionReason"] = ""
		case models.AppointmentRejected:
			if in.RejectionReason == nil || strings.TrimSpace(*in.RejectionReason) == "" {
				return nil, validation.New("a rejection reason is required when rejecting")
			}
			set["rejectionReason"] = strings.TrimSpace(*in.RejectionReason)
		default:
			return nil, validation.New("status must be pending, accepted or rejected")
		}
		set["status"] = *in.Status
	}
	if in.Progress != nil {
		if *in.Progress < models.ProgressNotStarted || *in.Progress > models.ProgressMax {
			return nil, validation.Errorf("progress must be between %d and %d", models.ProgressNotStarted, models.ProgressMax)
		}
		set["progress"] = *in.Progress
	}
	if in.Date != nil || in.TimeSlot != nil {
		date, slot := cur.Date, cur.TimeSlot
		if in.Date != nil {
			date = *in.Date
		}
		if in.TimeSlot != nil {
			slot = *in.TimeSlot
		}
		if strings.TrimSpace(date) == "" || strings.TrimSpace(slot) == "" {
			return nil, validation.New("date and time slot must not be empty")
		}
		if err := s.slotFree(ctx, date, slot, id); err != nil {
			return nil, err
		}
		set["date"], set["timeSlot"] = date, slot
	}
	if len(set) == 0 {
		return cur, nil
	}

	updated, err := s.repo.Update(ctx, id, set)
	if err != nil {
		return nil, err
	}
	if in.Status != nil && *in.Status != cur.Status {
		s.lg.Info("Appointment status changed",
			zap.String("appointment_id", id.Hex()),
			zap.String("from", cur.Status),
			zap.String("to", *in.Status),
		)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.repo.Delete(ctx, id)
	return err
}
